package segment

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/personadoc/internal/doctree"
)

func doc(id string, pages ...string) doctree.Document {
	d := doctree.Document{ID: id, Title: id}
	for i, text := range pages {
		d.Pages = append(d.Pages, doctree.Page{DocumentID: id, Number: i + 1, Text: text})
	}
	return d
}

const citiesPage = `Comprehensive Guide to Major Cities in the South of France

Nice - The Pearl of the French Riviera
Nice is the capital of the Côte d'Azur and one of the most popular destinations.
The Promenade des Anglais is perfect for walking and cycling.

Marseille - France's Oldest City
Marseille is a vibrant port city with a rich history dating back 2,600 years.
`

func TestCollect_HeadingsAndBodies(t *testing.T) {
	s := New(DefaultConfig())
	d := doc("cities.pdf", citiesPage)

	sections, err := s.Collect(d, 0)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	assert.Equal(t, "Nice - The Pearl of the French Riviera", sections[0].Title)
	assert.False(t, sections[0].TitleSynthesized)
	assert.True(t, strings.HasPrefix(sections[0].Body, "Nice is the capital"))
	assert.True(t, strings.HasSuffix(sections[0].Body, "walking and cycling."))

	assert.Equal(t, "Marseille - France's Oldest City", sections[1].Title)
	assert.Equal(t, 1, sections[1].Ordinal)

	for _, sec := range sections {
		assert.Equal(t, "cities.pdf", sec.DocumentID)
		assert.Equal(t, 1, sec.Page)
		assert.Equal(t, d.Pages[0].Text[sec.Start:sec.End], sec.Body)
	}
}

func TestCollect_SectionsDoNotOverlap(t *testing.T) {
	s := New(DefaultConfig())
	d := doc("multi.pdf", citiesPage, "Intro paragraph without heading.\n\nAnother paragraph here.\n\nFOOD AND DRINK\nBouillabaisse is a fish stew.")

	sections, err := s.Collect(d, 3)
	require.NoError(t, err)

	for i := 1; i < len(sections); i++ {
		prev, cur := sections[i-1], sections[i]
		assert.True(t, prev.Less(cur), "sections out of order at %d", i)
		if prev.Page == cur.Page {
			assert.LessOrEqual(t, prev.End, cur.Start)
		}
		assert.Equal(t, 3, cur.DocOrder)
		assert.NotEmpty(t, strings.TrimSpace(cur.Body))
	}
}

func TestCollect_HeadinglessParagraphs(t *testing.T) {
	s := New(DefaultConfig())
	d := doc("notes.txt", "First paragraph line one. Still first.\nFirst paragraph line two.\n\nSecond paragraph.")

	sections, err := s.Collect(d, 0)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	assert.True(t, sections[0].TitleSynthesized)
	assert.Equal(t, "First paragraph line one", sections[0].Title)
	assert.Equal(t, "First paragraph line one. Still first.\nFirst paragraph line two.", sections[0].Body)
	assert.Equal(t, "Second paragraph", sections[1].Title)
}

func TestCollect_SynthesizedTitleIsClipped(t *testing.T) {
	s := New(Config{MaxTitleChars: 20})
	d := doc("long.txt", "this sentence is considerably longer than twenty characters and keeps going")

	sections, err := s.Collect(d, 0)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "this sentence is…", sections[0].Title)
}

func TestCollect_ConsecutiveHeadingsKeepLast(t *testing.T) {
	s := New(DefaultConfig())
	d := doc("d.md", "# Travel Guide\n## Coastal Adventures\nThe coastline is beautiful in summer.")

	sections, err := s.Collect(d, 0)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Coastal Adventures", sections[0].Title)
}

func TestCollect_HeadingWithoutBodyDropped(t *testing.T) {
	s := New(DefaultConfig())
	d := doc("d.pdf", "Packing Tips:\n- Bring layers for the weather.\n\nTransportation Tips:\n")

	sections, err := s.Collect(d, 0)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Packing Tips", sections[0].Title)
	assert.Equal(t, "- Bring layers for the weather.", sections[0].Body)
}

func TestCollect_LongSectionSplitsAtParagraph(t *testing.T) {
	para := strings.Repeat("word ", 30) + "end."
	text := "Wine Tours\n" + para + "\n\n" + para + "\n\n" + para
	// Two paragraphs fit in 400 chars, the third starts a continuation.
	s := New(Config{MaxSectionChars: 400})

	sections, err := s.Collect(doc("wine.pdf", text), 0)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	for _, sec := range sections {
		assert.Equal(t, "Wine Tours", sec.Title)
	}
	assert.Equal(t, para+"\n\n"+para, sections[0].Body)
	assert.Equal(t, para, sections[1].Body)
}

func TestSegment_EmptyDocument(t *testing.T) {
	s := New(DefaultConfig())
	for _, d := range []doctree.Document{
		{ID: "none.pdf"},
		doc("blank.pdf", "   \n\t\n", ""),
	} {
		_, err := s.Segment(d, 0)
		var empty *EmptyDocumentError
		require.True(t, errors.As(err, &empty), "doc %s", d.ID)
		assert.Equal(t, d.ID, empty.DocumentID)
	}
}

func TestCollect_OnlyHeadingsIsEmpty(t *testing.T) {
	s := New(DefaultConfig())
	_, err := s.Collect(doc("toc.pdf", "Table of Contents\nChapter 1 Getting Started\nChapter 2 Next Steps"), 0)
	var empty *EmptyDocumentError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "no sections found", empty.Reason)
}

func TestSegment_SkipsBlankPagesKeepsNumbers(t *testing.T) {
	s := New(DefaultConfig())
	sections, err := s.Collect(doc("d.pdf", "  ", "Local Markets:\nVisit the colorful markets in Nice."), 0)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, 2, sections[0].Page)
}

func TestSegment_IsLazy(t *testing.T) {
	s := New(DefaultConfig())
	seq, err := s.Segment(doc("d.txt", "One.\n\nTwo.\n\nThree.", "Four."), 0)
	require.NoError(t, err)

	var got []string
	for sec := range seq {
		got = append(got, sec.Body)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"One.", "Two."}, got)
}

func TestIsHeading(t *testing.T) {
	s := New(DefaultConfig())
	tests := []struct {
		line string
		want bool
	}{
		{"Comprehensive Guide to Major Cities in the South of France", true},
		{"Nice - The Pearl of the French Riviera", true},
		{"## Water Sports", true},
		{"3.2 Regional Wines", true},
		{"Chapter 4", true},
		{"NIGHTLIFE", true},
		{"Beach Hopping:", true},
		{"Nightclubs:", true},
		{"Here are some activities to enjoy by the sea along the coast:", false},
		{"Nice is the capital of the Côte d'Azur.", false},
		{"- Nice: Visit the sandy shores", false},
		{"The TGV connects major cities efficiently", false},
		{"Hi", false},
		{"TGV", false},
		{strings.Repeat("Long Title ", 20), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.isHeading(strings.TrimSpace(tt.line)), "line %q", tt.line)
	}
}

func TestCleanHeading(t *testing.T) {
	assert.Equal(t, "Water Sports", cleanHeading("##  Water   Sports"))
	assert.Equal(t, "Wine Tours", cleanHeading("Wine Tours:"))
}
