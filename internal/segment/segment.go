package segment

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/personadoc/internal/doctree"
)

// Config controls segmentation behavior.
type Config struct {
	MaxSectionChars int // A headed section is split at the next paragraph break past this size.
	MaxHeadingChars int // Longer lines are never headings.
	MaxTitleChars   int // Bound for titles synthesized from body text.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxSectionChars: 2000,
		MaxHeadingChars: 100,
		MaxTitleChars:   80,
	}
}

// EmptyDocumentError reports a document that produced nothing to analyze.
type EmptyDocumentError struct {
	DocumentID string
	Reason     string
}

func (e *EmptyDocumentError) Error() string {
	return fmt.Sprintf("document %q: %s", e.DocumentID, e.Reason)
}

// Segmenter splits document pages into candidate sections.
type Segmenter struct {
	cfg Config
}

// New returns a Segmenter; zero config values fall back to defaults.
func New(cfg Config) *Segmenter {
	def := DefaultConfig()
	if cfg.MaxSectionChars <= 0 {
		cfg.MaxSectionChars = def.MaxSectionChars
	}
	if cfg.MaxHeadingChars <= 0 {
		cfg.MaxHeadingChars = def.MaxHeadingChars
	}
	if cfg.MaxTitleChars <= 0 {
		cfg.MaxTitleChars = def.MaxTitleChars
	}
	return &Segmenter{cfg: cfg}
}

// Segment returns a lazy sequence of the document's sections in page order.
// docOrder is the document's position in the batch and is stamped on every
// section for tie-breaking.
func (s *Segmenter) Segment(doc doctree.Document, docOrder int) (iter.Seq[doctree.Section], error) {
	if !doc.HasText() {
		return nil, &EmptyDocumentError{DocumentID: doc.ID, Reason: "no extractable text"}
	}
	return func(yield func(doctree.Section) bool) {
		for _, page := range doc.Pages {
			if strings.TrimSpace(page.Text) == "" {
				continue
			}
			if !s.segmentPage(doc.ID, docOrder, page, yield) {
				return
			}
		}
	}, nil
}

// Collect drains Segment. A document with text but no usable section is
// reported as empty too.
func (s *Segmenter) Collect(doc doctree.Document, docOrder int) ([]doctree.Section, error) {
	seq, err := s.Segment(doc, docOrder)
	if err != nil {
		return nil, err
	}
	var sections []doctree.Section
	for sec := range seq {
		sections = append(sections, sec)
	}
	if len(sections) == 0 {
		return nil, &EmptyDocumentError{DocumentID: doc.ID, Reason: "no sections found"}
	}
	return sections, nil
}

// pending is a section being accumulated line by line.
type pending struct {
	title     string
	synthetic bool
	start     int // -1 until the first body line
	end       int
}

func (s *Segmenter) segmentPage(docID string, docOrder int, page doctree.Page, yield func(doctree.Section) bool) bool {
	text := page.Text
	ordinal := 0
	var cur *pending

	flush := func() bool {
		if cur == nil || cur.start < 0 || cur.end <= cur.start {
			return true
		}
		body := text[cur.start:cur.end]
		title := cur.title
		if cur.synthetic {
			title = synthesizeTitle(body, s.cfg.MaxTitleChars)
		}
		sec := doctree.Section{
			DocumentID:       docID,
			DocOrder:         docOrder,
			Page:             page.Number,
			Ordinal:          ordinal,
			Title:            title,
			TitleSynthesized: cur.synthetic,
			Body:             body,
			Start:            cur.start,
			End:              cur.end,
		}
		ordinal++
		return yield(sec)
	}

	afterBreak := false
	for _, ln := range scanLines(text) {
		if ln.blank() {
			afterBreak = true
			// Headingless text is split per paragraph.
			if cur != nil && cur.synthetic {
				if !flush() {
					return false
				}
				cur = nil
			}
			continue
		}

		if s.isHeading(ln.text) {
			if !flush() {
				return false
			}
			// Consecutive headings: the last one wins.
			cur = &pending{title: cleanHeading(ln.text), start: -1}
			afterBreak = false
			continue
		}

		switch {
		case cur == nil:
			cur = &pending{synthetic: true, start: ln.start}
		case cur.start < 0:
			cur.start = ln.start
		case afterBreak && ln.end-cur.start > s.cfg.MaxSectionChars:
			if !flush() {
				return false
			}
			cur = &pending{title: cur.title, synthetic: cur.synthetic, start: ln.start}
		}
		cur.end = ln.end
		afterBreak = false
	}
	return flush()
}

// line is one trimmed line of page text with byte offsets into the page.
type line struct {
	text       string
	start, end int
}

func (l line) blank() bool { return l.text == "" }

func scanLines(text string) []line {
	var lines []line
	pos := 0
	for pos <= len(text) {
		next := strings.IndexByte(text[pos:], '\n')
		end := len(text)
		if next >= 0 {
			end = pos + next
		}
		raw := text[pos:end]
		trimmedLeft := strings.TrimLeft(raw, " \t\r\f\v ")
		start := pos + (len(raw) - len(trimmedLeft))
		trimmed := strings.TrimRight(trimmedLeft, " \t\r\f\v ")
		lines = append(lines, line{text: trimmed, start: start, end: start + len(trimmed)})
		if next < 0 {
			break
		}
		pos = end + 1
	}
	return lines
}

// synthesizeTitle derives a title from the first sentence of body,
// clipped at a word boundary.
func synthesizeTitle(body string, maxChars int) string {
	flat := strings.Join(strings.Fields(body), " ")
	for i, r := range flat {
		if (r == '.' || r == '!' || r == '?') && (i+1 == len(flat) || flat[i+1] == ' ') {
			flat = flat[:i]
			break
		}
	}
	if utf8.RuneCountInString(flat) <= maxChars {
		return flat
	}
	runes := []rune(flat)
	cut := string(runes[:maxChars])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:-") + "…"
}
