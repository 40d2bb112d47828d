package refine

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/personadoc/internal/doctree"
	"github.com/dgallion1/personadoc/internal/query"
	"github.com/dgallion1/personadoc/internal/score"
)

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+`)

// Options tunes passage selection.
type Options struct {
	MaxChars int     // Upper bound on passage length in characters (runes)
	K1       float64 // Term frequency saturation for sentence scoring
}

// DefaultOptions returns 500-character passages.
func DefaultOptions() Options {
	return Options{MaxChars: 500, K1: score.DefaultOptions().K1}
}

// Passage is the condensed excerpt chosen from a section.
// Text is always Body[Start:End] of the originating section.
type Passage struct {
	DocumentID string
	Page       int
	Text       string
	Start      int
	End        int
}

// Refiner picks the span of a section body that best supports the query.
type Refiner struct {
	opts Options
	q    *query.Query
}

// New creates a Refiner bound to one query.
func New(q *query.Query, opts Options) *Refiner {
	def := DefaultOptions()
	if opts.MaxChars <= 0 {
		opts.MaxChars = def.MaxChars
	}
	if opts.K1 <= 0 {
		opts.K1 = def.K1
	}
	return &Refiner{opts: opts, q: q}
}

type span struct {
	start, end int
	score      float64
}

// Refine returns the passage for a section. Short bodies are returned whole;
// longer ones are reduced to the run of consecutive sentences with the most
// query support that fits in MaxChars.
func (r *Refiner) Refine(sec doctree.Section) Passage {
	body := sec.Body
	start, end := trimSpan(body, 0, len(body))
	if r.fits(body, start, end) {
		return r.passage(sec, start, end)
	}

	sentences := r.sentences(body, start, end)
	if len(sentences) == 0 {
		return r.passage(sec, start, start)
	}

	best := span{start: -1}
	consider := func(s, e int, total float64) {
		if best.start < 0 || total > best.score {
			best = span{start: s, end: e, score: total}
		}
	}
	for i, first := range sentences {
		if !r.fits(body, first.start, first.end) {
			s, e := r.clip(body, first.start)
			consider(s, e, r.scoreText(body[s:e]))
			continue
		}
		var total float64
		for _, sn := range sentences[i:] {
			if !r.fits(body, first.start, sn.end) {
				break
			}
			total += sn.score
			consider(first.start, sn.end, total)
		}
	}

	if best.score == 0 {
		return r.passage(sec, r.leading(body, sentences))
	}
	return r.passage(sec, best.start, best.end)
}

func (r *Refiner) passage(sec doctree.Section, start, end int) Passage {
	return Passage{
		DocumentID: sec.DocumentID,
		Page:       sec.Page,
		Text:       sec.Body[start:end],
		Start:      start,
		End:        end,
	}
}

// sentences splits body[start:end] into trimmed sentence spans and scores
// each one. Text after the last terminator is kept as a final sentence.
func (r *Refiner) sentences(body string, start, end int) []span {
	var out []span
	add := func(s, e int) {
		s, e = trimSpan(body, s, e)
		if e > s {
			out = append(out, span{start: s, end: e, score: r.scoreText(body[s:e])})
		}
	}
	last := start
	for _, m := range sentenceRe.FindAllStringIndex(body[start:end], -1) {
		add(start+m[0], start+m[1])
		last = start + m[1]
	}
	add(last, end)
	return out
}

func (r *Refiner) scoreText(text string) float64 {
	tf := make(map[string]int)
	for _, t := range r.q.Analyzer().Terms(text) {
		if _, ok := r.q.Terms[t]; ok {
			tf[t]++
		}
	}
	var total float64
	for _, t := range r.q.SortedTerms() {
		if n := tf[t]; n > 0 {
			total += r.q.Terms[t] * score.Saturate(float64(n), r.opts.K1)
		}
	}
	return total
}

// fits reports whether body[start:end] is at most MaxChars characters.
func (r *Refiner) fits(body string, start, end int) bool {
	return utf8.RuneCountInString(body[start:end]) <= r.opts.MaxChars
}

// clip shortens an oversized sentence at the last whitespace at or before
// MaxChars characters, falling back to a hard cut on a rune boundary.
func (r *Refiner) clip(body string, start int) (int, int) {
	limit := start
	for n := 0; n < r.opts.MaxChars && limit < len(body); n++ {
		_, size := utf8.DecodeRuneInString(body[limit:])
		limit += size
	}
	if limit >= len(body) {
		return trimSpan(body, start, len(body))
	}
	if next, _ := utf8.DecodeRuneInString(body[limit:]); unicode.IsSpace(next) {
		return trimSpan(body, start, limit)
	}
	if cut := strings.LastIndexFunc(body[start:limit], unicode.IsSpace); cut > 0 {
		return trimSpan(body, start, start+cut)
	}
	return start, limit
}

// leading returns the longest run of sentences from the start that fits.
func (r *Refiner) leading(body string, sentences []span) (int, int) {
	s := sentences[0].start
	if !r.fits(body, s, sentences[0].end) {
		return r.clip(body, s)
	}
	e := sentences[0].end
	for _, sn := range sentences[1:] {
		if !r.fits(body, s, sn.end) {
			break
		}
		e = sn.end
	}
	return s, e
}

func trimSpan(text string, start, end int) (int, int) {
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return start, end
}
