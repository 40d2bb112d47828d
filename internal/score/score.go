package score

import (
	"strings"

	"github.com/dgallion1/personadoc/internal/doctree"
	"github.com/dgallion1/personadoc/internal/query"
)

// Options tunes the relevance formula.
type Options struct {
	TitleBoost     float64 // Multiplier for term occurrences in the section title
	K1             float64 // Term frequency saturation
	CoverageWeight float64 // Bonus for matching a larger share of the query weight
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{TitleBoost: 2.0, K1: 1.2, CoverageWeight: 1.0}
}

// Scored is a section with its relevance score. Ties are broken later by
// the section's batch position, never by perturbing the score.
type Scored struct {
	Section doctree.Section
	Score   float64
}

// Profile holds the query term counts of one section.
type Profile struct {
	Body  map[string]int
	Title map[string]int
}

// NewProfile analyzes a section against the query. Only query terms are
// counted.
func NewProfile(q *query.Query, sec doctree.Section) Profile {
	a := q.Analyzer()
	return Profile{
		Body:  count(q, a.Terms(sec.Body)),
		Title: count(q, a.Terms(sec.Title)),
	}
}

func count(q *query.Query, terms []string) map[string]int {
	tf := make(map[string]int)
	for _, t := range terms {
		if _, ok := q.Terms[t]; ok {
			tf[t]++
		}
	}
	return tf
}

// Scorer scores sections against one query. A section's score depends only
// on the section and the query, never on the rest of the batch.
type Scorer struct {
	q    *query.Query
	opts Options
}

// New creates a Scorer for q.
func New(q *query.Query, opts Options) *Scorer {
	def := DefaultOptions()
	if opts.K1 <= 0 {
		opts.K1 = def.K1
	}
	if opts.TitleBoost < 0 {
		opts.TitleBoost = 0
	}
	if opts.CoverageWeight < 0 {
		opts.CoverageWeight = 0
	}
	return &Scorer{q: q, opts: opts}
}

// Score returns the relevance of a profiled section. Zero means no query
// term occurs in it.
//
// A phrase counts as often as its rarer word occurs, not only where the
// words are adjacent, so adding any query term to a section can never
// lower its score.
func (s *Scorer) Score(p Profile) float64 {
	var base, matched float64
	for _, t := range s.q.SortedTerms() {
		tf := s.tf(p, t)
		if tf == 0 {
			continue
		}
		w := s.q.Terms[t]
		base += w * Saturate(tf, s.opts.K1)
		matched += w
	}
	for _, ph := range s.q.SortedPhrases() {
		a, b, ok := strings.Cut(ph, " ")
		if !ok {
			continue
		}
		if tf := min(s.tf(p, a), s.tf(p, b)); tf > 0 {
			base += s.q.Phrases[ph] * Saturate(tf, s.opts.K1)
		}
	}
	if base == 0 {
		return 0
	}
	coverage := matched / s.q.TotalWeight()
	return base * (1 + s.opts.CoverageWeight*coverage)
}

// ScoreSection profiles and scores sec.
func (s *Scorer) ScoreSection(sec doctree.Section) float64 {
	return s.Score(NewProfile(s.q, sec))
}

func (s *Scorer) tf(p Profile, term string) float64 {
	return float64(p.Body[term]) + s.opts.TitleBoost*float64(p.Title[term])
}

// Saturate maps a raw frequency onto [0, k1+1), increasing in x.
func Saturate(x, k1 float64) float64 {
	if x <= 0 {
		return 0
	}
	return x * (k1 + 1) / (x + k1)
}

// All scores sections in input order.
func All(q *query.Query, sections []doctree.Section, opts Options) []Scored {
	s := New(q, opts)
	out := make([]Scored, len(sections))
	for i, sec := range sections {
		out[i] = Scored{Section: sec, Score: s.ScoreSection(sec)}
	}
	return out
}
