package rank

import (
	"sort"
	"strings"

	"github.com/dgallion1/personadoc/internal/score"
)

// MaxTopN bounds how many sections a single run may return.
const MaxTopN = 50

// Options controls selection of the final ranked list.
type Options struct {
	TopN           int     // Sections to return (clamped to 1..MaxTopN)
	MinScore       float64 // Sections scoring at or below this are dropped
	MaxPerDocument int     // 0 means no per-document cap
}

// DefaultOptions returns the top ten sections with any positive score.
func DefaultOptions() Options {
	return Options{TopN: 10}
}

// Ranked is a scored section with its dense 1-based importance rank.
type Ranked struct {
	score.Scored
	ImportanceRank int
}

// Rank orders scored sections by score, breaking ties by document input
// order, page and position within the page. It never returns an error: no
// section above the threshold yields an empty slice.
func Rank(scored []score.Scored, opts Options) []Ranked {
	if opts.TopN <= 0 {
		opts.TopN = DefaultOptions().TopN
	}
	if opts.TopN > MaxTopN {
		opts.TopN = MaxTopN
	}

	candidates := make([]score.Scored, 0, len(scored))
	for _, s := range scored {
		if s.Score > opts.MinScore {
			candidates = append(candidates, s)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Section.Less(b.Section)
	})

	seen := make(map[string]bool, len(candidates))
	perDoc := make(map[string]int)
	out := make([]Ranked, 0, min(opts.TopN, len(candidates)))
	for _, c := range candidates {
		if len(out) == opts.TopN {
			break
		}
		key := fingerprint(c.Section.Body)
		if seen[key] {
			continue
		}
		if opts.MaxPerDocument > 0 && perDoc[c.Section.DocumentID] >= opts.MaxPerDocument {
			continue
		}
		seen[key] = true
		perDoc[c.Section.DocumentID]++
		out = append(out, Ranked{Scored: c, ImportanceRank: len(out) + 1})
	}
	return out
}

// fingerprint normalizes a body for duplicate detection.
func fingerprint(body string) string {
	return strings.ToLower(strings.Join(strings.Fields(body), " "))
}
