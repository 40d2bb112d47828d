package query

import (
	"fmt"
	"sort"
	"strings"
)

// Options controls how persona and task text become term weights.
type Options struct {
	PersonaWeight float64 // Weight per persona term occurrence
	TaskWeight    float64 // Weight per task term occurrence
	PhraseWeight  float64 // Weight of each adjacent task bigram
	SynonymWeight float64 // Fraction of the source weight given to expansions

	Synonyms        map[string][]string // Extra expansions, merged with the built-in table
	DisableSynonyms bool
}

// DefaultOptions weighs task terms double the persona terms.
func DefaultOptions() Options {
	return Options{
		PersonaWeight: 1.0,
		TaskWeight:    2.0,
		PhraseWeight:  1.0,
		SynonymWeight: 0.5,
	}
}

// EmptyQueryError is returned when neither persona nor task contains a
// usable term after normalization.
type EmptyQueryError struct {
	Persona string
	Task    string
}

func (e *EmptyQueryError) Error() string {
	return fmt.Sprintf("query has no meaningful terms (persona=%q, task=%q)", e.Persona, e.Task)
}

// Query is the weighted term model of one analysis run. It is not modified
// after Build returns.
type Query struct {
	Persona string
	Task    string

	Terms   map[string]float64 // analyzed term -> weight
	Phrases map[string]float64 // "term term" bigram -> weight

	terms    []string
	phrases  []string
	total    float64
	analyzer *Analyzer
}

// Build analyzes persona and task into a Query.
func Build(persona, task string, a *Analyzer, opts Options) (*Query, error) {
	if a == nil {
		a = NewAnalyzer()
	}
	personaTerms := a.Terms(persona)
	taskTerms := a.Terms(task)
	if len(personaTerms) == 0 && len(taskTerms) == 0 {
		return nil, &EmptyQueryError{Persona: persona, Task: task}
	}

	base := make(map[string]float64)
	for _, t := range personaTerms {
		base[t] += opts.PersonaWeight
	}
	for _, t := range taskTerms {
		base[t] += opts.TaskWeight
	}

	terms := make(map[string]float64, len(base))
	for t, w := range base {
		terms[t] = w
	}
	if !opts.DisableSynonyms && opts.SynonymWeight > 0 {
		table := compileSynonyms(a, defaultSynonyms, opts.Synonyms)
		for _, src := range sortedKeys(base) {
			cand := opts.SynonymWeight * base[src]
			for _, syn := range table[src] {
				if cand > terms[syn] {
					terms[syn] = cand
				}
			}
		}
	}
	for t, w := range terms {
		if w <= 0 {
			delete(terms, t)
		}
	}
	if len(terms) == 0 {
		return nil, &EmptyQueryError{Persona: persona, Task: task}
	}

	phrases := make(map[string]float64)
	if opts.PhraseWeight > 0 {
		for i := 1; i < len(taskTerms); i++ {
			if taskTerms[i-1] == taskTerms[i] {
				continue
			}
			phrases[taskTerms[i-1]+" "+taskTerms[i]] = opts.PhraseWeight
		}
	}

	q := &Query{
		Persona:  persona,
		Task:     task,
		Terms:    terms,
		Phrases:  phrases,
		terms:    sortedKeys(terms),
		phrases:  sortedKeys(phrases),
		analyzer: a,
	}
	for _, t := range q.terms {
		q.total += terms[t]
	}
	return q, nil
}

// SortedTerms returns the query terms in lexical order. Summing in this
// order keeps floating point results identical between runs.
func (q *Query) SortedTerms() []string { return q.terms }

// SortedPhrases returns the bigram phrases in lexical order.
func (q *Query) SortedPhrases() []string { return q.phrases }

// TotalWeight is the sum of all term weights.
func (q *Query) TotalWeight() float64 { return q.total }

// Analyzer returns the analyzer the query was built with. Sections must be
// analyzed with the same one.
func (q *Query) Analyzer() *Analyzer { return q.analyzer }

// String renders the heaviest terms, for logging.
func (q *Query) String() string {
	terms := append([]string(nil), q.terms...)
	sort.SliceStable(terms, func(i, j int) bool { return q.Terms[terms[i]] > q.Terms[terms[j]] })
	if len(terms) > 8 {
		terms = terms[:8]
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = fmt.Sprintf("%s=%.2f", t, q.Terms[t])
	}
	return strings.Join(parts, " ")
}

func compileSynonyms(a *Analyzer, tables ...map[string][]string) map[string][]string {
	out := make(map[string][]string)
	for _, table := range tables {
		for key, values := range table {
			keyTerms := a.Terms(key)
			if len(keyTerms) != 1 {
				continue
			}
			k := keyTerms[0]
			for _, v := range values {
				for _, t := range a.Terms(v) {
					if t != k {
						out[k] = append(out[k], t)
					}
				}
			}
		}
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
