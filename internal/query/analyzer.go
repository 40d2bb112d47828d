package query

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Analyzer turns free text into normalized index terms: accent-folded,
// lowercased, stopword-filtered and stemmed. Safe for concurrent use.
type Analyzer struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewAnalyzer returns an English analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Terms returns the index terms of text in reading order.
func (a *Analyzer) Terms(text string) []string {
	raw := a.tokenPattern.FindAllString(strings.ToLower(fold(text)), -1)
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.ReplaceAll(tok, "’", "'")
		if i := strings.IndexByte(tok, '\''); i == 1 {
			// Elisions: "d'azur" -> "azur".
			tok = tok[i+1:]
		} else if i > 1 {
			// Possessives and contractions keep the leading word.
			tok = tok[:i]
		}
		if utf8.RuneCountInString(tok) < 2 {
			continue
		}
		if _, isStop := a.stopwords[tok]; isStop {
			continue
		}
		out = append(out, english.Stem(tok, false))
	}
	return out
}

// IsStopword reports whether the lowercased word is filtered out.
func (a *Analyzer) IsStopword(word string) bool {
	_, ok := a.stopwords[strings.ToLower(word)]
	return ok
}

// fold strips combining marks so "Côte" and "Cote" analyze the same.
// A transformer chain carries state, so a fresh one is built per call.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"i", "me", "my", "we", "our", "ours", "you", "your", "yours", "he", "him", "his", "she", "her", "hers", "its", "they", "them", "their", "theirs",
		"what", "which", "who", "whom", "whose", "how", "when", "where", "why", "there", "here",
		"all", "any", "both", "each", "few", "more", "most", "other", "some", "no", "nor", "not", "only",
		"do", "does", "did", "doing", "have", "has", "had", "having", "would", "could", "may", "might", "must", "shall",
		"am", "also", "while", "because", "until", "once", "per", "via", "etc", "get", "got", "let", "make", "use", "need", "want", "like",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
