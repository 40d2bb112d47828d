package segment

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	markdownHeading = regexp.MustCompile(`^#{1,6}\s+\S`)
	numberedHeading = regexp.MustCompile(`^(\d+(\.\d+)*\.?|[IVXLC]+\.)\s+\p{Lu}`)
	labeledHeading  = regexp.MustCompile(`(?i)^(chapter|section|part|appendix)\s+([0-9]+|[ivxlc]+)\b`)
)

// minorWords may stay lowercase inside a Title Case heading.
var minorWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true, "nor": true,
	"of": true, "in": true, "on": true, "at": true, "to": true, "for": true, "with": true,
	"by": true, "from": true, "into": true, "over": true, "via": true, "vs": true,
	"de": true, "du": true, "des": true, "la": true, "le": true, "les": true, "et": true,
}

// isHeading reports whether a trimmed line looks like a section heading.
func (s *Segmenter) isHeading(text string) bool {
	n := utf8.RuneCountInString(text)
	if n < 3 || n > s.cfg.MaxHeadingChars {
		return false
	}
	if markdownHeading.MatchString(text) {
		return true
	}

	first, _ := utf8.DecodeRuneInString(text)
	switch first {
	case '-', '*', '•', '–', '·', '+', '>':
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(text)
	switch last {
	case '.', ',', ';', '!', '?':
		return false
	}

	if numberedHeading.MatchString(text) || labeledHeading.MatchString(text) {
		return true
	}

	words := strings.Fields(text)
	if last == ':' {
		return len(words) <= 8 && unicode.IsUpper(first)
	}
	if isAllCaps(text) && n >= 4 {
		return true
	}
	return isTitleCase(words)
}

func isAllCaps(text string) bool {
	letters := 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters >= 2
}

func isTitleCase(words []string) bool {
	if len(words) < 2 || len(words) > 12 {
		return false
	}
	counted, capitalized := 0, 0
	for i, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsLetter(r) {
			continue
		}
		if i == 0 && !unicode.IsUpper(r) {
			return false
		}
		if i > 0 && minorWords[strings.ToLower(w)] {
			continue
		}
		counted++
		if unicode.IsUpper(r) {
			capitalized++
		}
	}
	if counted == 0 {
		return false
	}
	return float64(capitalized)/float64(counted) >= 0.7
}

// cleanHeading strips markup cues from a heading line.
func cleanHeading(text string) string {
	text = strings.TrimLeft(text, "#")
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, ":")
	return strings.Join(strings.Fields(text), " ")
}
