package doctree

import "strings"

// Document is one input document: an identifier and its pages in order.
type Document struct {
	ID    string // Identifier as supplied by the caller (usually the filename)
	Title string // Display title (from metadata or filename)
	Pages []Page
}

// Page is the extracted plain text of a single page.
type Page struct {
	DocumentID string
	Number     int // 1-based
	Text       string
}

// Section is a candidate unit produced by the segmenter: a heading plus the
// body text that follows it on one page.
type Section struct {
	DocumentID string
	DocOrder   int // Position of the document in the input batch
	Page       int
	Ordinal    int // Order of the section within its page

	Title            string
	TitleSynthesized bool // Title derived from body text, no heading present

	Body  string // page.Text[Start:End]
	Start int
	End   int
}

// HasText reports whether any page carries non-whitespace text.
func (d Document) HasText() bool {
	for _, p := range d.Pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}

// Less orders sections by batch position: document, page, then ordinal.
func (s Section) Less(o Section) bool {
	if s.DocOrder != o.DocOrder {
		return s.DocOrder < o.DocOrder
	}
	if s.Page != o.Page {
		return s.Page < o.Page
	}
	return s.Ordinal < o.Ordinal
}

// SplitPages turns a text blob into pages, using form feeds as separators.
// Empty pages keep their number so later pages stay correctly numbered.
func SplitPages(docID, text string) []Page {
	parts := strings.Split(text, "\f")
	pages := make([]Page, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, Page{
			DocumentID: docID,
			Number:     i + 1,
			Text:       part,
		})
	}
	return pages
}
