package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/personadoc/internal/doctree"
)

// TextParser handles plain text files. Form feeds separate pages.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	return &doctree.Document{
		ID:    filename,
		Title: baseTitle(filename),
		Pages: doctree.SplitPages(filename, text),
	}, nil
}
