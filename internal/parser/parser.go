package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/personadoc/internal/doctree"
)

// Parser converts raw document bytes into page text.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: true}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Parse picks a parser by extension and runs it.
func Parse(r io.Reader, filename string) (*doctree.Document, error) {
	p, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	return p.Parse(r, filename)
}

func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// pageWriter renders structured content as the plain text the segmenter
// reads: markdown-style heading lines and blank-line separated blocks.
type pageWriter struct {
	sb strings.Builder
}

func (w *pageWriter) heading(level int, title string) {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return
	}
	level = min(max(level, 1), 6)
	w.sep()
	w.sb.WriteString(strings.Repeat("#", level) + " " + title + "\n")
}

func (w *pageWriter) block(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	w.sep()
	w.sb.WriteString(text + "\n")
}

func (w *pageWriter) sep() {
	if w.sb.Len() > 0 {
		w.sb.WriteString("\n")
	}
}

// document returns a single-page document holding everything written.
func (w *pageWriter) document(filename, title string) *doctree.Document {
	return &doctree.Document{
		ID:    filename,
		Title: title,
		Pages: []doctree.Page{{DocumentID: filename, Number: 1, Text: w.sb.String()}},
	}
}
