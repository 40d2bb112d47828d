package input

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/personadoc/internal/doctree"
	"github.com/dgallion1/personadoc/internal/parser"
)

// Resolver turns batch entries into documents with page text.
type Resolver struct {
	DocDir string        // Directory holding files named by DocumentInput.Filename; empty disables file reads
	Cache  *parser.Cache // Optional; files are parsed directly when nil
	Log    *slog.Logger
}

// Resolve returns one document per batch entry, in batch order. Text comes
// from inline pages, then inline content, then the file in DocDir. An entry
// whose file is missing or unreadable yields a document without pages; the
// analysis reports it as skipped.
func (r *Resolver) Resolve(b *Batch) []doctree.Document {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	docs := make([]doctree.Document, 0, len(b.Documents))
	for _, in := range b.Documents {
		doc := r.resolveOne(in, log)
		if in.Title != "" {
			doc.Title = in.Title
		}
		docs = append(docs, doc)
	}
	return docs
}

func (r *Resolver) resolveOne(in DocumentInput, log *slog.Logger) doctree.Document {
	doc := doctree.Document{ID: in.Filename, Title: strings.TrimSuffix(in.Filename, filepath.Ext(in.Filename))}
	log = log.With("doc_id", in.Filename)

	switch {
	case len(in.Pages) > 0:
		for _, p := range in.Pages {
			doc.Pages = append(doc.Pages, doctree.Page{DocumentID: in.Filename, Number: p.PageNumber, Text: p.Text})
		}
		sort.SliceStable(doc.Pages, func(i, j int) bool { return doc.Pages[i].Number < doc.Pages[j].Number })
		return doc
	case in.Content != "":
		doc.Pages = doctree.SplitPages(in.Filename, in.Content)
		return doc
	}

	if r.DocDir == "" {
		log.Warn("document has no inline text")
		return doc
	}
	path := filepath.Join(r.DocDir, filepath.Base(in.Filename))
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("document file not readable", "path", path, "error", err)
		return doc
	}

	var parsed *doctree.Document
	if r.Cache != nil {
		parsed, err = r.Cache.Extract(data, in.Filename)
	} else {
		parsed, err = parser.Parse(bytes.NewReader(data), in.Filename)
	}
	if err != nil {
		log.Warn("text extraction failed", "path", path, "error", err)
		return doc
	}
	log.Debug("extracted document", "pages", len(parsed.Pages))
	return *parsed
}
