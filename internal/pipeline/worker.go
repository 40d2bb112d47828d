package pipeline

import (
	"errors"

	"github.com/dgallion1/personadoc/internal/doctree"
	"github.com/dgallion1/personadoc/internal/score"
	"github.com/dgallion1/personadoc/internal/segment"
)

// docWork holds the per-document state of one run. It is written by exactly
// one goroutine.
type docWork struct {
	scored  []score.Scored
	skipped *segment.EmptyDocumentError
}

// processDocument splits one document into sections and scores each one.
// An empty document is recorded, not returned as error.
func (a *Analyzer) processDocument(s *score.Scorer, doc doctree.Document, docOrder int) (*docWork, error) {
	w := &docWork{}
	log := a.log.With("doc_id", doc.ID, "doc_order", docOrder)

	sections, err := a.seg.Collect(doc, docOrder)
	if err != nil {
		var empty *segment.EmptyDocumentError
		if errors.As(err, &empty) {
			w.skipped = empty
			return w, nil
		}
		return nil, err
	}

	w.scored = make([]score.Scored, len(sections))
	for i, sec := range sections {
		w.scored[i] = score.Scored{Section: sec, Score: s.ScoreSection(sec)}
	}
	log.Debug("scored document", "pages", len(doc.Pages), "sections", len(sections))
	return w, nil
}
