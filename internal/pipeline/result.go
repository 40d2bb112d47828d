package pipeline

import (
	"time"

	"github.com/dgallion1/personadoc/internal/doctree"
	"github.com/dgallion1/personadoc/internal/rank"
	"github.com/dgallion1/personadoc/internal/refine"
	"github.com/dgallion1/personadoc/internal/segment"
)

// Metadata describes the inputs of a run.
type Metadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
	Warnings            []string `json:"warnings,omitempty"`
}

// ExtractedSection is one ranked section in the output.
type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// SubsectionAnalysis is the refined passage of a ranked section.
type SubsectionAnalysis struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// Result is the output of one analysis run.
type Result struct {
	Metadata           Metadata             `json:"metadata"`
	ExtractedSections  []ExtractedSection   `json:"extracted_sections"`
	SubsectionAnalysis []SubsectionAnalysis `json:"subsection_analysis"`

	// Internal: not serialized.
	RunID    string                        `json:"-"`
	Ranked   []rank.Ranked                 `json:"-"`
	Passages []refine.Passage              `json:"-"`
	Skipped  []*segment.EmptyDocumentError `json:"-"`
	Duration time.Duration                 `json:"-"`
}

func newResult(docs []doctree.Document, persona, task string, now time.Time) *Result {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return &Result{
		Metadata: Metadata{
			InputDocuments:      ids,
			Persona:             persona,
			JobToBeDone:         task,
			ProcessingTimestamp: now.Format(time.RFC3339Nano),
		},
	}
}

// fill derives the serialized sections from Ranked, Passages and Skipped.
func (r *Result) fill() {
	r.ExtractedSections = make([]ExtractedSection, len(r.Ranked))
	for i, rk := range r.Ranked {
		r.ExtractedSections[i] = ExtractedSection{
			Document:       rk.Section.DocumentID,
			SectionTitle:   rk.Section.Title,
			ImportanceRank: rk.ImportanceRank,
			PageNumber:     rk.Section.Page,
		}
	}
	r.SubsectionAnalysis = make([]SubsectionAnalysis, len(r.Passages))
	for i, p := range r.Passages {
		r.SubsectionAnalysis[i] = SubsectionAnalysis{
			Document:    p.DocumentID,
			RefinedText: p.Text,
			PageNumber:  p.Page,
		}
	}
	for _, s := range r.Skipped {
		r.Metadata.Warnings = append(r.Metadata.Warnings, s.Error())
	}
}
