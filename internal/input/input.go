package input

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/personadoc/internal/doctree"
)

// DefaultMinDocuments is the smallest batch the CLI and API accept.
const DefaultMinDocuments = 3

// ChallengeInfo identifies the test case a batch belongs to.
type ChallengeInfo struct {
	ChallengeID  string `json:"challenge_id" yaml:"challenge_id"`
	TestCaseName string `json:"test_case_name" yaml:"test_case_name"`
	Description  string `json:"description" yaml:"description"`
}

// PageInput is already extracted text of one page.
type PageInput struct {
	PageNumber int    `json:"page_number" yaml:"page_number" validate:"gte=1"`
	Text       string `json:"text" yaml:"text"`
}

// DocumentInput names a document and optionally carries its text.
type DocumentInput struct {
	Filename string      `json:"filename" yaml:"filename" validate:"required"`
	Title    string      `json:"title,omitempty" yaml:"title,omitempty"`
	Content  string      `json:"content,omitempty" yaml:"content,omitempty"`
	Pages    []PageInput `json:"pages,omitempty" yaml:"pages,omitempty" validate:"dive"`
}

type Persona struct {
	Role string `json:"role" yaml:"role"`
}

type JobToBeDone struct {
	Task string `json:"task" yaml:"task"`
}

// Batch is the analysis request file.
type Batch struct {
	ChallengeInfo ChallengeInfo   `json:"challenge_info" yaml:"challenge_info"`
	Documents     []DocumentInput `json:"documents" yaml:"documents" validate:"required,min=1,dive"`
	Persona       *Persona        `json:"persona" yaml:"persona" validate:"required"`
	JobToBeDone   *JobToBeDone    `json:"job_to_be_done" yaml:"job_to_be_done" validate:"required"`
}

// Role returns the persona role, or "" when absent.
func (b *Batch) Role() string {
	if b.Persona == nil {
		return ""
	}
	return b.Persona.Role
}

// Task returns the job-to-be-done task, or "" when absent.
func (b *Batch) Task() string {
	if b.JobToBeDone == nil {
		return ""
	}
	return b.JobToBeDone.Task
}

// ValidationError lists every problem found in a batch.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Problems, "; ")
}

// InsufficientDocumentsError is returned when a batch is smaller than the
// caller's minimum.
type InsufficientDocumentsError struct {
	Got int
	Min int
}

func (e *InsufficientDocumentsError) Error() string {
	return fmt.Sprintf("at least %d documents are required, got %d", e.Min, e.Got)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the batch structure. Empty persona and task strings pass
// here; whether they carry meaning is decided by the query model.
func (b *Batch) Validate() error {
	err := validate.Struct(b)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return eris.Wrap(err, "validate input")
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Problems = append(ve.Problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return ve
}

// Load reads and validates a batch file. Files ending in .yaml or .yml are
// read as YAML, anything else as JSON.
func Load(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "input: read %s", path)
	}
	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	b, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, eris.Wrapf(err, "input: %s", path)
	}
	return b, nil
}

// Decode parses and validates a batch in the given format ("json" or "yaml").
func Decode(r io.Reader, format string) (*Batch, error) {
	var b Batch
	switch format {
	case "yaml":
		if err := yaml.NewDecoder(r).Decode(&b); err != nil {
			return nil, &ValidationError{Problems: []string{"malformed yaml: " + err.Error()}}
		}
	default:
		dec := json.NewDecoder(r)
		if err := dec.Decode(&b); err != nil {
			return nil, &ValidationError{Problems: []string{"malformed json: " + err.Error()}}
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// EnforceMinimum rejects batches with fewer than minDocs documents.
func EnforceMinimum(docs []doctree.Document, minDocs int) error {
	if minDocs > 0 && len(docs) < minDocs {
		return &InsufficientDocumentsError{Got: len(docs), Min: minDocs}
	}
	return nil
}
