package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/personadoc/internal/doctree"
)

// CSVParser handles CSV files. Each data row becomes a "Row N" heading,
// N being its line in the file, over one block of "header: value" pairs.
// Empty cells are dropped and cells past the header row stand alone.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var w pageWriter
	if len(records) == 0 {
		return w.document(filename, baseTitle(filename)), nil
	}

	// First row is headers.
	headers := records[0]
	for i, row := range records[1:] {
		var fields []string
		for j, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if j < len(headers) && headers[j] != "" {
				fields = append(fields, headers[j]+": "+cell)
			} else {
				fields = append(fields, cell)
			}
		}
		if len(fields) == 0 {
			continue
		}
		w.heading(2, fmt.Sprintf("Row %d", i+2)) // 1-indexed, skip header
		// The trailing period keeps short rows from reading as headings.
		w.block(strings.Join(fields, "; ") + ".")
	}

	return w.document(filename, baseTitle(filename)), nil
}
