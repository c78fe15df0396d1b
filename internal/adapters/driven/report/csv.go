package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
)

// Ensure CSVWriter implements the interface.
var _ driven.ReportWriter = (*CSVWriter)(nil)

// csvHeader names the columns of a CSV report, one row per invalid record.
var csvHeader = []string{"seq", "raw", "reason", "description", "location", "sheet", "row", "column", "cell", "line", "tag", "attribute"}

// CSVWriter writes the retained invalid records as CSV.
type CSVWriter struct{}

// NewCSV creates a CSV writer.
func NewCSV() *CSVWriter {
	return &CSVWriter{}
}

// Name returns the report format name.
func (w *CSVWriter) Name() string { return "csv" }

// Extension returns the file extension.
func (w *CSVWriter) Extension() string { return ".csv" }

// Write renders result to out.
func (w *CSVWriter) Write(out io.Writer, r *domain.RunResult) error {
	if r == nil {
		return fmt.Errorf("%w: nil result", domain.ErrInvalidInput)
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range r.InvalidRecords {
		rec := r.InvalidRecords[i]
		loc := rec.Candidate.Location
		row := []string{
			strconv.Itoa(i + 1),
			rec.Candidate.Raw,
			rec.Reason.String(),
			rec.Reason.Description(),
			loc.String(),
			loc.Sheet,
			itoa(loc.Row),
			itoa(loc.Column),
			loc.Cell,
			itoa(loc.Line),
			loc.Tag,
			loc.Attribute,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// itoa leaves unset positions blank.
func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
