package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
)

// Sheet names used in workbook reports.
const (
	SummarySheet = "Summary"
	InvalidSheet = "Invalid Links"
)

// Ensure XLSXWriter implements the interface.
var _ driven.ReportWriter = (*XLSXWriter)(nil)

// XLSXWriter writes a workbook with a summary sheet and an invalid links sheet.
type XLSXWriter struct{}

// NewXLSX creates a workbook writer.
func NewXLSX() *XLSXWriter {
	return &XLSXWriter{}
}

// Name returns the report format name.
func (w *XLSXWriter) Name() string { return "xlsx" }

// Extension returns the file extension.
func (w *XLSXWriter) Extension() string { return ".xlsx" }

// Write renders result to out.
func (w *XLSXWriter) Write(out io.Writer, r *domain.RunResult) error {
	if r == nil {
		return fmt.Errorf("%w: nil result", domain.ErrInvalidInput)
	}

	f := excelize.NewFile()
	defer f.Close()

	// 1. Summary sheet
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	rows := [][]any{
		{"Run", r.RunID},
		{"Source", r.Source},
		{"Format", r.Format.String()},
		{"Status", r.Status.String()},
		{"Code", string(r.Code)},
		{"Message", r.Message},
		{"Started", r.StartedAt.Format(time.RFC3339)},
		{"Duration", r.Duration.Round(time.Millisecond).String()},
		{"Total links found", r.TotalProcessed},
		{"Valid links", r.Valid},
		{"Invalid links", r.Invalid},
		{"Skipped", r.Skipped},
		{"Truncated", r.Truncated},
		{"Invalid links not listed", r.InvalidDropped},
	}
	if err := setRows(f, SummarySheet, rows); err != nil {
		return err
	}

	// 2. Invalid links sheet
	if _, err := f.NewSheet(InvalidSheet); err != nil {
		return fmt.Errorf("create invalid sheet: %w", err)
	}
	rows = make([][]any, 0, len(r.InvalidRecords)+1)
	rows = append(rows, []any{"#", "URL", "Reason", "Description", "Location"})
	for i := range r.InvalidRecords {
		rec := r.InvalidRecords[i]
		rows = append(rows, []any{
			i + 1,
			rec.Candidate.Raw,
			rec.Reason.String(),
			rec.Reason.Description(),
			rec.Candidate.Location.String(),
		})
	}
	if err := setRows(f, InvalidSheet, rows); err != nil {
		return err
	}

	// 3. Serialise
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
