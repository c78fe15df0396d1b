// Package spreadsheet extracts candidates from Office Open XML workbooks.
//
// Worksheets are visited in workbook order and read row by row through
// excelize's streaming row iterator, so a large sheet is never materialised
// as a whole. The row ceiling applies to the workbook as a whole.
package spreadsheet

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
	"github.com/custodia-labs/linkcheck/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads .xlsx and .xlsm workbooks.
type Extractor struct{}

// New creates a spreadsheet extractor.
func New() *Extractor {
	return &Extractor{}
}

// Format returns the format this extractor handles.
func (e *Extractor) Format() domain.Format {
	return domain.FormatSpreadsheet
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Open parses the workbook container and lists its sheets.
func (e *Extractor) Open(_ context.Context, src domain.SourceDescriptor, limits domain.Limits) (driven.CandidateStream, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src.Name(), err)
	}
	defer rc.Close()

	br := bufio.NewReader(rc)
	head, err := br.Peek(8)
	if len(head) == 0 {
		if err == nil || err == io.EOF {
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceEmpty, src.Name())
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnreadable, err)
	}
	if domain.IsLegacyWorkbook(head) {
		return nil, fmt.Errorf("%w: %s is a legacy or encrypted workbook; save it as .xlsx", domain.ErrFormat, src.Name())
	}

	f, err := excelize.OpenReader(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrFormat, src.Name(), err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %s has no worksheets", domain.ErrFormat, src.Name())
	}
	logger.Debug("spreadsheet: %s has %d sheet(s): %s", src.Name(), len(sheets), strings.Join(sheets, ", "))

	return &stream{file: f, sheets: sheets, limits: limits}, nil
}

type stream struct {
	file   *excelize.File
	sheets []string
	limits domain.Limits

	sheet     int
	rows      *excelize.Rows
	row       int
	cells     []string
	col       int
	totalRows int
	skipped   int
	truncated bool
	done      bool
}

func (s *stream) Next(ctx context.Context) (domain.Candidate, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Candidate{}, err
		}

		// 1. Drain the current row
		for s.col < len(s.cells) {
			s.col++
			if s.limits.ColumnsExceeded(s.col) {
				s.markTruncated("column ceiling %d reached on %s row %d", s.limits.MaxColumns, s.currentSheet(), s.row)
				s.col = len(s.cells)
				break
			}
			value := s.cells[s.col-1]
			if strings.TrimSpace(value) == "" {
				continue
			}
			return domain.Candidate{Raw: value, Location: s.location()}, nil
		}
		s.cells = nil

		if s.done {
			return domain.Candidate{}, io.EOF
		}

		// 2. Advance to the next sheet when needed
		if s.rows == nil {
			if s.sheet >= len(s.sheets) {
				s.done = true
				continue
			}
			rows, err := s.file.Rows(s.sheets[s.sheet])
			s.sheet++
			s.row = 0
			if err != nil {
				s.skipped++
				logger.Debug("spreadsheet: sheet %q skipped: %v", s.currentSheet(), err)
				continue
			}
			s.rows = rows
		}

		// 3. Read the next row
		if !s.rows.Next() {
			if err := s.rows.Error(); err != nil {
				s.skipped++
				logger.Debug("spreadsheet: sheet %q stopped early: %v", s.currentSheet(), err)
			}
			s.closeRows()
			continue
		}
		s.row++
		s.totalRows++

		if s.limits.RowsExceeded(s.totalRows) {
			s.markTruncated("row ceiling %d reached on %s", s.limits.MaxRows, s.currentSheet())
			s.closeRows()
			s.done = true
			continue
		}

		cells, err := s.rows.Columns()
		if err != nil {
			s.skipped++
			logger.Debug("spreadsheet: %s row %d skipped: %v", s.currentSheet(), s.row, err)
			continue
		}
		s.cells = cells
		s.col = 0
	}
}

func (s *stream) currentSheet() string {
	if s.sheet == 0 {
		return ""
	}
	return s.sheets[s.sheet-1]
}

func (s *stream) location() domain.Location {
	loc := domain.TabularAt(s.row, s.col)
	loc.Sheet = s.currentSheet()
	if cell, err := excelize.CoordinatesToCellName(s.col, s.row); err == nil {
		loc.Cell = cell
	}
	return loc
}

func (s *stream) markTruncated(format string, args ...any) {
	if !s.truncated {
		logger.Debug("spreadsheet: "+format, args...)
	}
	s.truncated = true
}

func (s *stream) closeRows() {
	if s.rows != nil {
		s.rows.Close()
		s.rows = nil
	}
}

func (s *stream) Stats() driven.ExtractStats {
	return driven.ExtractStats{
		Skipped:   s.skipped,
		Truncated: s.truncated,
	}
}

func (s *stream) Close() error {
	s.closeRows()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
