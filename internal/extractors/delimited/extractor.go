// Package delimited extracts candidates from comma, semicolon, tab or pipe
// separated files. Every non-empty field of every row is a candidate.
package delimited

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
	"github.com/custodia-labs/linkcheck/internal/extractors/textio"
	"github.com/custodia-labs/linkcheck/internal/logger"
)

// Delimiter sniffing bounds: bytes of decoded text, lines sampled, and the
// share of lines that must agree on a delimiter's count.
const (
	sniffBytes   = 4096
	sniffLines   = 10
	minAgreement = 0.9
)

// delimiters are tried in order; ties go to the earlier one.
var delimiters = []rune{',', ';', '\t', '|'}

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads delimited text.
type Extractor struct {
	resolver driven.EncodingResolver
}

// New creates a delimited text extractor.
func New(resolver driven.EncodingResolver) *Extractor {
	return &Extractor{resolver: resolver}
}

// Format returns the format this extractor handles.
func (e *Extractor) Format() domain.Format {
	return domain.FormatDelimited
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Open starts reading src.
func (e *Extractor) Open(_ context.Context, src domain.SourceDescriptor, limits domain.Limits) (driven.CandidateStream, error) {
	in, err := textio.Open(src, e.resolver)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReaderSize(in.Reader, sniffBytes)
	comma := '\t'
	if !strings.EqualFold(filepath.Ext(src.Name()), ".tsv") {
		head, _ := br.Peek(sniffBytes)
		comma = Sniff(head)
	}
	logger.Debug("delimited: %s decoded as %s, delimiter %q", src.Name(), in.Encoding, comma)

	r := csv.NewReader(br)
	r.Comma = comma
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	return &stream{in: in, r: r, limits: limits}, nil
}

// Sniff picks the delimiter that splits the first lines of head most
// consistently. For each delimiter the most common per-line count (quotes
// excluded) must be non-zero and shared by at least nine in ten of the
// sampled lines. The most consistent delimiter wins, then the one with more
// fields; with no consistent delimiter it falls back to a comma.
func Sniff(head []byte) rune {
	lines := sampleLines(string(head))
	if len(lines) == 0 {
		return ','
	}

	best, bestAgree, bestCount := ',', 0.0, 0
	for _, d := range delimiters {
		count, agree := modalCount(lines, d)
		if count == 0 || agree < minAgreement {
			continue
		}
		if agree > bestAgree || (agree == bestAgree && count > bestCount) {
			best, bestAgree, bestCount = d, agree, count
		}
	}
	return best
}

// sampleLines returns up to sniffLines non-blank lines of head. A final line
// without a newline is dropped when earlier lines exist, since head may end
// mid-line.
func sampleLines(head string) []string {
	parts := strings.Split(head, "\n")
	if len(parts) > 1 && !strings.HasSuffix(head, "\n") {
		parts = parts[:len(parts)-1]
	}

	lines := make([]string, 0, sniffLines)
	for _, line := range parts {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == sniffLines {
			break
		}
	}
	return lines
}

// modalCount returns the most common number of unquoted d per line and the
// share of lines that have exactly that number. Ties go to the larger count.
func modalCount(lines []string, d rune) (int, float64) {
	freq := make(map[int]int)
	for _, line := range lines {
		freq[countUnquoted(line, d)]++
	}

	mode, seen := 0, 0
	for count, n := range freq {
		if n > seen || (n == seen && count > mode) {
			mode, seen = count, n
		}
	}
	return mode, float64(seen) / float64(len(lines))
}

func countUnquoted(line string, d rune) int {
	n := 0
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == d && !quoted:
			n++
		}
	}
	return n
}

type stream struct {
	in     *textio.Input
	r      *csv.Reader
	limits domain.Limits

	record    []string
	row       int
	col       int
	produced  int
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
		for s.col < len(s.record) {
			s.col++
			if s.limits.ColumnsExceeded(s.col) {
				s.markTruncated("column ceiling %d reached on row %d", s.limits.MaxColumns, s.row)
				s.col = len(s.record)
				break
			}
			field := s.record[s.col-1]
			if strings.TrimSpace(field) == "" {
				continue
			}
			s.produced++
			return domain.Candidate{Raw: field, Location: domain.TabularAt(s.row, s.col)}, nil
		}

		if s.done {
			return domain.Candidate{}, io.EOF
		}

		// 2. Read the next row
		record, err := s.r.Read()
		if errors.Is(err, io.EOF) {
			s.done = true
			continue
		}
		s.row++

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			s.skipped++
			s.record = nil
			logger.Debug("delimited: row %d skipped: %v", s.row, parseErr)
			continue
		}
		if err != nil {
			return domain.Candidate{}, fmt.Errorf("read row %d: %w", s.row, err)
		}

		// 3. Enforce the row ceiling
		if s.limits.RowsExceeded(s.row) {
			s.markTruncated("row ceiling %d reached", s.limits.MaxRows)
			s.record = nil
			s.done = true
			continue
		}

		s.record = record
		s.col = 0
	}
}

func (s *stream) markTruncated(format string, args ...any) {
	if !s.truncated {
		logger.Debug("delimited: "+format, args...)
	}
	s.truncated = true
}

func (s *stream) Stats() driven.ExtractStats {
	return driven.ExtractStats{
		Skipped:       s.skipped,
		Truncated:     s.truncated,
		TotalEstimate: s.in.Estimate(s.produced),
		Encoding:      s.in.Encoding,
	}
}

func (s *stream) Close() error {
	return s.in.Close()
}
