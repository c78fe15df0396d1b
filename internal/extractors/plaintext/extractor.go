// Package plaintext extracts one candidate per non-blank line of a text file.
package plaintext

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
	"github.com/custodia-labs/linkcheck/internal/extractors/textio"
	"github.com/custodia-labs/linkcheck/internal/logger"
)

// maxLineBytes bounds a single line. Longer lines are skipped.
const maxLineBytes = 64 * 1024

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads plain text line by line.
type Extractor struct {
	resolver driven.EncodingResolver
}

// New creates a plain text extractor.
func New(resolver driven.EncodingResolver) *Extractor {
	return &Extractor{resolver: resolver}
}

// Format returns the format this extractor handles.
func (e *Extractor) Format() domain.Format {
	return domain.FormatPlainText
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Open starts reading src.
func (e *Extractor) Open(_ context.Context, src domain.SourceDescriptor, _ domain.Limits) (driven.CandidateStream, error) {
	in, err := textio.Open(src, e.resolver)
	if err != nil {
		return nil, err
	}
	logger.Debug("plaintext: %s decoded as %s", src.Name(), in.Encoding)

	return &stream{
		in: in,
		r:  bufio.NewReaderSize(in.Reader, maxLineBytes),
	}, nil
}

type stream struct {
	in       *textio.Input
	r        *bufio.Reader
	line     int
	produced int
	skipped  int
}

func (s *stream) Next(ctx context.Context) (domain.Candidate, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Candidate{}, err
		}

		text, tooLong, err := s.readLine()
		if err != nil {
			return domain.Candidate{}, err
		}
		s.line++

		if tooLong {
			s.skipped++
			logger.Debug("plaintext: line %d exceeds %d bytes, skipped", s.line, maxLineBytes)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		s.produced++
		return domain.Candidate{Raw: text, Location: domain.LineAt(s.line)}, nil
	}
}

// readLine returns the next line without its terminator. A line longer than
// the buffer is consumed entirely and reported as tooLong.
func (s *stream) readLine() (string, bool, error) {
	line, isPrefix, err := s.r.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", false, io.EOF
		}
		return "", false, fmt.Errorf("read line %d: %w", s.line+1, err)
	}
	if !isPrefix {
		return string(line), false, nil
	}

	for isPrefix {
		_, isPrefix, err = s.r.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", false, fmt.Errorf("read line %d: %w", s.line+1, err)
		}
	}
	return "", true, nil
}

func (s *stream) Stats() driven.ExtractStats {
	return driven.ExtractStats{
		Skipped:       s.skipped,
		TotalEstimate: s.in.Estimate(s.produced),
		Encoding:      s.in.Encoding,
	}
}

func (s *stream) Close() error {
	return s.in.Close()
}
