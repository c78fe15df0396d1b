package driven

import (
	"context"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

// Extractor turns a source of one format into a lazy stream of candidates.
type Extractor interface {
	// Format returns the format this extractor handles.
	Format() domain.Format

	// Priority returns the selection priority (higher = preferred).
	// Built-in extractors return 50. Fallbacks should return 1-9.
	Priority() int

	// Open prepares a stream over src.
	// It fails fast with domain.ErrFormat or domain.ErrSourceUnreadable
	// when the source cannot be opened at all; no candidate is produced then.
	Open(ctx context.Context, src domain.SourceDescriptor, limits domain.Limits) (CandidateStream, error)
}

// CandidateStream yields candidates one at a time.
// Streams are single-pass and not safe for concurrent use.
type CandidateStream interface {
	// Next returns the next candidate, or io.EOF when the stream is exhausted.
	// Row-level problems are absorbed and counted in Stats().Skipped;
	// any other error is unrecoverable for the run.
	Next(ctx context.Context) (domain.Candidate, error)

	// Stats reports what the stream has observed so far.
	Stats() ExtractStats

	// Close releases the underlying resources. It is safe to call more than once.
	Close() error
}

// ExtractStats summarises a stream.
type ExtractStats struct {
	// Skipped counts rows, lines or elements that could not be read.
	Skipped int

	// Truncated is set once a row or column ceiling stopped extraction early.
	Truncated bool

	// TotalEstimate is the expected number of candidates, or 0 when unknown.
	TotalEstimate int

	// Encoding is the text encoding in use, empty for binary formats.
	Encoding string
}
