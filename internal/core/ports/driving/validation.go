package driving

import (
	"context"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

// ValidationService runs link validation over sources.
type ValidationService interface {
	// Submit starts a run on its own goroutine and returns its handle at once.
	// It returns an error only for a malformed request; a source that fails
	// pre-flight checks yields a handle that is already Failed.
	Submit(ctx context.Context, req SubmitRequest) (RunHandle, error)

	// ValidateURL classifies a single string.
	ValidateURL(raw string, policy domain.ValidationPolicy) domain.ClassifiedRecord

	// Status returns a snapshot of an active or stored run.
	Status(ctx context.Context, runID string) (*domain.RunState, error)

	// Cancel requests cancellation of an active run.
	Cancel(ctx context.Context, runID string) error

	// GetRun returns the result of a finished run from history.
	GetRun(ctx context.Context, runID string) (*domain.RunResult, error)

	// History returns finished runs, newest first.
	History(ctx context.Context, limit int) ([]domain.RunResult, error)

	// ClearHistory removes all finished runs from history.
	ClearHistory(ctx context.Context) (int, error)
}

// SubmitRequest describes one run.
type SubmitRequest struct {
	// Source supplies the bytes.
	Source domain.SourceDescriptor

	// FormatHint overrides format detection when set.
	FormatHint domain.Format

	// Policy is copied into the run.
	Policy domain.ValidationPolicy

	// Limits bounds the run.
	Limits domain.Limits
}

// RunHandle is the caller's view of a submitted run.
type RunHandle interface {
	// ID returns the run identifier.
	ID() string

	// Cancel requests cooperative cancellation.
	// It is idempotent and has no effect once the run is terminal.
	Cancel()

	// Snapshot returns a consistent copy of the run state.
	Snapshot() domain.RunState

	// Subscribe returns a finite channel of progress events.
	// The channel is closed after the final event, which is delivered exactly once.
	// Subscribing after the run finished yields only the final event.
	Subscribe() <-chan domain.ProgressEvent

	// Done is closed when the run reaches a terminal state.
	Done() <-chan struct{}

	// Wait blocks until the run is terminal or ctx is done.
	Wait(ctx context.Context) (*domain.RunResult, error)
}
