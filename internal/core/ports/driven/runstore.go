package driven

import (
	"context"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

// RunStore persists finished runs.
type RunStore interface {
	// Save stores or replaces a run result.
	Save(ctx context.Context, result *domain.RunResult) error

	// Get retrieves a run by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, runID string) (*domain.RunResult, error)

	// List returns the most recent runs first, at most limit (0 = all).
	// Invalid records are not loaded.
	List(ctx context.Context, limit int) ([]domain.RunResult, error)

	// Delete removes a run.
	Delete(ctx context.Context, runID string) error

	// Prune keeps the newest keep runs and deletes the rest.
	Prune(ctx context.Context, keep int) (int, error)
}
