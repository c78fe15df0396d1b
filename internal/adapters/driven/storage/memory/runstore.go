package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.RunResult
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.RunResult),
	}
}

// Save stores or replaces a run result.
func (s *RunStore) Save(_ context.Context, result *domain.RunResult) error {
	if result == nil || result.RunID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[result.RunID] = copyResult(result, true)
	return nil
}

// Get retrieves a run by ID, including its invalid records.
func (s *RunStore) Get(_ context.Context, runID string) (*domain.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := copyResult(&result, true)
	return &c, nil
}

// List returns runs newest first, without invalid records.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := s.sortedLocked()
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i] = copyResult(&results[i], false)
	}
	return results, nil
}

// Delete removes a run.
func (s *RunStore) Delete(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[runID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.runs, runID)
	return nil
}

// Prune keeps the newest keep runs and deletes the rest.
func (s *RunStore) Prune(_ context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	results := s.sortedLocked()
	if len(results) <= keep {
		return 0, nil
	}
	for _, r := range results[keep:] {
		delete(s.runs, r.RunID)
	}
	return len(results) - keep, nil
}

// sortedLocked returns all runs newest first (caller must hold lock).
func (s *RunStore) sortedLocked() []domain.RunResult {
	results := make([]domain.RunResult, 0, len(s.runs))
	for _, r := range s.runs {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		if !results[i].StartedAt.Equal(results[j].StartedAt) {
			return results[i].StartedAt.After(results[j].StartedAt)
		}
		return results[i].RunID > results[j].RunID
	})
	return results
}

func copyResult(r *domain.RunResult, withRecords bool) domain.RunResult {
	c := *r
	c.InvalidRecords = nil
	if withRecords && len(r.InvalidRecords) > 0 {
		c.InvalidRecords = append([]domain.ClassifiedRecord(nil), r.InvalidRecords...)
	}
	return c
}
