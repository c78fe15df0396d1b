package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driving"
	"github.com/custodia-labs/linkcheck/internal/logger"
)

// detectBytes is how much of a source is read to detect its format.
const detectBytes = 512

// Ensure ValidationService implements the interface.
var _ driving.ValidationService = (*ValidationService)(nil)

// ValidationService runs sources through extraction and validation.
type ValidationService struct {
	registry  driven.ExtractorRegistry
	validator driven.URLValidator
	runStore  driven.RunStore
	settings  domain.AppSettings
	now       func() time.Time

	// Active run tracking
	mu         sync.RWMutex
	activeRuns map[string]*runHandle
}

// NewValidationService creates a new validation service.
// The runStore is optional - if nil, finished runs are not kept.
// Settings supply the policy and limits used when a request leaves them
// empty, as well as progress pacing and history retention.
func NewValidationService(
	registry driven.ExtractorRegistry,
	validator driven.URLValidator,
	runStore driven.RunStore,
	settings domain.AppSettings,
) *ValidationService {
	return &ValidationService{
		registry:   registry,
		validator:  validator,
		runStore:   runStore,
		settings:   settings,
		now:        time.Now,
		activeRuns: make(map[string]*runHandle),
	}
}

// Submit starts a run and returns its handle.
func (s *ValidationService) Submit(ctx context.Context, req driving.SubmitRequest) (driving.RunHandle, error) {
	if req.Source == nil {
		return nil, fmt.Errorf("%w: source is required", domain.ErrInvalidInput)
	}
	if req.FormatHint != domain.FormatUnknown && !req.FormatHint.IsValid() {
		return nil, fmt.Errorf("%w: unknown format %q", domain.ErrInvalidInput, req.FormatHint)
	}

	// 1. Resolve per-run policy and limits
	policy := req.Policy.Clone()
	if len(policy.AllowedSchemes) == 0 {
		policy = s.settings.Policy.Clone()
	}
	limits := req.Limits
	if limits == (domain.Limits{}) {
		limits = s.settings.Limits
	}

	h := newRunHandle(uuid.New().String(), req.Source, limits.MaxInvalidRecords, s.now)
	logger.Run(h.id).Info("starting for %s", req.Source.Name())

	// 2. Pre-flight: existence, size, format
	extractor, err := s.preflight(h, req, limits)
	if err != nil {
		logger.Run(h.id).Info("failed pre-flight: %v", err)
		s.fail(h, err)
		return h, nil
	}

	// 3. Detach from the caller; the run lives until it finishes or times out
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if limits.Timeout > 0 {
		runCtx, cancel = withTimeout(runCtx, cancel, limits.Timeout)
	}
	h.cancel = cancel

	s.setActive(h)
	go s.run(runCtx, h, extractor, req.Source, policy, limits)

	return h, nil
}

// withTimeout layers a deadline over ctx and returns a cancel func that
// releases both contexts.
func withTimeout(ctx context.Context, parent context.CancelFunc, d time.Duration) (context.Context, context.CancelFunc) {
	timed, cancel := context.WithTimeout(ctx, d)
	return timed, func() {
		cancel()
		parent()
	}
}

// preflight checks the source and picks the extractor without reading candidates.
func (s *ValidationService) preflight(h *runHandle, req driving.SubmitRequest, limits domain.Limits) (driven.Extractor, error) {
	src := req.Source

	size, err := src.Size()
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceEmpty, src.Name())
	}
	if limits.MaxFileSize > 0 && size > limits.MaxFileSize {
		return nil, domain.NewRunError(domain.KindSource, domain.CodeFileTooLarge,
			fmt.Errorf("%w: %s is %d bytes, limit is %d", domain.ErrSourceTooLarge, src.Name(), size, limits.MaxFileSize)).
			With("size", size).
			With("limit", limits.MaxFileSize)
	}

	format := req.FormatHint
	if format == domain.FormatUnknown {
		head, err := readHead(src)
		if err != nil {
			return nil, err
		}
		format, err = s.registry.Detect(src.Name(), head)
		if err != nil {
			return nil, err
		}
	}
	h.setFormat(format)

	extractor, err := s.registry.Get(format)
	if err != nil {
		return nil, err
	}
	return extractor, nil
}

func readHead(src domain.SourceDescriptor) ([]byte, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	head := make([]byte, detectBytes)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnreadable, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceEmpty, src.Name())
	}
	return head[:n], nil
}

// run drives one extraction on the worker goroutine.
//
//nolint:gocognit // Run loop with cancellation, timeout and progress paths
func (s *ValidationService) run(
	ctx context.Context,
	h *runHandle,
	extractor driven.Extractor,
	src domain.SourceDescriptor,
	policy domain.ValidationPolicy,
	limits domain.Limits,
) {
	// 1. Enter Running unless cancelled while pending
	if !h.start(extractor.Format()) {
		s.cancelled(h)
		return
	}

	// 2. Open the stream
	stream, err := extractor.Open(ctx, src, limits)
	if err != nil {
		if h.cancelRequested() {
			s.cancelled(h)
			return
		}
		s.fail(h, s.classify(ctx, err))
		return
	}
	defer stream.Close()

	throttle := newProgressThrottle(s.settings.Progress, s.now)

	// 3. Pull, validate, count
	for {
		if h.cancelRequested() {
			s.observe(h, stream)
			s.cancelled(h)
			return
		}

		candidate, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.observe(h, stream)
			if h.cancelRequested() {
				s.cancelled(h)
				return
			}
			s.fail(h, s.classify(ctx, err))
			return
		}

		processed := h.record(s.validator.Validate(candidate, policy))
		if throttle.due(processed) {
			s.observe(h, stream)
			h.progress()
		}
	}

	// 4. Exhausted
	s.observe(h, stream)
	snapshot := h.Snapshot()
	if snapshot.Truncated {
		logger.Run(h.id).Info("truncated at the configured ceiling")
	}
	s.finish(h, domain.RunCompleted, domain.Outcome{
		Code:    domain.CodeCompleted,
		Message: domain.MessageFor(domain.CodeCompleted),
	})
}

func (s *ValidationService) observe(h *runHandle, stream driven.CandidateStream) {
	stats := stream.Stats()
	h.observe(stats.Skipped, stats.Truncated, stats.TotalEstimate)
}

// classify turns a mid-run error into a run error, recognising the run deadline.
func (s *ValidationService) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return err
}

func (s *ValidationService) cancelled(h *runHandle) {
	s.finish(h, domain.RunCancelled, domain.Outcome{
		Code:    domain.CodeCancelled,
		Message: domain.MessageFor(domain.CodeCancelled),
	})
}

func (s *ValidationService) fail(h *runHandle, err error) {
	runErr := domain.AsRunError(err)
	message := runErr.Message
	if runErr.Err != nil {
		message = fmt.Sprintf("%s (%v)", runErr.Message, runErr.Err)
	}
	s.finish(h, domain.RunFailed, domain.Outcome{
		Code:    runErr.Code,
		Message: message,
	})
}

// finish records the terminal state, stores the result and releases waiters.
func (s *ValidationService) finish(h *runHandle, status domain.RunStatus, outcome domain.Outcome) {
	result, ok := h.finish(status, outcome)
	if !ok {
		return
	}
	logger.Run(h.id).Info("%s: %d processed, %d valid, %d invalid",
		result.Status, result.TotalProcessed, result.Valid, result.Invalid)

	s.persist(result)
	s.clearActive(h.id)
	h.close()
}

// persist saves a finished run and prunes old ones. Failures are logged only.
func (s *ValidationService) persist(result *domain.RunResult) {
	if s.runStore == nil || !s.settings.History.Enabled {
		return
	}

	ctx := context.Background()
	if err := s.runStore.Save(ctx, result); err != nil {
		logger.Run(result.RunID).Warn("failed to save to history: %v", err)
		return
	}
	if s.settings.History.Keep > 0 {
		if _, err := s.runStore.Prune(ctx, s.settings.History.Keep); err != nil {
			logger.Warn("Failed to prune run history: %v", err)
		}
	}
}

// ValidateURL classifies a single string.
func (s *ValidationService) ValidateURL(raw string, policy domain.ValidationPolicy) domain.ClassifiedRecord {
	if len(policy.AllowedSchemes) == 0 {
		policy = s.settings.Policy
	}
	return s.validator.Validate(domain.Candidate{Raw: raw}, policy)
}

// Status returns the state of an active or stored run.
func (s *ValidationService) Status(ctx context.Context, runID string) (*domain.RunState, error) {
	if h, ok := s.getActive(runID); ok {
		state := h.Snapshot()
		return &state, nil
	}

	result, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	state := stateFromResult(result)
	return &state, nil
}

// Cancel requests cancellation of an active run.
// Cancelling a stored, finished run has no effect.
func (s *ValidationService) Cancel(ctx context.Context, runID string) error {
	if h, ok := s.getActive(runID); ok {
		h.Cancel()
		return nil
	}
	if _, err := s.GetRun(ctx, runID); err != nil {
		return err
	}
	return nil
}

// GetRun returns a finished run from history.
func (s *ValidationService) GetRun(ctx context.Context, runID string) (*domain.RunResult, error) {
	if s.runStore == nil {
		return nil, domain.ErrNotFound
	}
	result, err := s.runStore.Get(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return result, nil
}

// History returns finished runs, newest first.
func (s *ValidationService) History(ctx context.Context, limit int) ([]domain.RunResult, error) {
	if s.runStore == nil {
		return nil, nil
	}
	results, err := s.runStore.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return results, nil
}

// ClearHistory deletes every stored run.
func (s *ValidationService) ClearHistory(ctx context.Context) (int, error) {
	if s.runStore == nil {
		return 0, nil
	}
	n, err := s.runStore.Prune(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return n, nil
}

func (s *ValidationService) setActive(h *runHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeRuns[h.id] = h
}

func (s *ValidationService) getActive(runID string) (*runHandle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.activeRuns[runID]
	return h, ok
}

func (s *ValidationService) clearActive(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.activeRuns, runID)
}

func stateFromResult(r *domain.RunResult) domain.RunState {
	return domain.RunState{
		ID:             r.RunID,
		Source:         r.Source,
		Format:         r.Format,
		Status:         r.Status,
		Processed:      r.TotalProcessed,
		Valid:          r.Valid,
		Invalid:        r.Invalid,
		Skipped:        r.Skipped,
		Truncated:      r.Truncated,
		StartedAt:      r.StartedAt,
		LastProgressAt: r.FinishedAt,
		FinishedAt:     r.FinishedAt,
		Outcome:        domain.Outcome{Code: r.Code, Message: r.Message},
	}
}
