package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driving"
)

// subscriberBuffer is the channel capacity given to each subscriber.
// One slot is always kept free for the final event.
const subscriberBuffer = 64

// Ensure runHandle implements the interface.
var _ driving.RunHandle = (*runHandle)(nil)

// runHandle owns the state of one run. All fields below mu are guarded by it;
// readers always get a consistent copy.
type runHandle struct {
	id     string
	cancel context.CancelFunc
	now    func() time.Time

	mu            sync.Mutex
	state         domain.RunState
	totalEstimate int
	invalid       []domain.ClassifiedRecord
	maxInvalid    int
	dropped       int
	subscribers   []chan domain.ProgressEvent
	final         *domain.ProgressEvent
	result        *domain.RunResult

	done chan struct{}
}

func newRunHandle(id string, src domain.SourceDescriptor, maxInvalid int, now func() time.Time) *runHandle {
	if maxInvalid <= 0 {
		maxInvalid = domain.DefaultMaxInvalidRecords
	}
	return &runHandle{
		id:         id,
		cancel:     func() {},
		now:        now,
		maxInvalid: maxInvalid,
		state: domain.RunState{
			ID:        id,
			Source:    src.Name(),
			Status:    domain.RunPending,
			StartedAt: now(),
		},
		done: make(chan struct{}),
	}
}

// ID returns the run identifier.
func (h *runHandle) ID() string {
	return h.id
}

// Cancel requests cooperative cancellation.
func (h *runHandle) Cancel() {
	h.mu.Lock()
	if !h.state.Status.CanTransitionTo(domain.RunCancelling) {
		h.mu.Unlock()
		return
	}
	h.state.Status = domain.RunCancelling
	h.mu.Unlock()

	h.cancel()
}

// Snapshot returns a consistent copy of the run state.
func (h *runHandle) Snapshot() domain.RunState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Subscribe returns a channel of progress events closed after the final event.
func (h *runHandle) Subscribe() <-chan domain.ProgressEvent {
	ch := make(chan domain.ProgressEvent, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.final != nil {
		ch <- *h.final
		close(ch)
		return ch
	}
	h.subscribers = append(h.subscribers, ch)
	return ch
}

// Done is closed once the run is terminal and its final event delivered.
func (h *runHandle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run finishes or ctx is done.
func (h *runHandle) Wait(ctx context.Context) (*domain.RunResult, error) {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// cancelRequested reports whether Cancel has been called on a live run.
func (h *runHandle) cancelRequested() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Status == domain.RunCancelling
}

// start moves the run to Running. It fails if the run was cancelled first.
func (h *runHandle) start(format domain.Format) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state.Format = format
	if !h.state.Status.CanTransitionTo(domain.RunRunning) {
		return false
	}
	h.state.Status = domain.RunRunning
	h.publishLocked(h.eventLocked())
	return true
}

func (h *runHandle) setFormat(format domain.Format) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Format = format
}

// record adds one classified record to the counts.
func (h *runHandle) record(rec domain.ClassifiedRecord) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state.Processed++
	if rec.IsValid() {
		h.state.Valid++
	} else {
		h.state.Invalid++
		if len(h.invalid) < h.maxInvalid {
			h.invalid = append(h.invalid, rec)
		} else {
			h.dropped++
		}
	}
	return h.state.Processed
}

// observe copies extractor statistics into the state.
func (h *runHandle) observe(skipped int, truncated bool, totalEstimate int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state.Skipped = skipped
	h.state.Truncated = h.state.Truncated || truncated
	h.totalEstimate = totalEstimate
}

// progress publishes a non-final event with the current counts.
func (h *runHandle) progress() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state.Status.IsTerminal() {
		return
	}
	h.state.LastProgressAt = h.now()
	h.publishLocked(h.eventLocked())
}

// finish moves the run to a terminal state and builds its result.
// It returns false if the run was already terminal.
// A run asked to complete while cancellation is pending ends Cancelled.
func (h *runHandle) finish(status domain.RunStatus, outcome domain.Outcome) (*domain.RunResult, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state.Status.IsTerminal() {
		return nil, false
	}
	if status == domain.RunCompleted && h.state.Status == domain.RunCancelling {
		status = domain.RunCancelled
		outcome = domain.Outcome{Code: domain.CodeCancelled, Message: domain.MessageFor(domain.CodeCancelled)}
	}
	if !h.state.Status.CanTransitionTo(status) {
		// Pending runs reach Cancelled through Cancelling.
		if status == domain.RunCancelled && h.state.Status == domain.RunPending {
			h.state.Status = domain.RunCancelling
		} else {
			status = domain.RunFailed
		}
	}

	h.state.Status = status
	h.state.FinishedAt = h.now()
	h.state.Outcome = outcome

	h.result = &domain.RunResult{
		RunID:          h.id,
		Source:         h.state.Source,
		Format:         h.state.Format,
		Status:         status,
		TotalProcessed: h.state.Processed,
		Valid:          h.state.Valid,
		Invalid:        h.state.Invalid,
		Skipped:        h.state.Skipped,
		Truncated:      h.state.Truncated,
		InvalidRecords: h.invalid,
		InvalidDropped: h.dropped,
		Duration:       h.state.FinishedAt.Sub(h.state.StartedAt),
		StartedAt:      h.state.StartedAt,
		FinishedAt:     h.state.FinishedAt,
		Code:           outcome.Code,
		Message:        outcome.Message,
	}
	h.invalid = nil
	return h.result, true
}

// close delivers the final event to every subscriber and releases waiters.
func (h *runHandle) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.final != nil {
		return
	}
	event := h.eventLocked()
	event.Final = true
	event.Result = h.result
	h.final = &event

	for _, ch := range h.subscribers {
		ch <- event
		close(ch)
	}
	h.subscribers = nil
	h.cancel()
	close(h.done)
}

// publishLocked sends event to subscribers that have room, keeping the last
// slot of each buffer for the final event. Only the run's worker publishes.
func (h *runHandle) publishLocked(event domain.ProgressEvent) {
	for _, ch := range h.subscribers {
		if len(ch) < cap(ch)-1 {
			ch <- event
		}
	}
}

func (h *runHandle) eventLocked() domain.ProgressEvent {
	elapsed := h.state.Elapsed(h.now())
	var rate float64
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(h.state.Processed) / secs
	}
	return domain.ProgressEvent{
		RunID:         h.id,
		Status:        h.state.Status,
		Processed:     h.state.Processed,
		Valid:         h.state.Valid,
		Invalid:       h.state.Invalid,
		TotalEstimate: h.totalEstimate,
		Elapsed:       elapsed,
		Rate:          rate,
	}
}
