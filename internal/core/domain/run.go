package domain

import "time"

// RunStatus is the lifecycle state of a validation run.
type RunStatus string

// Run statuses.
const (
	RunPending    RunStatus = "pending"
	RunRunning    RunStatus = "running"
	RunCancelling RunStatus = "cancelling"
	RunCancelled  RunStatus = "cancelled"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// IsTerminal returns true for states with no outgoing transition.
func (s RunStatus) IsTerminal() bool {
	return s == RunCancelled || s == RunCompleted || s == RunFailed
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s RunStatus) CanTransitionTo(next RunStatus) bool {
	switch s {
	case RunPending:
		return next == RunRunning || next == RunCancelling || next == RunFailed
	case RunRunning:
		return next == RunCancelling || next == RunCompleted || next == RunFailed
	case RunCancelling:
		return next == RunCancelled || next == RunFailed
	default:
		return false
	}
}

// String returns the string representation.
func (s RunStatus) String() string {
	return string(s)
}

// Outcome is the reason code and message attached to a terminal state.
type Outcome struct {
	Code    Code
	Message string
}

// RunState is a point-in-time snapshot of a run.
// Valid + Invalid always equals Processed.
type RunState struct {
	ID     string
	Source string
	Format Format
	Status RunStatus

	Processed int
	Valid     int
	Invalid   int
	Skipped   int
	Truncated bool

	StartedAt      time.Time
	LastProgressAt time.Time
	FinishedAt     time.Time

	// Outcome is set once Status is terminal.
	Outcome Outcome
}

// Elapsed returns the run duration so far, or in total once finished.
func (s RunState) Elapsed(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if !s.FinishedAt.IsZero() {
		return s.FinishedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}

// ProgressEvent reports run progress. The last event of a run has Final set
// and carries the RunResult.
type ProgressEvent struct {
	RunID  string
	Status RunStatus

	Processed int
	Valid     int
	Invalid   int

	// TotalEstimate is the expected number of items, or 0 when unknown.
	TotalEstimate int

	Elapsed time.Duration

	// Rate is candidates processed per second.
	Rate float64

	Final  bool
	Result *RunResult
}

// RunResult is the final aggregate of a run.
type RunResult struct {
	RunID  string
	Source string
	Format Format
	Status RunStatus

	TotalProcessed int
	Valid          int
	Invalid        int
	Skipped        int
	Truncated      bool

	// InvalidRecords holds Invalid records in extraction order, up to the retention ceiling.
	InvalidRecords []ClassifiedRecord

	// InvalidDropped counts Invalid records beyond the retention ceiling.
	InvalidDropped int

	Duration   time.Duration
	StartedAt  time.Time
	FinishedAt time.Time

	Code    Code
	Message string
}

// Succeeded returns true if the run completed.
func (r *RunResult) Succeeded() bool {
	return r.Status == RunCompleted
}

// ReasonCounts tallies retained invalid records by reason.
func (r *RunResult) ReasonCounts() map[RejectReason]int {
	counts := make(map[RejectReason]int)
	for i := range r.InvalidRecords {
		counts[r.InvalidRecords[i].Reason]++
	}
	return counts
}
