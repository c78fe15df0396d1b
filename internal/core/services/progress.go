package services

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

// progressStep returns how many new candidates must be processed before the
// next progress event. The step grows with the run so huge inputs do not
// flood subscribers.
func progressStep(processed int) int {
	switch {
	case processed < 100:
		return 5
	case processed < 1000:
		return 25
	case processed < 10000:
		return 100
	case processed < 100000:
		return 500
	default:
		return 1000
	}
}

// progressThrottle decides when a run publishes a progress event.
// Events are at least MinInterval apart and at most MaxInterval apart
// while candidates keep arriving.
type progressThrottle struct {
	limiter *rate.Limiter
	maxGap  time.Duration
	now     func() time.Time

	lastCount int
	lastAt    time.Time
}

func newProgressThrottle(settings domain.ProgressSettings, now func() time.Time) *progressThrottle {
	limit := rate.Inf
	if settings.MinInterval > 0 {
		limit = rate.Every(settings.MinInterval)
	}
	maxGap := settings.MaxInterval
	if maxGap <= 0 {
		maxGap = domain.DefaultMaxProgressGap
	}

	start := now()
	limiter := rate.NewLimiter(limit, 1)
	// The initial event counts as the first emission.
	limiter.AllowN(start, 1)

	return &progressThrottle{
		limiter: limiter,
		maxGap:  maxGap,
		now:     now,
		lastAt:  start,
	}
}

// due reports whether an event should be published at processed.
func (t *progressThrottle) due(processed int) bool {
	now := t.now()

	if now.Sub(t.lastAt) >= t.maxGap {
		t.mark(processed, now)
		return true
	}
	if processed-t.lastCount < progressStep(processed) {
		return false
	}
	if !t.limiter.AllowN(now, 1) {
		return false
	}
	t.mark(processed, now)
	return true
}

func (t *progressThrottle) mark(processed int, now time.Time) {
	t.lastCount = processed
	t.lastAt = now
}
