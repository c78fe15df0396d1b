package driven

import (
	"io"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

// ReportWriter renders a run result in one output format.
type ReportWriter interface {
	// Name returns the report format name (e.g., "csv").
	Name() string

	// Extension returns the conventional file extension, with the dot.
	Extension() string

	// Write renders result to w.
	Write(w io.Writer, result *domain.RunResult) error
}
