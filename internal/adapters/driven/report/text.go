package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
)

const textName = "text"

// Ensure TextWriter implements the interface.
var _ driven.ReportWriter = (*TextWriter)(nil)

// TextWriter renders a human-readable summary followed by the invalid links.
type TextWriter struct {
	styles *Styles
	limit  int
}

// TextOption configures the text writer.
type TextOption func(*TextWriter)

// WithStyles renders headings and counts with the given styles.
func WithStyles(styles *Styles) TextOption {
	return func(w *TextWriter) {
		if styles != nil {
			w.styles = styles
		}
	}
}

// WithListLimit caps how many invalid links are listed. Zero lists all.
func WithListLimit(n int) TextOption {
	return func(w *TextWriter) {
		if n >= 0 {
			w.limit = n
		}
	}
}

// NewText creates a text writer. Output is unstyled unless WithStyles is given.
func NewText(opts ...TextOption) *TextWriter {
	w := &TextWriter{styles: PlainStyles()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name returns the report format name.
func (w *TextWriter) Name() string { return textName }

// Extension returns the file extension.
func (w *TextWriter) Extension() string { return ".txt" }

// Write renders result to out.
func (w *TextWriter) Write(out io.Writer, r *domain.RunResult) error {
	if r == nil {
		return fmt.Errorf("%w: nil result", domain.ErrInvalidInput)
	}
	s := w.styles

	var b strings.Builder
	title := "Validation Results"
	b.WriteString(s.Title.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")

	field := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", s.Label.Render(fmt.Sprintf("%-10s", label+":")), value)
	}
	field("Run", s.Muted.Render(r.RunID))
	field("Source", r.Source)
	field("Format", r.Format.String())
	status := s.Status(r.Status)
	if r.Message != "" {
		status += " " + s.Muted.Render("("+r.Message+")")
	}
	field("Status", status)
	field("Duration", r.Duration.Round(time.Millisecond).String())
	b.WriteString("\n")

	fmt.Fprintf(&b, "Total links found: %d\n", r.TotalProcessed)
	fmt.Fprintf(&b, "Valid links:       %s\n", s.Success.Render(fmt.Sprint(r.Valid)))
	fmt.Fprintf(&b, "Invalid links:     %s\n", s.Error.Render(fmt.Sprint(r.Invalid)))
	if r.Skipped > 0 {
		fmt.Fprintf(&b, "Skipped:           %d\n", r.Skipped)
	}
	if r.Truncated {
		b.WriteString(s.Warning.Render("Stopped early at the configured row or column limit.") + "\n")
	}
	b.WriteString("\n")

	if r.Invalid == 0 {
		if r.Succeeded() {
			b.WriteString(s.Success.Render("No invalid links found!") + "\n")
		}
		_, err := io.WriteString(out, b.String())
		return err
	}

	b.WriteString(s.Title.Render("Invalid Links") + "\n")
	b.WriteString(strings.Repeat("-", 13) + "\n")

	listed := len(r.InvalidRecords)
	if w.limit > 0 && listed > w.limit {
		listed = w.limit
	}
	for i := 0; i < listed; i++ {
		rec := r.InvalidRecords[i]
		fmt.Fprintf(&b, "%3d. %s  %s %s\n",
			i+1,
			rec.Candidate.Preview(DisplayWidth),
			s.Error.Render("["+rec.Reason.String()+"]"),
			s.Muted.Render(rec.Candidate.Location.String()))
	}
	if remaining := r.Invalid - listed; remaining > 0 {
		fmt.Fprintf(&b, "\n... and %d more\n", remaining)
	}

	_, err := io.WriteString(out, b.String())
	return err
}
