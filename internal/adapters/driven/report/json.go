package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
)

// Ensure JSONWriter implements the interface.
var _ driven.ReportWriter = (*JSONWriter)(nil)

// JSONWriter writes the run as an indented JSON document.
type JSONWriter struct{}

// NewJSON creates a JSON writer.
func NewJSON() *JSONWriter {
	return &JSONWriter{}
}

// Name returns the report format name.
func (w *JSONWriter) Name() string { return "json" }

// Extension returns the file extension.
func (w *JSONWriter) Extension() string { return ".json" }

// Write renders result to out.
func (w *JSONWriter) Write(out io.Writer, r *domain.RunResult) error {
	if r == nil {
		return fmt.Errorf("%w: nil result", domain.ErrInvalidInput)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newDocument(r)); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}
