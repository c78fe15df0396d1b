package report

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
)

// Ensure YAMLWriter implements the interface.
var _ driven.ReportWriter = (*YAMLWriter)(nil)

// YAMLWriter writes the run as a YAML document.
type YAMLWriter struct{}

// NewYAML creates a YAML writer.
func NewYAML() *YAMLWriter {
	return &YAMLWriter{}
}

// Name returns the report format name.
func (w *YAMLWriter) Name() string { return "yaml" }

// Extension returns the file extension.
func (w *YAMLWriter) Extension() string { return ".yaml" }

// Write renders result to out.
func (w *YAMLWriter) Write(out io.Writer, r *domain.RunResult) error {
	if r == nil {
		return fmt.Errorf("%w: nil result", domain.ErrInvalidInput)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(r)); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close yaml encoder: %w", err)
	}
	return nil
}
