package mcp

import (
	"github.com/custodia-labs/linkcheck/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Validation runs checks and serves run history.
	Validation driving.ValidationService

	// Settings supplies the configured policy and limits.
	// Optional: built-in defaults are used when nil.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Validation == nil {
		return ErrMissingValidationService
	}
	return nil
}
