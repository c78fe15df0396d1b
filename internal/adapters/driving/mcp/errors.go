// Package mcp provides an MCP (Model Context Protocol) server adapter for linkcheck.
// It lets AI assistants validate URLs and check files without network access.
package mcp

import "errors"

// ErrMissingValidationService is returned when the validation service is not provided.
var ErrMissingValidationService = errors.New("mcp: validation service is required")
