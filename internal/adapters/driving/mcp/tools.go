package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/linkcheck/internal/adapters/driven/source"
	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driving"
)

// defaultMaxInvalid caps the invalid links returned by check_file.
const defaultMaxInvalid = 50

// PolicyInput overrides parts of the configured validation policy.
type PolicyInput struct {
	Schemes        []string `json:"schemes,omitempty" jsonschema:"accepted URL schemes (default from settings, usually http and https)"`
	AllowLocalhost *bool    `json:"allow_localhost,omitempty" jsonschema:"accept localhost hosts"`
	AllowIP        *bool    `json:"allow_ip,omitempty" jsonschema:"accept IPv4 and IPv6 literal hosts"`
	AllowInternal  *bool    `json:"allow_internal,omitempty" jsonschema:"accept single-label hosts such as intranet"`
}

// ValidateURLInput is the input schema for the validate_url tool.
type ValidateURLInput struct {
	URLs   []string    `json:"urls" jsonschema:"the strings to classify as valid or invalid URLs"`
	Policy PolicyInput `json:"policy,omitempty" jsonschema:"overrides for the configured validation policy"`
}

// ValidateURLOutput is the output schema for the validate_url tool.
type ValidateURLOutput struct {
	Results []URLResult `json:"results"`
	Valid   int         `json:"valid"`
	Invalid int         `json:"invalid"`
}

// URLResult is the verdict for a single string.
type URLResult struct {
	URL         string `json:"url"`
	Valid       bool   `json:"valid"`
	Normalized  string `json:"normalized,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Description string `json:"description,omitempty"`
}

// CheckFileInput is the input schema for the check_file tool.
type CheckFileInput struct {
	Path       string      `json:"path" jsonschema:"path of the file to check"`
	Format     string      `json:"format,omitempty" jsonschema:"force a format: csv, xlsx, text or html (default: detect)"`
	MaxRows    int         `json:"max_rows,omitempty" jsonschema:"stop after this many rows in tabular files"`
	MaxInvalid int         `json:"max_invalid,omitempty" jsonschema:"maximum number of invalid links to return (default 50)"`
	Policy     PolicyInput `json:"policy,omitempty" jsonschema:"overrides for the configured validation policy"`
}

// CheckFileOutput is the output schema for the check_file tool.
type CheckFileOutput struct {
	RunID     string `json:"run_id"`
	Status    string `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message,omitempty"`
	Format    string `json:"format"`
	Processed int    `json:"processed"`
	Valid     int    `json:"valid"`
	Invalid   int    `json:"invalid"`
	Skipped   int    `json:"skipped"`
	Truncated bool   `json:"truncated"`

	InvalidLinks []InvalidLink `json:"invalid_links"`

	// MoreInvalid counts invalid links not included above.
	MoreInvalid int `json:"more_invalid"`
}

// InvalidLink is one rejected candidate and where it was found.
type InvalidLink struct {
	Raw      string `json:"raw"`
	Reason   string `json:"reason"`
	Location string `json:"location"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "validate_url",
		Description: "Check whether strings are well-formed URLs under the link policy, without fetching them",
	}, s.handleValidateURL)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_file",
		Description: "Extract every URL from a CSV, XLSX, text or HTML file and report the invalid ones",
	}, s.handleCheckFile)
}

// handleValidateURL handles the validate_url tool invocation.
func (s *Server) handleValidateURL(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ValidateURLInput,
) (*mcp.CallToolResult, ValidateURLOutput, error) {
	if len(input.URLs) == 0 {
		return nil, ValidateURLOutput{}, fmt.Errorf("%w: urls is required", domain.ErrInvalidInput)
	}
	policy := s.policy(input.Policy)

	output := ValidateURLOutput{Results: make([]URLResult, len(input.URLs))}
	for i, raw := range input.URLs {
		rec := s.ports.Validation.ValidateURL(raw, policy)
		result := URLResult{URL: raw, Valid: rec.IsValid()}
		if rec.IsValid() {
			result.Normalized = rec.Normalized
			output.Valid++
		} else {
			result.Reason = rec.Reason.String()
			result.Description = rec.Reason.Description()
			output.Invalid++
		}
		output.Results[i] = result
	}

	return nil, output, nil
}

// handleCheckFile handles the check_file tool invocation.
// The run is cancelled if the client goes away before it finishes.
func (s *Server) handleCheckFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckFileInput,
) (*mcp.CallToolResult, CheckFileOutput, error) {
	if strings.TrimSpace(input.Path) == "" {
		return nil, CheckFileOutput{}, fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}

	format := domain.ParseFormat(input.Format)
	if input.Format != "" && format == domain.FormatUnknown {
		return nil, CheckFileOutput{}, fmt.Errorf("%w: unknown format %q", domain.ErrInvalidInput, input.Format)
	}

	limits := s.baseLimits()
	if input.MaxRows > 0 {
		limits.MaxRows = input.MaxRows
	}

	h, err := s.ports.Validation.Submit(ctx, driving.SubmitRequest{
		Source:     source.NewFile(input.Path),
		FormatHint: format,
		Policy:     s.policy(input.Policy),
		Limits:     limits,
	})
	if err != nil {
		return nil, CheckFileOutput{}, fmt.Errorf("submitting run: %w", err)
	}

	result, err := h.Wait(ctx)
	if err != nil {
		h.Cancel()
		return nil, CheckFileOutput{}, fmt.Errorf("waiting for run: %w", err)
	}

	maxInvalid := input.MaxInvalid
	if maxInvalid <= 0 {
		maxInvalid = defaultMaxInvalid
	}

	return nil, newCheckFileOutput(result, maxInvalid), nil
}

// policy applies input overrides to the configured policy.
func (s *Server) policy(in PolicyInput) domain.ValidationPolicy {
	policy := s.basePolicy()
	if len(in.Schemes) > 0 {
		policy.AllowedSchemes = append([]string(nil), in.Schemes...)
	}
	if in.AllowLocalhost != nil {
		policy.AllowLocalhost = *in.AllowLocalhost
	}
	if in.AllowIP != nil {
		policy.AllowIPLiterals = *in.AllowIP
	}
	if in.AllowInternal != nil {
		policy.AllowInternalDomains = *in.AllowInternal
	}
	return policy
}

func newCheckFileOutput(r *domain.RunResult, maxInvalid int) CheckFileOutput {
	output := CheckFileOutput{
		RunID:     r.RunID,
		Status:    r.Status.String(),
		Code:      string(r.Code),
		Message:   r.Message,
		Format:    r.Format.String(),
		Processed: r.TotalProcessed,
		Valid:     r.Valid,
		Invalid:   r.Invalid,
		Skipped:   r.Skipped,
		Truncated: r.Truncated,
	}

	n := min(len(r.InvalidRecords), maxInvalid)
	output.InvalidLinks = make([]InvalidLink, n)
	for i := 0; i < n; i++ {
		rec := r.InvalidRecords[i]
		output.InvalidLinks[i] = InvalidLink{
			Raw:      rec.Candidate.Raw,
			Reason:   rec.Reason.String(),
			Location: rec.Candidate.Location.String(),
		}
	}
	output.MoreInvalid = r.Invalid - n

	return output
}
