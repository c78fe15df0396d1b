package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for linkcheck resources.
	uriScheme = "linkcheck://"

	// historyLimit caps the runs listed by the runs resource.
	historyLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing recent runs.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Recent validation runs, newest first",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	// Template for a single run report.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}",
		Name:        "run-report",
		Description: "Full report of a finished validation run",
		MIMEType:    "application/json",
	}, s.handleRunResource)
}

// runInfo is the summary of a run in the runs listing.
type runInfo struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	Processed int       `json:"processed"`
	Valid     int       `json:"valid"`
	Invalid   int       `json:"invalid"`
	StartedAt time.Time `json:"started_at"`
	URI       string    `json:"uri"`
}

// handleRunsResource returns a summary of recent runs.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	runs, err := s.ports.Validation.History(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	infos := make([]runInfo, len(runs))
	for i := range runs {
		infos[i] = runInfo{
			ID:        runs[i].RunID,
			Source:    runs[i].Source,
			Status:    runs[i].Status.String(),
			Processed: runs[i].TotalProcessed,
			Valid:     runs[i].Valid,
			Invalid:   runs[i].Invalid,
			StartedAt: runs[i].StartedAt,
			URI:       uriScheme + "runs/" + runs[i].RunID,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling runs: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleRunResource returns the JSON report of one run.
func (s *Server) handleRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract runId from URI: linkcheck://runs/{runId}
	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	result, err := s.ports.Validation.GetRun(ctx, runID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}

	var buf bytes.Buffer
	if err := s.json.Write(&buf, result); err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     buf.String(),
		}},
	}, nil
}

// extractRunID extracts the run ID from a URI like linkcheck://runs/{runId}.
func extractRunID(uri string) string {
	const prefix = uriScheme + "runs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
