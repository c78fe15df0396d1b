package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/linkcheck/internal/adapters/driven/report"
	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// instructions tell connected clients what the server offers.
const instructions = `linkcheck checks that URLs are well formed without fetching them.
Use validate_url for URLs you already have and check_file to extract and check
every URL in a CSV, TSV, XLSX, plain text, HTML or XML file on this machine.
Past file checks are listed under linkcheck://runs.`

// shutdownTimeout bounds how long RunHTTP waits for open requests.
const shutdownTimeout = 5 * time.Second

// Server is the MCP server for linkcheck.
type Server struct {
	ports  *Ports
	server *mcp.Server
	json   *report.JSONWriter
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "linkcheck",
		Version: Version,
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
		json:   report.NewJSON(),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("MCP server listening on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP server shutdown: %v", err)
		}
	}()

	logger.Debug("MCP server listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// basePolicy returns the configured policy, or the defaults without settings.
func (s *Server) basePolicy() domain.ValidationPolicy {
	if s.ports.Settings != nil {
		if settings, err := s.ports.Settings.Get(); err == nil {
			return settings.Policy.Clone()
		}
	}
	return domain.DefaultValidationPolicy()
}

// baseLimits returns the configured limits, or the defaults without settings.
func (s *Server) baseLimits() domain.Limits {
	if s.ports.Settings != nil {
		if settings, err := s.ports.Settings.Get(); err == nil {
			return settings.Limits
		}
	}
	return domain.DefaultLimits()
}
