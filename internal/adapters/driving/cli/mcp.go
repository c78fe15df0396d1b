package cli

import (
	"errors"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/linkcheck/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for running linkcheck as a Model Context Protocol (MCP) server.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start an MCP server so AI assistants can check links.

Tools:
  validate_url   classify one or more URLs under a policy
  check_file     extract and check every URL in a local file

Resources:
  linkcheck://runs           recent file checks
  linkcheck://runs/{runId}   the JSON report of one check

The server speaks JSON-RPC over stdio unless --port is given, in which case
it serves streamable HTTP instead (useful with the MCP Inspector).

Examples:
  linkcheck mcp serve
  linkcheck mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "linkcheck": {
        "command": "/path/to/linkcheck",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "interface to bind when --port is set")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if validationService == nil {
		return errors.New("validation service not configured")
	}
	if mcpPort < 0 || mcpPort > 65535 {
		return errors.New("--port must be between 0 and 65535")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Validation: validationService,
		Settings:   settingsService,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mcpPort == 0 {
		return server.Run(ctx)
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.PrintErrf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(ctx, addr)
}
