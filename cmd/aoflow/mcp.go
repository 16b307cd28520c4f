package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/aoflow/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes code generation as MCP tools so AI agents can read the graph and
generate or assemble AO process code.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")

		return withApp(nil, func(a *app) error {
			opts := []mcp.Option{mcp.WithLogger(logger)}
			if a.executes {
				opts = append(opts, mcp.WithRunner(a.compiler))
			}
			srv := mcp.NewServer(a.compiler, opts...)

			switch transport {
			case "stdio":
				logger.Info("Starting aoflow MCP server (stdio)")
				return srv.ServeStdio()
			case "sse":
				addr := cfg.Server.Addr
				baseURL := cfg.Server.BaseURL
				if baseURL == "" {
					baseURL = "http://localhost" + addr
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return srv.ServeSSE(ctx, addr, baseURL)
			default:
				return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "transport protocol to use: 'stdio' or 'sse'")
}
