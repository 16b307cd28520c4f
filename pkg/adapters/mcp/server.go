// Package mcp exposes the compiler as a Model Context Protocol server, so
// assistants can generate and assemble AO process code from the graph.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/aoflow"
	"github.com/aretw0/aoflow/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GraphURI is the resource holding the current graph snapshot.
const GraphURI = "aoflow://graph"

// ProgramResponse is the structured output of assemble_program.
type ProgramResponse struct {
	Source   string   `json:"source" jsonschema_description:"The assembled Lua program"`
	Nodes    []string `json:"nodes" jsonschema_description:"Main chain node ids covered by the program"`
	Failures []string `json:"failures,omitempty" jsonschema_description:"Provisioning failures, one per node"`
}

// Server wraps the compiler and exposes it as an MCP Server.
type Server struct {
	compiler  ports.Compiler
	runner    ports.NodeRunner
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the server.
type Option func(*Server)

// WithRunner registers the run_node tool.
func WithRunner(r ports.NodeRunner) Option {
	return func(s *Server) { s.runner = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new MCP Server instance.
func NewServer(compiler ports.Compiler, opts ...Option) *Server {
	s := &Server{
		compiler:  compiler,
		logger:    slog.New(slog.DiscardHandler),
		mcpServer: server.NewMCPServer("aoflow-mcp", strings.TrimSpace(aoflow.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("generate_code",
		mcp.WithDescription("Generate the delimited Lua fragment of a node, nested nodes included."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("The ID of the node")),
		mcp.WithString("override", mcp.Description("JSON object replacing the stored node data (optional)")),
	), s.handleGenerateCode)

	s.mcpServer.AddTool(mcp.NewTool("assemble_program",
		mcp.WithDescription("Assemble the full program from the main chain of the graph."),
		mcp.WithOutputSchema[ProgramResponse](),
	), mcp.NewStructuredToolHandler(s.handleAssembleProgram))

	s.mcpServer.AddTool(mcp.NewTool("list_node_types",
		mcp.WithDescription("List the registered node types and their input fields."),
	), s.handleListNodeTypes)

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the full graph definition for introspection."),
	), s.handleGetGraph)

	if s.runner != nil {
		s.mcpServer.AddTool(mcp.NewTool("run_node",
			mcp.WithDescription("Generate the fragment of a node and evaluate it on an AO process."),
			mcp.WithString("node_id", mcp.Required(), mcp.Description("The ID of the node")),
			mcp.WithString("target", mcp.Required(), mcp.Description("The target process id")),
		), s.handleRunNode)
	}
}

func (s *Server) handleGenerateCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID, err := request.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var override map[string]any
	if raw := request.GetString("override", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &override); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("override must be a JSON object: %v", err)), nil
		}
	}

	code, err := s.compiler.GenerateCode(ctx, nodeID, override)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generate failed: %v", err)), nil
	}
	return mcp.NewToolResultText(code), nil
}

func (s *Server) handleAssembleProgram(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (ProgramResponse, error) {
	prog, err := s.compiler.AssembleProgram(ctx)
	if err != nil {
		return ProgramResponse{}, fmt.Errorf("assemble failed: %w", err)
	}

	resp := ProgramResponse{Source: prog.Source, Nodes: prog.Nodes}
	for _, f := range prog.Failures {
		resp.Failures = append(resp.Failures, f.Error())
	}
	return resp, nil
}

func (s *Server) handleListNodeTypes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(s.compiler.NodeTypes())
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetGraph(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, err := s.graphJSON(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleRunNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID, err := request.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := request.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.runner.RunNode(ctx, nodeID, target)
	if err != nil {
		s.logger.Error("MCP run_node failed", "node_id", nodeID, "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("run failed: %v", err)), nil
	}
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	if result.Error != "" {
		return mcp.NewToolResultError(string(jsonBytes)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) graphJSON(ctx context.Context) ([]byte, error) {
	snap, err := s.compiler.Inspect(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(snap)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Current Graph Definition",
		mcp.WithMIMEType("application/json"),
	), s.readGraph)
}

func (s *Server) readGraph(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := s.graphJSON(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect graph: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
