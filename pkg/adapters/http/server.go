// Package http exposes the compiler over a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/aoflow"
	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/ports"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// Server serves the compiler API.
type Server struct {
	Compiler ports.Compiler
	// Runner enables POST /nodes/{id}/run when set.
	Runner ports.NodeRunner
	// Watcher enables GET /events when set.
	Watcher ports.Watchable

	logger   *slog.Logger
	gatherer prometheus.Gatherer
	spec     *openapi3.T
}

// Option configures the server.
type Option func(*Server)

// WithRunner enables remote execution of node fragments.
func WithRunner(r ports.NodeRunner) Option {
	return func(s *Server) { s.Runner = r }
}

// WithWatcher enables hot-reload notifications.
func WithWatcher(w ports.Watchable) Option {
	return func(s *Server) { s.Watcher = w }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithGatherer sets the registry served at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewHandler creates a new HTTP handler for the compiler.
func NewHandler(compiler ports.Compiler, opts ...Option) (http.Handler, error) {
	spec, err := Spec()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Compiler: compiler,
		logger:   slog.New(slog.DiscardHandler),
		gatherer: prometheus.DefaultGatherer,
		spec:     spec,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	r.Get("/node-types", s.ListNodeTypes)
	r.Post("/nodes/{id}/code", s.GenerateCode)
	r.Post("/nodes/{id}/run", s.RunNode)
	r.Post("/program", s.AssembleProgram)
	r.Get("/events", s.SubscribeEvents)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GenerateResponse is the body of POST /nodes/{id}/code.
type GenerateResponse struct {
	NodeID string `json:"node_id"`
	Code   string `json:"code"`
}

// Failure reports a node whose provisioning failed.
type Failure struct {
	NodeID string `json:"node_id"`
	Error  string `json:"error"`
}

// ProgramResponse is the body of POST /program.
type ProgramResponse struct {
	Source   string    `json:"source"`
	Nodes    []string  `json:"nodes"`
	Failures []Failure `json:"failures,omitempty"`
}

// GenerateCode handles POST /nodes/{id}/code.
func (s *Server) GenerateCode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Override map[string]any `json:"override"`
	}
	if ok := s.decode(w, r, "GenerateRequest", &body, false); !ok {
		return
	}

	code, err := s.Compiler.GenerateCode(r.Context(), id, body.Override)
	if err != nil {
		s.fail(w, "GenerateCode", err)
		return
	}
	s.respond(w, GenerateResponse{NodeID: id, Code: code})
}

// RunNode handles POST /nodes/{id}/run.
func (s *Server) RunNode(w http.ResponseWriter, r *http.Request) {
	if s.Runner == nil {
		http.Error(w, "Execution is not configured", http.StatusNotImplemented)
		return
	}

	var body struct {
		Target string `json:"target"`
	}
	if ok := s.decode(w, r, "RunRequest", &body, true); !ok {
		return
	}

	result, err := s.Runner.RunNode(r.Context(), chi.URLParam(r, "id"), body.Target)
	if err != nil {
		s.fail(w, "RunNode", err)
		return
	}
	s.respond(w, result)
}

// AssembleProgram handles POST /program.
func (s *Server) AssembleProgram(w http.ResponseWriter, r *http.Request) {
	prog, err := s.Compiler.AssembleProgram(r.Context())
	if err != nil {
		s.fail(w, "AssembleProgram", err)
		return
	}

	resp := ProgramResponse{Source: prog.Source, Nodes: prog.Nodes}
	if resp.Nodes == nil {
		resp.Nodes = []string{}
	}
	for _, f := range prog.Failures {
		resp.Failures = append(resp.Failures, Failure{NodeID: f.NodeID, Error: f.Error()})
	}
	s.respond(w, resp)
}

// GetGraph handles GET /graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Compiler.Inspect(r.Context())
	if err != nil {
		s.fail(w, "Inspect", err)
		return
	}
	if snap.Nodes == nil {
		snap.Nodes = []domain.Node{}
	}
	if snap.Edges == nil {
		snap.Edges = []domain.Edge{}
	}
	s.respond(w, snap)
}

// ListNodeTypes handles GET /node-types.
func (s *Server) ListNodeTypes(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.Compiler.NodeTypes())
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	s.respond(w, map[string]string{
		"app":         "aoflow-http",
		"version":     strings.TrimSpace(aoflow.Version),
		"api_version": apiVersion,
	})
}

// SubscribeEvents handles GET /events (SSE). Each graph change is sent as a
// "change" event carrying the JSON diff against the previous snapshot.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	if s.Watcher == nil {
		http.Error(w, "Hot reload is not available for this graph source", http.StatusNotFound)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	prev, err := s.Compiler.Inspect(r.Context())
	if err != nil {
		s.fail(w, "Inspect", err)
		return
	}
	events, err := s.Watcher.Watch(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			next, err := s.Compiler.Inspect(r.Context())
			if err != nil {
				s.logger.Warn("reload failed", "err", err)
				fmt.Fprintf(w, "event: error\ndata: %s\n\n", strings.ReplaceAll(err.Error(), "\n", " "))
				flusher.Flush()
				continue
			}
			diff := domain.Diff(prev, next)
			prev = next
			if diff.IsEmpty() {
				continue
			}
			payload, err := json.Marshal(diff)
			if err != nil {
				s.logger.Error("diff encode failed", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// decode reads, validates and unmarshals a JSON body. An empty body is
// accepted unless required.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, schema string, target any, required bool) bool {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		if required {
			http.Error(w, "Request body is required", http.StatusBadRequest)
			return false
		}
		return true
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("invalid request body", "schema", schema, "err", err)
		return false
	}
	if err := validateBody(s.spec, schema, generic); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(raw, target); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	var provErr *domain.ProvisionError
	switch {
	case errors.Is(err, domain.ErrNodeNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &provErr):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, context.Canceled):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
		s.logger.Error(op+" failed", "err", err)
	}
}
