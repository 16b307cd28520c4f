// Package codegen turns graph snapshots into delimited Lua fragments and
// whole programs.
package codegen

import (
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/luafmt"
	"github.com/aretw0/aoflow/pkg/ports"
	"github.com/aretw0/aoflow/pkg/registry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of the engine spans.
const TracerName = "github.com/aretw0/aoflow/internal/codegen"

// Engine generates code for graph snapshots. It is safe for concurrent use:
// every call works on its own snapshot and keeps its traversal state local.
// The only state shared across calls is the memory of provisioned identifiers.
type Engine struct {
	registry    *registry.Registry
	formatter   *luafmt.Formatter
	provisioner ports.Provisioner
	locker      ports.DistributedLocker
	editor      registry.EditorConverter
	retry       *registry.RetryPolicy
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	tracer      trace.Tracer

	identifiers sync.Map // node id -> provisioned identifier
}

// Option configures an Engine.
type Option func(*Engine)

// WithFormatter replaces the default Lua formatter.
func WithFormatter(f *luafmt.Formatter) Option {
	return func(e *Engine) {
		e.formatter = f
	}
}

// WithProvisioner sets the collaborator creating remote processes.
func WithProvisioner(p ports.Provisioner) Option {
	return func(e *Engine) {
		e.provisioner = p
	}
}

// WithLocker serializes provisioning of a node across replicas.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithEditor sets the visual-editor converter handed to generators.
func WithEditor(c registry.EditorConverter) Option {
	return func(e *Engine) {
		e.editor = c
	}
}

// WithRetryPolicy sets the default provisioning retry policy.
// Node types may override it through their ProvisionSpec.
func WithRetryPolicy(p *registry.RetryPolicy) Option {
	return func(e *Engine) {
		e.retry = p
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets the tracer used for per-node spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// New creates an engine generating code for the types in reg.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry:  reg,
		formatter: luafmt.New(),
		retry:     registry.DefaultRetryPolicy(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:    otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the node type registry of the engine.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Forget drops the remembered identifier of a node, so the next generation
// provisions it again when its data holds none.
func (e *Engine) Forget(nodeID string) {
	e.identifiers.Delete(nodeID)
}

// Identifier returns the identifier provisioned for a node during the
// lifetime of the engine.
func (e *Engine) Identifier(nodeID string) (string, bool) {
	v, ok := e.identifiers.Load(nodeID)
	if !ok {
		return "", false
	}
	return v.(string), true
}
