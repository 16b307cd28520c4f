package aoflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/aoflow/internal/codegen"
	fileAdapter "github.com/aretw0/aoflow/pkg/adapters/file"
	loamAdapter "github.com/aretw0/aoflow/pkg/adapters/loam"
	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/luafmt"
	"github.com/aretw0/aoflow/pkg/nodes"
	"github.com/aretw0/aoflow/pkg/ports"
	"github.com/aretw0/aoflow/pkg/registry"
)

var (
	// ErrNoExecutor is returned by RunNode and RunFlow without an executor.
	ErrNoExecutor = errors.New("no executor configured")
	// ErrNoRoot is returned when the graph has no start node.
	ErrNoRoot = errors.New("graph has no start node")
	// ErrNotWatchable is returned by Watch when the loader cannot report changes.
	ErrNotWatchable = errors.New("graph source does not support watching")
)

// Compiler is the high-level entry point of the aoflow library.
// It loads the graph from its loader on every call and delegates code
// generation to the internal engine.
type Compiler struct {
	engine   *codegen.Engine
	loader   ports.GraphLoader
	registry *registry.Registry
	executor ports.Executor
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	entry    string

	engineOpts []codegen.Option

	// Name labels the graph (directory or file name).
	Name string
}

var _ ports.Compiler = (*Compiler)(nil)

// Option defines a functional option for configuring the Compiler.
type Option func(*Compiler)

// WithLoader injects a custom GraphLoader, bypassing the default file/Loam initialization.
func WithLoader(l ports.GraphLoader) Option {
	return func(c *Compiler) {
		c.loader = l
	}
}

// WithStore reads the graph stored under name.
func WithStore(store ports.GraphStore, name string) Option {
	return func(c *Compiler) {
		c.loader = ports.NamedLoader{Store: store, Name: name}
	}
}

// WithRegistry replaces the built-in node types.
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Compiler) {
		c.registry = reg
	}
}

// WithProvisioner sets the collaborator that spawns token processes.
func WithProvisioner(p ports.Provisioner) Option {
	return func(c *Compiler) {
		c.engineOpts = append(c.engineOpts, codegen.WithProvisioner(p))
	}
}

// WithLocker serializes provisioning across replicas.
func WithLocker(l ports.DistributedLocker) Option {
	return func(c *Compiler) {
		c.engineOpts = append(c.engineOpts, codegen.WithLocker(l))
	}
}

// WithEditor sets the visual-editor converter used by handler nodes.
func WithEditor(e ports.EditorConverter) Option {
	return func(c *Compiler) {
		c.engineOpts = append(c.engineOpts, codegen.WithEditor(e))
	}
}

// WithExecutor enables RunNode and RunFlow.
func WithExecutor(x ports.Executor) Option {
	return func(c *Compiler) {
		c.executor = x
	}
}

// WithRetryPolicy sets the default provisioning retry policy.
func WithRetryPolicy(p *registry.RetryPolicy) Option {
	return func(c *Compiler) {
		c.engineOpts = append(c.engineOpts, codegen.WithRetryPolicy(p))
	}
}

// WithFormatter replaces the default four-space Lua formatter.
func WithFormatter(f *luafmt.Formatter) Option {
	return func(c *Compiler) {
		c.engineOpts = append(c.engineOpts, codegen.WithFormatter(f))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Compiler) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithEntryNode sets the root of the main chain. By default it is the
// first node of type start.
func WithEntryNode(nodeID string) Option {
	return func(c *Compiler) {
		c.entry = nodeID
	}
}

// New initializes a Compiler.
// By default the graph is read from graphPath: a directory is opened as a
// Loam repository of node documents, anything else as a JSON or YAML
// snapshot file. If WithLoader or WithStore is given, graphPath may be empty.
func New(graphPath string, opts ...Option) (*Compiler, error) {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	if c.loader == nil {
		if graphPath == "" {
			return nil, fmt.Errorf("graphPath is required when no custom loader is provided")
		}
		loader, err := openLoader(graphPath, c.logger)
		if err != nil {
			return nil, err
		}
		c.loader = loader
	}
	if graphPath != "" {
		c.Name = filepath.Base(graphPath)
		c.logger = c.logger.With("graph", c.Name)
	}

	if c.registry == nil {
		c.registry = nodes.NewRegistry()
	}

	engineOpts := append([]codegen.Option{
		codegen.WithLogger(c.logger),
		codegen.WithLifecycleHooks(c.hooks),
	}, c.engineOpts...)
	c.engine = codegen.New(c.registry, engineOpts...)

	return c, nil
}

func openLoader(path string, logger *slog.Logger) (ports.GraphLoader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("invalid graph path: %w", err)
	}
	if info.IsDir() {
		return loamAdapter.Open(path)
	}
	l := fileAdapter.NewLoader(path)
	l.Logger = logger
	return l, nil
}

// Inspect returns the current graph.
func (c *Compiler) Inspect(ctx context.Context) (*domain.Snapshot, error) {
	return c.loader.Load(ctx)
}

// NodeTypes lists the registered node types.
func (c *Compiler) NodeTypes() []registry.NodeType {
	return c.registry.Types()
}

// GenerateCode returns the delimited fragment of nodeID, including the code
// of every node attached to it. A non-nil override replaces the stored node
// data for this call only.
func (c *Compiler) GenerateCode(ctx context.Context, nodeID string, override map[string]any) (string, error) {
	snap, err := c.loader.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load graph: %w", err)
	}
	return c.engine.GenerateCode(ctx, snap, nodeID, override)
}

// AssembleProgram concatenates the fragments of the main chain, from the
// entry node to the first terminal marker.
func (c *Compiler) AssembleProgram(ctx context.Context) (*ports.Program, error) {
	snap, err := c.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	root, terminal, err := c.bounds(snap)
	if err != nil {
		return nil, err
	}
	return c.engine.AssembleProgram(ctx, snap, root, terminal)
}

// AssembleFrom concatenates the fragments between root and terminal.
func (c *Compiler) AssembleFrom(ctx context.Context, root, terminal string) (*ports.Program, error) {
	snap, err := c.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	return c.engine.AssembleProgram(ctx, snap, root, terminal)
}

func (c *Compiler) bounds(snap *domain.Snapshot) (root, terminal string, err error) {
	root = c.entry
	for _, n := range snap.Nodes {
		if root == "" && n.Type == domain.NodeTypeStart {
			root = n.ID
		}
		if terminal == "" && n.Type == domain.NodeTypeAdd {
			terminal = n.ID
		}
	}
	if root == "" {
		return "", "", ErrNoRoot
	}
	return root, terminal, nil
}

// RunNode generates the fragment of nodeID and executes it on target.
// A run that the process reports as failed is not an error: inspect
// ExecutionResult.Error.
func (c *Compiler) RunNode(ctx context.Context, nodeID, target string) (ports.ExecutionResult, error) {
	if c.executor == nil {
		return ports.ExecutionResult{}, ErrNoExecutor
	}
	code, err := c.GenerateCode(ctx, nodeID, nil)
	if err != nil {
		return ports.ExecutionResult{}, err
	}
	return c.execute(ctx, nodeID, code, target)
}

// NodeRun is the outcome of executing one node of a flow.
type NodeRun struct {
	NodeID string
	Result ports.ExecutionResult
	// Err is set when the node could not be executed at all.
	Err error
}

// OK reports whether the node ran without any error.
func (r NodeRun) OK() bool {
	return r.Err == nil && r.Result.Error == ""
}

// RunFlow executes the fragment of every main-chain node on target, in
// chain order. A failing node does not stop the flow; each outcome is
// reported in the returned slice.
func (c *Compiler) RunFlow(ctx context.Context, target string) ([]NodeRun, error) {
	if c.executor == nil {
		return nil, ErrNoExecutor
	}
	prog, err := c.AssembleProgram(ctx)
	if err != nil {
		return nil, err
	}
	return c.runProgram(ctx, prog, target)
}

// RunFlowFrom is RunFlow for the chain between root and terminal.
func (c *Compiler) RunFlowFrom(ctx context.Context, root, terminal, target string) ([]NodeRun, error) {
	if c.executor == nil {
		return nil, ErrNoExecutor
	}
	prog, err := c.AssembleFrom(ctx, root, terminal)
	if err != nil {
		return nil, err
	}
	return c.runProgram(ctx, prog, target)
}

func (c *Compiler) runProgram(ctx context.Context, prog *ports.Program, target string) ([]NodeRun, error) {
	runs := make([]NodeRun, 0, len(prog.Nodes))
	for _, id := range prog.Nodes {
		if err := ctx.Err(); err != nil {
			return runs, err
		}
		run := NodeRun{NodeID: id}
		code, ok := domain.ExtractFragment(prog.Source, id)
		if !ok {
			run.Err = domain.NodeNotFound(id)
		} else {
			run.Result, run.Err = c.execute(ctx, id, code, target)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (c *Compiler) execute(ctx context.Context, nodeID, code, target string) (ports.ExecutionResult, error) {
	res, err := c.executor.Execute(ctx, code, target)

	evt := &domain.ExecutionEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventExecuted},
		NodeID:    nodeID,
		RunID:     res.ID,
		Output:    res.Output,
		Error:     res.Error,
	}
	if err != nil {
		evt.Error = err.Error()
		c.logger.Error("Execution failed", "node_id", nodeID, "err", err)
	} else {
		c.logger.Info("Node executed", "node_id", nodeID, "run_id", res.ID, "ok", res.Error == "")
	}
	if c.hooks.OnExecuted != nil {
		c.hooks.OnExecuted(ctx, evt)
	}
	return res, err
}

// Registry returns the node types the compiler generates code for.
func (c *Compiler) Registry() *registry.Registry {
	return c.registry
}

// Watchable reports whether Watch is supported by the graph source.
func (c *Compiler) Watchable() bool {
	_, ok := c.loader.(ports.Watchable)
	return ok
}

// Watch reports graph changes when the loader supports it.
func (c *Compiler) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, ok := c.loader.(ports.Watchable)
	if !ok {
		return nil, ErrNotWatchable
	}
	return w.Watch(ctx)
}

// Forget drops the remembered provisioned identifier of a node.
func (c *Compiler) Forget(nodeID string) {
	c.engine.Forget(nodeID)
}
