package ports

import (
	"context"

	"github.com/aretw0/aoflow/pkg/domain"
)

// ExecutionResult is the outcome of running code on a process.
type ExecutionResult struct {
	// ID identifies the run.
	ID     string `json:"id"`
	Output string `json:"output"`
	// Error carries the error reported by the process itself, if any.
	Error string `json:"error,omitempty"`
}

// Executor runs Lua on an AO process.
type Executor interface {
	Execute(ctx context.Context, code, target string) (ExecutionResult, error)
}

// Provisioner creates the remote process a node refers to (e.g., a token
// process) and returns its identifier.
type Provisioner interface {
	Provision(ctx context.Context, node *domain.Node) (string, error)
}

// EditorConverter turns visual-editor markup into Lua.
type EditorConverter interface {
	ToLua(markup string) (string, error)
}
