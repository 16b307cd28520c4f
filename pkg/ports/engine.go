package ports

import (
	"context"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/registry"
)

// Program is a fully assembled Lua program.
type Program struct {
	// Source is the concatenation of every node fragment in chain order.
	Source string `json:"source"`
	// Nodes lists the main chain nodes covered by Source, in order.
	Nodes []string `json:"nodes"`
	// Failures collects nodes whose provisioning failed; their fragments are
	// error comments.
	Failures []*domain.ProvisionError `json:"-"`
}

// Compiler is the surface exposed to driving adapters (HTTP, MCP, CLI).
type Compiler interface {
	// GenerateCode returns the delimited fragment of a node, optionally with
	// draft input data overriding the stored data.
	GenerateCode(ctx context.Context, nodeID string, override map[string]any) (string, error)

	// AssembleProgram concatenates the fragments of the main chain.
	AssembleProgram(ctx context.Context) (*Program, error)

	// NodeTypes lists the registered node types.
	NodeTypes() []registry.NodeType

	// Inspect returns the current graph.
	Inspect(ctx context.Context) (*domain.Snapshot, error)
}

// NodeRunner runs the fragment of one node on an AO process.
type NodeRunner interface {
	RunNode(ctx context.Context, nodeID, target string) (ExecutionResult, error)
}
