package registry

import (
	"sort"
	"sync"

	"github.com/aretw0/aoflow/pkg/domain"
)

// Registry is the catalog of node types known to the compiler.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]NodeType
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]NodeType),
	}
}

// Register adds a node type to the registry.
// If a type with the same id exists, it is overwritten.
func (r *Registry) Register(t NodeType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.ID] = t
}

// Lookup returns the node type registered under id.
// A missing type is not an error: callers treat it as "no generator available".
func (r *Registry) Lookup(id string) (NodeType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[id]
	return t, ok
}

// Types returns every registered type ordered by id.
func (r *Registry) Types() []NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]NodeType, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsBlock reports whether nodes of the given type nest a body.
func (r *Registry) IsBlock(id string) bool {
	t, ok := r.Lookup(id)
	return ok && t.Block
}

// OutputType returns the declared edge type for edges leaving nodes of the
// given type. Unknown types use the default edge.
func (r *Registry) OutputType(id string) string {
	t, ok := r.Lookup(id)
	if !ok || t.OutputType == "" {
		return domain.EdgeTypeDefault
	}
	return t.OutputType
}
