package ports

import (
	"context"

	"github.com/aretw0/aoflow/pkg/domain"
)

// GraphLoader defines how the compiler retrieves the graph to work on.
// This allows the storage layer (Loam, FS, Memory) to be decoupled.
type GraphLoader interface {
	// Load returns the current snapshot. Implementations return a fresh copy
	// the caller may keep for the duration of a generation call.
	Load(ctx context.Context) (*domain.Snapshot, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload of the served graph.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying graph changes.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
