package ports

import (
	"context"

	"github.com/aretw0/aoflow/pkg/domain"
)

// GraphStore persists named graph snapshots.
type GraphStore interface {
	// Save stores snap under name, replacing any previous version.
	Save(ctx context.Context, name string, snap *domain.Snapshot) error

	// Load retrieves the snapshot stored under name.
	// Returns domain.ErrGraphNotFound if there is none.
	Load(ctx context.Context, name string) (*domain.Snapshot, error)

	// Delete removes the snapshot. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored names.
	List(ctx context.Context) ([]string, error)
}

// NamedLoader exposes one entry of a GraphStore as a GraphLoader.
type NamedLoader struct {
	Store GraphStore
	Name  string
}

// Load implements GraphLoader.
func (l NamedLoader) Load(ctx context.Context) (*domain.Snapshot, error) {
	return l.Store.Load(ctx, l.Name)
}
