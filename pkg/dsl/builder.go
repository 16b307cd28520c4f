package dsl

import (
	"fmt"

	"github.com/aretw0/aoflow/pkg/adapters/memory"
	"github.com/aretw0/aoflow/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	order []string
	nodes map[string]*NodeBuilder
	edges []domain.Edge
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.Node{ID: id},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

func (b *Builder) connect(source, target, edgeType string) {
	id := fmt.Sprintf("%s-%s", source, target)
	for _, e := range b.edges {
		if e.ID == id {
			id = fmt.Sprintf("%s-%d", id, len(b.edges))
			break
		}
	}
	b.edges = append(b.edges, domain.Edge{
		ID:     id,
		Source: source,
		Target: target,
		Type:   edgeType,
	})
}

// Snapshot returns the graph, validated.
func (b *Builder) Snapshot() (*domain.Snapshot, error) {
	nodes := make([]domain.Node, 0, len(b.order))
	for _, id := range b.order {
		nodes = append(nodes, b.nodes[id].Build())
	}
	edges := make([]domain.Edge, len(b.edges))
	copy(edges, b.edges)

	snap := domain.NewSnapshot(nodes, edges)
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	return snap, nil
}

// Build compiles the graph into a memory loader.
func (b *Builder) Build() (*memory.Loader, error) {
	snap, err := b.Snapshot()
	if err != nil {
		return nil, err
	}
	loader, err := memory.NewFromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
