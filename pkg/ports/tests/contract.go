package tests

import (
	"context"
	"testing"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/ports"
)

// GraphLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.GraphLoader.
// want lists the node ids (and their types) the loader is expected to return.
func GraphLoaderContractTest(t *testing.T, loader ports.GraphLoader, want map[string]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load", func(t *testing.T) {
		snap, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading graph: %v", err)
		}
		if len(snap.Nodes) != len(want) {
			t.Errorf("expected %d nodes, got %d", len(want), len(snap.Nodes))
		}
		for id, typ := range want {
			n, ok := snap.Node(id)
			if !ok {
				t.Errorf("expected node %s not found", id)
				continue
			}
			if n.Type != typ {
				t.Errorf("type mismatch for %s. got %q, want %q", id, n.Type, typ)
			}
		}
		if err := snap.Validate(); err != nil {
			t.Errorf("loaded snapshot is invalid: %v", err)
		}
	})

	t.Run("Load returns independent copies", func(t *testing.T) {
		first, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading graph: %v", err)
		}
		if len(first.Nodes) == 0 {
			t.Skip("empty graph")
		}
		first.Nodes[0].Type = "mutated"
		first.Nodes = append(first.Nodes, domain.Node{ID: "intruder"})

		second, err := loader.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error loading graph: %v", err)
		}
		if _, ok := second.Node("intruder"); ok {
			t.Error("mutation of a loaded snapshot leaked into the loader")
		}
		for _, n := range second.Nodes {
			if n.Type == "mutated" {
				t.Error("mutation of a loaded node leaked into the loader")
			}
		}
	})
}
