package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunGraphStoreContract runs a suite of tests to verify that a GraphStore implementation
// adheres to the defined interface contract.
func RunGraphStoreContract(t *testing.T, store GraphStore) {
	ctx := context.Background()
	name := "contract-graph-" + time.Now().Format("20060102150405")

	sample := func() *domain.Snapshot {
		return domain.NewSnapshot(
			[]domain.Node{
				{ID: "start", Type: domain.NodeTypeStart},
				{ID: "p1", Type: domain.NodeTypePrint, Data: map[string]any{"var": "gm", "varType": domain.KindText}, Position: domain.Position{X: 10, Y: 20}},
				{ID: "add", Type: domain.NodeTypeAdd},
			},
			[]domain.Edge{
				{ID: "e1", Source: "start", Target: "p1"},
				{ID: "e2", Source: "p1", Target: "add", Type: domain.EdgeTypeDefault},
			},
		)
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, name, sample())
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded.Nodes, 3)
		require.Len(t, loaded.Edges, 2)

		p1, ok := loaded.Node("p1")
		require.True(t, ok)
		assert.Equal(t, domain.NodeTypePrint, p1.Type)
		assert.Equal(t, "gm", p1.String("var"))
		assert.Equal(t, 20.0, p1.Position.Y)
		assert.Equal(t, "p1", loaded.Edges[0].Target)
	})

	t.Run("Save isolates stored copy", func(t *testing.T) {
		snap := sample()
		require.NoError(t, store.Save(ctx, name, snap))
		snap.Nodes[1].Data["var"] = "mutated"

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		p1, _ := loaded.Node("p1")
		assert.Equal(t, "gm", p1.String("var"))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrGraphNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sample()))

		err := store.Delete(ctx, name)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrGraphNotFound, "Load after Delete should return ErrGraphNotFound")

		assert.NoError(t, store.Delete(ctx, name), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		_ = store.Save(ctx, id1, sample())
		_ = store.Save(ctx, id2, sample())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
	})
}
