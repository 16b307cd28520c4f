package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/aoflow/pkg/adapters/file"
	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunGraphStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_YAMLContract(t *testing.T) {
	store := file.New(t.TempDir())
	store.Format = file.YAML
	ports.RunGraphStoreContract(t, store)
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "flow", domain.NewSnapshot([]domain.Node{{ID: "a", Type: domain.NodeTypeStart}}, nil)))
	require.NoError(t, store.Save(ctx, "flow", domain.NewSnapshot([]domain.Node{{ID: "b", Type: domain.NodeTypeStart}}, nil)))

	_, err := os.Stat(filepath.Join(dir, "flow.json"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")

	snap, err := store.Load(ctx, "flow")
	require.NoError(t, err)
	_, ok := snap.Node("b")
	assert.True(t, ok)
}

func TestFileStore_RejectsPathNames(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "../escape", domain.NewSnapshot(nil, nil)))
	assert.Error(t, store.Save(ctx, "", domain.NewSnapshot(nil, nil)))
	_, err := store.Load(ctx, "a/b")
	assert.Error(t, err)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	names, err := file.New(filepath.Join(t.TempDir(), "missing")).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}
