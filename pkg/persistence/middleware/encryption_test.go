package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/aoflow/pkg/adapters/memory"
	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/persistence/middleware"
	"github.com/aretw0/aoflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secretGraph() *domain.Snapshot {
	return domain.NewSnapshot(
		[]domain.Node{
			{ID: "start", Type: domain.NodeTypeStart},
			{ID: "code", Type: domain.NodeTypeCodeblock, Data: map[string]any{"code": `Wallet = "my-secret-sauce"`}},
		},
		[]domain.Edge{{ID: "e1", Source: "start", Target: "code"}},
	)
}

func encrypted(t *testing.T, cfg middleware.EncryptionConfig, next ports.GraphStore) ports.GraphStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunGraphStoreContract(t, encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	secure := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)

	require.NoError(t, secure.Save(ctx, "main", secretGraph()))

	stored, err := underlying.Load(ctx, "main")
	require.NoError(t, err)
	require.Len(t, stored.Nodes, 1)
	assert.Equal(t, middleware.EnvelopeNodeID, stored.Nodes[0].ID)
	assert.NotContains(t, stored.Nodes[0].String("ciphertext"), "my-secret-sauce")
	assert.Empty(t, stored.Edges)

	loaded, err := secure.Load(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, secretGraph(), loaded)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	require.NoError(t, encrypted(t, middleware.EncryptionConfig{ActiveKey: oldKey}, underlying).Save(ctx, "main", secretGraph()))

	rotated := encrypted(t, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}}, underlying)
	loaded, err := rotated.Load(ctx, "main")
	require.NoError(t, err)
	assert.Len(t, loaded.Nodes, 2)

	wrong := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)
	_, err = wrong.Load(ctx, "main")
	assert.ErrorContains(t, err, "failed to decrypt")
}

func TestEncryptionMiddleware_Errors(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)

	ctx := context.Background()
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(ctx, "plain", secretGraph()))

	secure := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)
	_, err = secure.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)

	_, err = secure.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrGraphNotFound)
}
