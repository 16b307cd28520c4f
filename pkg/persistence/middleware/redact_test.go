package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/aoflow/pkg/adapters/memory"
	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactMiddleware(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()

	mw, err := middleware.NewRedactMiddleware([]string{"(?i)secret", "^jwk$"})
	require.NoError(t, err)
	store := mw(underlying)

	snap := domain.NewSnapshot([]domain.Node{{
		ID:   "t",
		Type: domain.NodeTypeToken,
		Data: map[string]any{
			"name":      "Points",
			"apiSecret": "abc",
			"wallet":    map[string]any{"jwk": "key", "address": "addr"},
		},
	}}, nil)

	require.NoError(t, store.Save(ctx, "main", snap))

	stored, err := store.Load(ctx, "main")
	require.NoError(t, err)
	data := stored.Nodes[0].Data
	assert.Equal(t, "Points", data["name"])
	assert.Equal(t, middleware.Mask, data["apiSecret"])
	assert.Equal(t, map[string]any{"jwk": middleware.Mask, "address": "addr"}, data["wallet"])

	// the caller's snapshot is untouched
	assert.Equal(t, "abc", snap.Nodes[0].Data["apiSecret"])
	assert.Equal(t, "key", snap.Nodes[0].Data["wallet"].(map[string]any)["jwk"])
}

func TestRedactMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewRedactMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()

	redact, err := middleware.NewRedactMiddleware([]string{"secret"})
	require.NoError(t, err)
	encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	store := middleware.Chain(underlying, redact, encrypt)
	require.NoError(t, store.Save(ctx, "main", domain.NewSnapshot([]domain.Node{
		{ID: "a", Type: domain.NodeTypeCodeblock, Data: map[string]any{"secret": "x"}},
	}, nil)))

	raw, err := underlying.Load(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, middleware.EnvelopeNodeID, raw.Nodes[0].ID)

	loaded, err := store.Load(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.Nodes[0].Data["secret"])
}
