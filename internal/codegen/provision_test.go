package codegen_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/aoflow/internal/codegen"
	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/nodes"
	"github.com/aretw0/aoflow/pkg/ports"
	"github.com/aretw0/aoflow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenGraph(data map[string]any) *domain.Snapshot {
	return (&graph{}).node("t", domain.NodeTypeToken, 0, data).snapshot()
}

func TestProvision_SpawnsOnceAndRemembers(t *testing.T) {
	prov := &stubProvisioner{ids: []string{"tok-1", "tok-2"}}
	var provisioned []*domain.ProvisionEvent
	eng := newEngine(
		codegen.WithProvisioner(prov),
		codegen.WithLifecycleHooks(domain.LifecycleHooks{
			OnProvisioned: func(_ context.Context, ev *domain.ProvisionEvent) { provisioned = append(provisioned, ev) },
		}),
	)
	snap := tokenGraph(map[string]any{"name": "Points"})

	got, err := eng.GenerateCode(context.Background(), snap, "t", nil)
	require.NoError(t, err)
	assert.Contains(t, got, "tokens = tokens or {}\ntokens[\"Points\"] = \"tok-1\"")

	got, err = eng.GenerateCode(context.Background(), snap, "t", nil)
	require.NoError(t, err)
	assert.Contains(t, got, `"tok-1"`)
	assert.Equal(t, 1, prov.calls)

	require.Len(t, provisioned, 1)
	assert.Equal(t, "tok-1", provisioned[0].Identifier)

	id, ok := eng.Identifier("t")
	require.True(t, ok)
	assert.Equal(t, "tok-1", id)

	eng.Forget("t")
	got, err = eng.GenerateCode(context.Background(), snap, "t", nil)
	require.NoError(t, err)
	assert.Contains(t, got, `"tok-2"`)
}

func TestProvision_ExistingIdentifierSkipsProvisioner(t *testing.T) {
	prov := &stubProvisioner{ids: []string{"fresh"}}
	eng := newEngine(codegen.WithProvisioner(prov))

	got, err := eng.GenerateCode(context.Background(), tokenGraph(map[string]any{"name": "Points", nodes.TokenIDKey: "existing"}), "t", nil)
	require.NoError(t, err)
	assert.Contains(t, got, `"existing"`)
	assert.Zero(t, prov.calls)
}

func TestProvision_Respawn(t *testing.T) {
	prov := &stubProvisioner{ids: []string{"fresh"}}
	eng := newEngine(codegen.WithProvisioner(prov))

	data := map[string]any{"name": "Points", nodes.TokenIDKey: "old", nodes.TokenRespawnKey: true}
	got, err := eng.GenerateCode(context.Background(), tokenGraph(data), "t", nil)
	require.NoError(t, err)
	assert.Contains(t, got, `"fresh"`)
	assert.NotContains(t, got, `"old"`)
	assert.Equal(t, 1, prov.calls)
}

func TestProvision_EditedIdentifierWinsOverRemembered(t *testing.T) {
	prov := &stubProvisioner{ids: []string{"spawned", "again"}}
	eng := newEngine(codegen.WithProvisioner(prov))

	got, err := eng.GenerateCode(context.Background(), tokenGraph(map[string]any{"name": "Points"}), "t", nil)
	require.NoError(t, err)
	assert.Contains(t, got, `"spawned"`)

	edited := tokenGraph(map[string]any{"name": "Points", nodes.TokenIDKey: "pasted"})
	got, err = eng.GenerateCode(context.Background(), edited, "t", nil)
	require.NoError(t, err)
	assert.Contains(t, got, `"pasted"`)
	assert.NotContains(t, got, `"spawned"`)

	// a respawn still reuses the identifier it produced
	respawn := tokenGraph(map[string]any{"name": "Points", nodes.TokenIDKey: "pasted", nodes.TokenRespawnKey: true})
	got, err = eng.GenerateCode(context.Background(), respawn, "t", nil)
	require.NoError(t, err)
	assert.Contains(t, got, `"spawned"`)
	assert.Equal(t, 1, prov.calls)
}

func TestProvision_FailureAtTopLevel(t *testing.T) {
	boom := errors.New("spawn rejected")
	prov := &stubProvisioner{err: boom}
	var failed []*domain.ProvisionEvent
	eng := newEngine(
		codegen.WithProvisioner(prov),
		codegen.WithRetryPolicy(&registry.RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}),
		codegen.WithLifecycleHooks(domain.LifecycleHooks{
			OnProvisionFailed: func(_ context.Context, ev *domain.ProvisionEvent) { failed = append(failed, ev) },
		}),
	)

	got, err := eng.GenerateCode(context.Background(), tokenGraph(map[string]any{"name": "Points"}), "t", nil)
	assert.Empty(t, got)

	var perr *domain.ProvisionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "t", perr.NodeID)
	assert.Equal(t, domain.NodeTypeToken, perr.NodeType)
	assert.Equal(t, 3, perr.Attempts)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, prov.calls)
	require.Len(t, failed, 1)
}

func TestProvision_TypeRetryOverridesDefault(t *testing.T) {
	reg := nodes.NewRegistry()
	token := nodes.Token()
	token.Provision.Retry = &registry.RetryPolicy{MaxAttempts: 2}
	reg.Register(token)

	prov := &stubProvisioner{err: errors.New("nope")}
	eng := codegen.New(reg, codegen.WithProvisioner(prov))

	_, err := eng.GenerateCode(context.Background(), tokenGraph(map[string]any{"name": "Points"}), "t", nil)
	require.Error(t, err)
	assert.Equal(t, 2, prov.calls)
}

func TestProvision_NoProvisioner(t *testing.T) {
	_, err := newEngine().GenerateCode(context.Background(), tokenGraph(map[string]any{"name": "Points"}), "t", nil)
	assert.ErrorIs(t, err, domain.ErrNoProvisioner)
}

func TestProvision_NestedFailureBecomesFragment(t *testing.T) {
	snap := (&graph{}).
		node("p", domain.NodeTypePrint, 0, printData("before")).
		node("t", domain.NodeTypeToken, 0, map[string]any{"name": "Points"}).
		edge("p", "t").
		snapshot()

	got, err := newEngine().GenerateCode(context.Background(), snap, "p", nil)
	require.NoError(t, err)
	assertMarkers(t, got)
	assert.Contains(t, got, `print("before")`)
	assert.Contains(t, got, "-- [error:t]")
	assert.NotContains(t, got, "tokens[")
}

func TestProvision_CanceledDuringBackoff(t *testing.T) {
	prov := &stubProvisioner{err: errors.New("busy")}
	eng := newEngine(
		codegen.WithProvisioner(prov),
		codegen.WithRetryPolicy(&registry.RetryPolicy{MaxAttempts: 5, Delay: time.Hour}),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := eng.GenerateCode(ctx, tokenGraph(map[string]any{"name": "Points"}), "t", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, prov.calls)
}

type recordingLocker struct {
	keys     []string
	released int
}

func (l *recordingLocker) Lock(_ context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	l.keys = append(l.keys, key)
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

func TestProvision_UsesLocker(t *testing.T) {
	locker := &recordingLocker{}
	eng := newEngine(
		codegen.WithProvisioner(&stubProvisioner{ids: []string{"tok"}}),
		codegen.WithLocker(locker),
	)

	_, err := eng.GenerateCode(context.Background(), tokenGraph(map[string]any{"name": "Points"}), "t", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"provision:t"}, locker.keys)
	assert.Equal(t, 1, locker.released)
}
