package loam

import (
	"context"
	"testing"

	"github.com/aretw0/aoflow/internal/testutils"
	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/ports/tests"
	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	_, repo := testutils.GraphRepo(t, files)
	return New(loam.NewTypedRepository[NodeMetadata](repo))
}

var flowFiles = map[string]string{
	"start.md": `---
type: start
to: h1
---`,
	"h1.md": `---
id: h1
type: handler
position: {x: 0, y: 100}
data:
  handlerName: Ping
  actionType: default-action
edges:
  - to: body
  - to: add
---`,
	"body.md": `---
type: codeblock
position: {x: 0, y: 200}
---
Send({ Target = msg.From, Data = "Pong" })`,
	"add.json": `{"type": "add", "position": {"x": 0, "y": 50}}`,
}

func TestLoader_Contract(t *testing.T) {
	loader := seed(t, flowFiles)

	tests.GraphLoaderContractTest(t, loader, map[string]string{
		"start": domain.NodeTypeStart,
		"h1":    domain.NodeTypeHandler,
		"body":  domain.NodeTypeCodeblock,
		"add":   domain.NodeTypeAdd,
	})
}

func TestLoader_BuildsSnapshot(t *testing.T) {
	snap, err := seed(t, flowFiles).Load(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"add", "body", "h1", "start"}, ids)

	h1, ok := snap.Node("h1")
	require.True(t, ok)
	assert.Equal(t, "Ping", h1.String("handlerName"))

	body, _ := snap.Node("body")
	assert.Equal(t, `Send({ Target = msg.From, Data = "Pong" })`, body.String(BodyKey))

	out := snap.Outgoing("h1")
	require.Len(t, out, 2)
	assert.Equal(t, "body", out[0].Target)
	assert.Equal(t, "add", out[1].Target)

	start := snap.Outgoing("start")
	require.Len(t, start, 1)
	assert.Equal(t, "h1", start[0].Target)
}

func TestLoader_DetectsCollisions(t *testing.T) {
	loader := seed(t, map[string]string{
		"foo.md": `---
id: foo
type: start
---`,
		"foo.json": `{"id": "foo", "type": "add"}`,
	})

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

func TestLoader_RejectsDanglingEdges(t *testing.T) {
	loader := seed(t, map[string]string{
		"a.md": `---
type: start
to: ghost
---`,
	})

	_, err := loader.Load(context.Background())
	assert.ErrorContains(t, err, "unknown target")
}

func TestLoader_NormalizesIDs(t *testing.T) {
	loader := seed(t, map[string]string{
		"start.md": `---
id: start.md
type: start
edges:
  - to: next.json
    type: dashed
---`,
		"next.json": `{"id": "next.json", "type": "annotation"}`,
	})

	snap, err := loader.Load(context.Background())
	require.NoError(t, err)
	_, ok := snap.Node("start")
	assert.True(t, ok)
	require.Len(t, snap.Edges, 1)
	assert.Equal(t, "next", snap.Edges[0].Target)
	assert.Equal(t, domain.EdgeTypeDashed, snap.Edges[0].Type)
}

func TestLoader_BodyFillsCode(t *testing.T) {
	loader := seed(t, map[string]string{
		"plain.md": "---\ntype: codeblock\n---\nx = 1\n",
		"set.md":   "---\ntype: codeblock\ndata:\n  code: y = 2\n---\nignored = true\n",
	})

	snap, err := loader.Load(context.Background())
	require.NoError(t, err)

	plain, ok := snap.Node("plain")
	require.True(t, ok)
	assert.Equal(t, "x = 1", plain.String(BodyKey))

	set, ok := snap.Node("set")
	require.True(t, ok)
	assert.Equal(t, "y = 2", set.String(BodyKey))
}
