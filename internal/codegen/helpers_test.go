package codegen_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/aoflow/internal/codegen"
	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/nodes"
	"github.com/stretchr/testify/assert"
)

// graph is a tiny builder for test snapshots.
type graph struct {
	nodes []domain.Node
	edges []domain.Edge
}

func (g *graph) node(id, typ string, y float64, data map[string]any) *graph {
	g.nodes = append(g.nodes, domain.Node{ID: id, Type: typ, Data: data, Position: domain.Position{Y: y}})
	return g
}

func (g *graph) edge(src, dst string) *graph {
	return g.typedEdge(src, dst, "")
}

func (g *graph) typedEdge(src, dst, typ string) *graph {
	g.edges = append(g.edges, domain.Edge{ID: src + "->" + dst, Source: src, Target: dst, Type: typ})
	return g
}

func (g *graph) snapshot() *domain.Snapshot {
	return domain.NewSnapshot(g.nodes, g.edges)
}

func printData(v string) map[string]any {
	return map[string]any{"var": v, "varType": domain.KindText}
}

func newEngine(opts ...codegen.Option) *codegen.Engine {
	return codegen.New(nodes.NewRegistry(), opts...)
}

// stubProvisioner returns ids in order and counts calls.
type stubProvisioner struct {
	mu    sync.Mutex
	calls int
	ids   []string
	err   error
}

func (p *stubProvisioner) Provision(_ context.Context, _ *domain.Node) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	if len(p.ids) == 0 {
		return "", errors.New("out of ids")
	}
	id := p.ids[0]
	p.ids = p.ids[1:]
	return id, nil
}

// assertMarkers checks every start marker has a matching end marker after it.
func assertMarkers(t *testing.T, text string) {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-- [start:") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(line, "-- [start:"), "]")
		start := strings.Index(text, domain.StartMarker(id))
		end := strings.Index(text, domain.EndMarker(id))
		assert.Equal(t, 1, strings.Count(text, domain.StartMarker(id)), "start marker of %s", id)
		assert.Equal(t, 1, strings.Count(text, domain.EndMarker(id)), "end marker of %s", id)
		assert.Greater(t, end, start, "markers of %s out of order", id)
	}
}
