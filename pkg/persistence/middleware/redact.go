package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type redactMiddleware struct {
	next     ports.GraphStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks node data values whose
// key matches one of the patterns before the snapshot is saved. Nested maps
// are masked too. The caller's snapshot is left untouched.
func NewRedactMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		compiled[i] = re
	}
	return func(next ports.GraphStore) ports.GraphStore {
		return &redactMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, name string, snap *domain.Snapshot) error {
	cloned := &domain.Snapshot{
		Nodes: make([]domain.Node, len(snap.Nodes)),
		Edges: snap.Edges,
	}
	for i, n := range snap.Nodes {
		n.Data = deepCopyMap(n.Data)
		maskMap(n.Data, m.patterns)
		cloned.Nodes[i] = n
	}
	return m.next.Save(ctx, name, cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, name string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, name)
}

func (m *redactMiddleware) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if subMap, ok := v.(map[string]any); ok && !masked {
			maskMap(subMap, patterns)
		}
	}
}
