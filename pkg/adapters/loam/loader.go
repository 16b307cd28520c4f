// Package loam reads graphs kept as a directory of node documents
// (Markdown with frontmatter, JSON or YAML) through the Loam library.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/loam"
)

// BodyKey receives the document body when the node data does not set it.
// Codeblock nodes can thus keep their Lua below the frontmatter.
const BodyKey = "code"

// Loader adapts the Loam library to the aoflow GraphLoader interface.
type Loader struct {
	Repo *loam.TypedRepository[NodeMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[NodeMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at path and wraps it.
// Strict mode keeps numbers as json.Number across Markdown, JSON and YAML.
func Open(path string) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[NodeMetadata](repo)), nil
}

// Load lists every document and assembles the snapshot. Nodes are ordered
// by id; edges follow node order, then each document's edge order.
func (l *Loader) Load(ctx context.Context) (*domain.Snapshot, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	snap := &domain.Snapshot{}
	edges := make(map[string][]domain.Edge)

	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID

		meta := doc.Data
		data := make(map[string]any, len(meta.Data)+1)
		for k, v := range meta.Data {
			data[k] = v
		}
		if _, ok := data[BodyKey]; !ok {
			body, err := l.body(ctx, doc.ID)
			if err != nil {
				return nil, err
			}
			if body != "" {
				data[BodyKey] = body
			}
		}
		if len(data) == 0 {
			data = nil
		}

		snap.Nodes = append(snap.Nodes, domain.Node{
			ID:       id,
			Type:     meta.Type,
			Data:     data,
			Position: meta.Position,
		})
		edges[id] = buildEdges(id, meta)
	}

	sort.SliceStable(snap.Nodes, func(i, j int) bool { return snap.Nodes[i].ID < snap.Nodes[j].ID })
	for _, n := range snap.Nodes {
		snap.Edges = append(snap.Edges, edges[n.ID]...)
	}

	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	return snap, nil
}

// body fetches the document content; List only carries metadata.
func (l *Loader) body(ctx context.Context, docID string) (string, error) {
	doc, err := l.Repo.Get(ctx, docID)
	if err != nil {
		return "", fmt.Errorf("loam get failed for %s: %w", docID, err)
	}
	return strings.TrimSpace(doc.Content), nil
}

func buildEdges(source string, meta NodeMetadata) []domain.Edge {
	list := meta.Edges
	if meta.To != "" {
		list = append([]EdgeMetadata{{To: meta.To}}, list...)
	}

	out := make([]domain.Edge, 0, len(list))
	for i, em := range list {
		target := trimExtension(em.To)
		id := em.ID
		if id == "" {
			id = fmt.Sprintf("%s-%s-%d", source, target, i)
		}
		out = append(out, domain.Edge{
			ID:           id,
			Source:       source,
			Target:       target,
			Type:         em.Type,
			SourceHandle: em.Handle,
		})
	}
	return out
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces bursts; coalesce whatever is left.
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ch, nil
}
