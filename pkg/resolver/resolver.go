// Package resolver answers structural questions about a graph snapshot:
// which nodes are nested in or downstream of a node, and how the main chain
// continues.
package resolver

import (
	"sort"

	"github.com/aretw0/aoflow/pkg/domain"
)

// Classifier tells the resolver how node types behave structurally.
// *registry.Registry satisfies it.
type Classifier interface {
	IsBlock(nodeType string) bool
	OutputType(nodeType string) string
}

// Attachment is one entry of an attached-nodes result: either a single node
// of a continuation chain or a group of nodes forming one body branch.
type Attachment struct {
	Node  *domain.Node
	Group []*domain.Node
}

// IsGroup reports whether the attachment is a body branch.
func (a Attachment) IsGroup() bool {
	return a.Group != nil
}

// Nodes returns the nodes of the attachment in order.
func (a Attachment) Nodes() []*domain.Node {
	if a.IsGroup() {
		return a.Group
	}
	return []*domain.Node{a.Node}
}

// Resolver reads a snapshot. It never mutates it and holds no state of its
// own, so one snapshot may be shared by concurrent resolvers.
type Resolver struct {
	snap  *domain.Snapshot
	types Classifier
}

// New creates a resolver over snap.
func New(snap *domain.Snapshot, types Classifier) *Resolver {
	return &Resolver{snap: snap, types: types}
}

// Attached returns the nodes structurally attached to id.
//
// For a linear node it is the downstream chain, as flat nodes. For a
// block-scoped node it is one group per body branch followed by the
// continuation chain as flat nodes.
func (r *Resolver) Attached(id string) ([]Attachment, error) {
	node, ok := r.snap.Node(id)
	if !ok {
		return nil, domain.NodeNotFound(id)
	}

	visited := map[string]bool{id: true}
	body, next := r.split(node)

	var out []Attachment
	for _, head := range body {
		if visited[head.ID] || head.Type == domain.NodeTypeAdd {
			continue
		}
		visited[head.ID] = true
		group := append([]*domain.Node{head}, r.walk(head, visited)...)
		out = append(out, Attachment{Group: group})
	}

	if next != nil && !visited[next.ID] && next.Type != domain.NodeTypeAdd {
		visited[next.ID] = true
		out = append(out, Attachment{Node: next})
		for _, n := range r.walk(next, visited) {
			out = append(out, Attachment{Node: n})
		}
	}
	return out, nil
}

// Next returns the continuation of id: the node the main chain moves to after
// id and everything nested in it.
func (r *Resolver) Next(id string) (*domain.Node, bool) {
	node, ok := r.snap.Node(id)
	if !ok {
		return nil, false
	}
	_, next := r.split(node)
	return next, next != nil
}

// Chain returns the continuation chain after from, up to and excluding the
// node with id stop. The walk also ends at dead ends, at "add" nodes and on
// revisits.
func (r *Resolver) Chain(from, stop string) []*domain.Node {
	visited := map[string]bool{from: true}
	var out []*domain.Node
	cur := from
	for {
		next, ok := r.Next(cur)
		if !ok || next.ID == stop || visited[next.ID] || next.Type == domain.NodeTypeAdd {
			return out
		}
		visited[next.ID] = true
		out = append(out, next)
		cur = next.ID
	}
}

// EdgeTypeFor returns the type for an edge leaving id. Types declaring
// "inherit" reuse the type of the edge entering them.
func (r *Resolver) EdgeTypeFor(id string) string {
	seen := make(map[string]bool)
	for {
		node, ok := r.snap.Node(id)
		if !ok || seen[id] {
			return domain.EdgeTypeDefault
		}
		seen[id] = true

		t := r.types.OutputType(node.Type)
		if t != domain.OutputTypeInherit {
			return t
		}
		in := r.snap.Incoming(id)
		if len(in) == 0 {
			return domain.EdgeTypeDefault
		}
		if in[0].Type != "" {
			return in[0].Type
		}
		id = in[0].Source
	}
}

func (r *Resolver) walk(from *domain.Node, visited map[string]bool) []*domain.Node {
	var out []*domain.Node
	cur := from
	for {
		_, next := r.split(cur)
		if next == nil || visited[next.ID] || next.Type == domain.NodeTypeAdd {
			return out
		}
		visited[next.ID] = true
		out = append(out, next)
		cur = next
	}
}

// split partitions the followable targets of node into body heads and the
// continuation. Targets are ordered by ascending Y, ties in discovery order.
func (r *Resolver) split(node *domain.Node) (body []*domain.Node, next *domain.Node) {
	type target struct {
		node *domain.Node
		edge domain.Edge
	}
	var targets []target
	for _, e := range r.snap.Outgoing(node.ID) {
		if !e.Followable() {
			continue
		}
		t, ok := r.snap.Node(e.Target)
		if !ok {
			continue
		}
		targets = append(targets, target{node: t, edge: e})
	}
	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].node.Position.Y < targets[j].node.Position.Y
	})

	block := r.types.IsBlock(node.Type)
	for _, t := range targets {
		switch {
		case block && (t.edge.Type == domain.EdgeTypeLoop || t.node.Position.Y > node.Position.Y):
			body = append(body, t.node)
		case next == nil:
			next = t.node
		}
	}
	return body, next
}
