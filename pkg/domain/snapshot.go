package domain

import (
	"errors"
	"fmt"
)

// Snapshot is the persisted graph format and the immutable input of one
// generation call.
type Snapshot struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// NewSnapshot builds a snapshot from nodes and edges.
func NewSnapshot(nodes []Node, edges []Edge) *Snapshot {
	return &Snapshot{Nodes: nodes, Edges: edges}
}

// Node returns the node with the given id.
func (s *Snapshot) Node(id string) (*Node, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i], true
		}
	}
	return nil, false
}

// Outgoing returns the edges leaving id, in discovery order.
func (s *Snapshot) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range s.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// Incoming returns the edges entering id, in discovery order.
func (s *Snapshot) Incoming(id string) []Edge {
	var in []Edge
	for _, e := range s.Edges {
		if e.Target == id {
			in = append(in, e)
		}
	}
	return in
}

// Validate checks that node ids are unique and non-empty and that every edge
// references known nodes.
func (s *Snapshot) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.ID == "" {
			errs = append(errs, errors.New("node missing id"))
			continue
		}
		if seen[n.ID] {
			errs = append(errs, fmt.Errorf("duplicate node id %q", n.ID))
		}
		seen[n.ID] = true
	}
	for _, e := range s.Edges {
		if !seen[e.Source] {
			errs = append(errs, fmt.Errorf("edge %q: unknown source %q", e.ID, e.Source))
		}
		if !seen[e.Target] {
			errs = append(errs, fmt.Errorf("edge %q: unknown target %q", e.ID, e.Target))
		}
	}
	return errors.Join(errs...)
}

// Clone returns a deep enough copy for stores to keep isolated versions.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Nodes: make([]Node, len(s.Nodes)),
		Edges: make([]Edge, len(s.Edges)),
	}
	for i, n := range s.Nodes {
		n.Data = n.CloneData()
		out.Nodes[i] = n
	}
	copy(out.Edges, s.Edges)
	return out
}
