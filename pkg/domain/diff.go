package domain

import (
	"reflect"
	"sort"
)

// GraphDiff represents the changes between two snapshots.
// It is serialized to JSON for hot-reload notifications.
type GraphDiff struct {
	// Added, Removed and Changed hold node ids, sorted.
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	// Changed lists nodes whose type, data or position differ.
	Changed []string `json:"changed,omitempty"`

	// EdgesChanged is set when the edge list differs in content or order.
	// Order matters: it breaks ties between sibling branches.
	EdgesChanged bool `json:"edges_changed,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, every node of newSnap is reported as added.
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *GraphDiff {
	if newSnap == nil {
		newSnap = &Snapshot{}
	}
	if oldSnap == nil {
		oldSnap = &Snapshot{}
	}

	diff := &GraphDiff{}

	oldNodes := make(map[string]Node, len(oldSnap.Nodes))
	for _, n := range oldSnap.Nodes {
		oldNodes[n.ID] = n
	}

	seen := make(map[string]bool, len(newSnap.Nodes))
	for _, n := range newSnap.Nodes {
		seen[n.ID] = true
		prev, ok := oldNodes[n.ID]
		switch {
		case !ok:
			diff.Added = append(diff.Added, n.ID)
		case !sameNode(prev, n):
			diff.Changed = append(diff.Changed, n.ID)
		}
	}
	for id := range oldNodes {
		if !seen[id] {
			diff.Removed = append(diff.Removed, id)
		}
	}

	diff.EdgesChanged = !sameEdges(oldSnap.Edges, newSnap.Edges)

	if diff.IsEmpty() {
		return nil
	}
	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Changed)
	return diff
}

func sameNode(a, b Node) bool {
	if a.Type != b.Type || a.Position != b.Position {
		return false
	}
	if len(a.Data) == 0 && len(b.Data) == 0 {
		return true
	}
	return reflect.DeepEqual(a.Data, b.Data)
}

func sameEdges(a, b []Edge) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *GraphDiff) IsEmpty() bool {
	return d == nil || (len(d.Added) == 0 &&
		len(d.Removed) == 0 &&
		len(d.Changed) == 0 &&
		!d.EdgesChanged)
}
