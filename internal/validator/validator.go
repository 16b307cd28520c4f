// Package validator checks a graph for problems that would make the
// generated program incomplete.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/registry"
)

// Report lists the problems found in a graph. Errors break generation;
// warnings point at nodes whose code never reaches the program.
type Report struct {
	Errors   []string
	Warnings []string
}

// OK reports whether no error was found.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Err folds the errors into one, or returns nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(r.Errors), strings.Join(r.Errors, "\n- "))
}

// ValidateGraph checks node ids, edges and types, then crawls the graph from
// root and reports nodes it never reaches.
func ValidateGraph(snap *domain.Snapshot, reg *registry.Registry, root string) *Report {
	report := &Report{}

	if err := snap.Validate(); err != nil {
		report.Errors = append(report.Errors, splitJoined(err)...)
	}

	for _, n := range snap.Nodes {
		if _, ok := reg.Lookup(n.Type); !ok {
			report.Errors = append(report.Errors, fmt.Sprintf("node %q: unknown type %q", n.ID, n.Type))
		}
	}

	if _, ok := snap.Node(root); !ok {
		report.Errors = append(report.Errors, fmt.Sprintf("root node %q not found", root))
		return report
	}

	visited := map[string]bool{}
	queue := []string{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, e := range snap.Outgoing(current) {
			if !e.Followable() || visited[e.Target] {
				continue
			}
			queue = append(queue, e.Target)
		}
	}

	for _, n := range snap.Nodes {
		if visited[n.ID] || n.Type == domain.NodeTypeAnnotation {
			continue
		}
		report.Warnings = append(report.Warnings, fmt.Sprintf("node %q is not reachable from %q", n.ID, root))
	}
	return report
}

func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, splitJoined(e)...)
		}
		return out
	}
	var msgs []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line != "" {
			msgs = append(msgs, line)
		}
	}
	return msgs
}
