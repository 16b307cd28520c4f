package codegen

import (
	"context"
	"errors"
	"strings"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/ports"
	"github.com/aretw0/aoflow/pkg/resolver"
)

// AssembleProgram walks the main chain from root to terminal (both
// excluded) and concatenates the fragment of every node on it. Nodes already
// included by an earlier fragment are not generated again. A chain that ends
// before reaching terminal yields the program assembled so far.
//
// Provisioning failures do not abort the walk: the failing node contributes
// an error fragment and is reported in Program.Failures.
func (e *Engine) AssembleProgram(ctx context.Context, snap *domain.Snapshot, root, terminal string) (*ports.Program, error) {
	if snap == nil {
		return nil, errors.New("nil snapshot")
	}
	if _, ok := snap.Node(root); !ok {
		return nil, domain.NodeNotFound(root)
	}

	r := resolver.New(snap, e.registry)
	prog := &ports.Program{}
	visited := map[string]bool{root: true}

	var src strings.Builder
	cur := root
	for {
		next, ok := r.Next(cur)
		if !ok {
			if terminal != "" {
				e.logger.Debug("Chain ended before terminal", "last", cur, "terminal", terminal)
			}
			break
		}
		if next.ID == terminal || next.Type == domain.NodeTypeAdd || visited[next.ID] {
			break
		}
		visited[next.ID] = true
		cur = next.ID

		if !domain.ContainsFragment(src.String(), next.ID) {
			frag, failures, err := e.generate(ctx, snap, next.ID, nil)
			prog.Failures = append(prog.Failures, failures...)
			if err != nil {
				var perr *domain.ProvisionError
				if !errors.As(err, &perr) {
					return nil, err
				}
				prog.Failures = append(prog.Failures, perr)
				frag = domain.ErrorFragment(next.ID, err)
			}
			src.WriteString(frag)
		}
		prog.Nodes = append(prog.Nodes, next.ID)
	}

	prog.Source = src.String()
	e.logger.Debug("Assembled program", "root", root, "nodes", len(prog.Nodes), "failures", len(prog.Failures))
	return prog, nil
}
