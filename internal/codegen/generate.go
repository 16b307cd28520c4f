package codegen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/registry"
	"github.com/aretw0/aoflow/pkg/resolver"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// generation is the traversal state of one top-level call.
type generation struct {
	engine   *Engine
	resolver *resolver.Resolver
	// active holds the nodes currently being generated (the recursion path).
	active   map[string]bool
	failures []*domain.ProvisionError
}

// GenerateCode returns the delimited fragment of nodeID, including the
// fragments of every node attached to it. override, when non-nil, replaces
// the node's stored data (draft input from an editor).
//
// Node-local failures become comment fragments. The returned error is
// non-nil only for an unknown node, a canceled context or a failed
// provisioning of nodeID itself (*domain.ProvisionError).
func (e *Engine) GenerateCode(ctx context.Context, snap *domain.Snapshot, nodeID string, override map[string]any) (string, error) {
	frag, _, err := e.generate(ctx, snap, nodeID, override)
	return frag, err
}

func (e *Engine) generate(ctx context.Context, snap *domain.Snapshot, nodeID string, override map[string]any) (string, []*domain.ProvisionError, error) {
	if snap == nil {
		return "", nil, errors.New("nil snapshot")
	}
	node, ok := snap.Node(nodeID)
	if !ok {
		return "", nil, domain.NodeNotFound(nodeID)
	}

	g := &generation{
		engine:   e,
		resolver: resolver.New(snap, e.registry),
		active:   make(map[string]bool),
	}
	frag, err := g.node(ctx, node, override, true)
	return frag, g.failures, err
}

func (g *generation) node(ctx context.Context, node *domain.Node, override map[string]any, top bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e := g.engine
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "codegen.node",
		trace.WithAttributes(
			attribute.String("aoflow.node.id", node.ID),
			attribute.String("aoflow.node.type", node.Type),
		),
	)
	defer span.End()

	g.active[node.ID] = true
	defer delete(g.active, node.ID)

	nt, known := e.registry.Lookup(node.Type)

	data := node.CloneData()
	if override != nil {
		data = make(map[string]any, len(override))
		for k, v := range override {
			data[k] = v
		}
	}

	var provErr error
	if known && nt.Provision != nil {
		id, err := e.provision(ctx, node, nt, data)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "provisioning failed")
			if top {
				return "", err
			}
			var perr *domain.ProvisionError
			if errors.As(err, &perr) {
				g.failures = append(g.failures, perr)
			}
			provErr = err
		} else {
			data[nt.Provision.IdentifierKey] = id
		}
	}

	slot, tail, err := g.attached(ctx, node.ID)
	if err != nil {
		return "", err
	}
	if provErr != nil {
		// the body belongs to the node that could not be generated
		return domain.ErrorFragment(node.ID, provErr) + tail, nil
	}

	var code string
	if !known || nt.Generate == nil {
		e.logger.Debug("No generator for node", "node_id", node.ID, "node_type", node.Type)
		code = domain.NoGeneratorComment
		tail = slot + tail
	} else {
		in := registry.Resolve(node, nt, data)
		in.Editor = e.editor

		tpl, err := safeGenerate(ctx, nt.Generate, in)
		if err != nil {
			gerr := &domain.GeneratorError{NodeID: node.ID, Err: err}
			e.logger.Warn("Generator failed", "node_id", node.ID, "node_type", node.Type, "err", err)
			span.RecordError(gerr)
			span.SetStatus(codes.Error, "generator failed")
			if e.hooks.OnGeneratorError != nil {
				e.hooks.OnGeneratorError(ctx, &domain.GenerationEvent{
					EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventGeneratorError},
					NodeID:    node.ID,
					NodeType:  node.Type,
					Duration:  time.Since(start),
					Err:       gerr,
				})
			}
			return domain.ErrorFragment(node.ID, gerr) + tail, nil
		}
		if !tpl.Block {
			tail = slot + tail
		}
		code = tpl.Render(slot)
	}

	frag := domain.WrapFragment(node.ID, e.formatter.Format(code)) + tail

	span.SetAttributes(attribute.Int("aoflow.fragment.bytes", len(frag)))
	if e.hooks.OnNodeGenerated != nil {
		e.hooks.OnNodeGenerated(ctx, &domain.GenerationEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeGenerated},
			NodeID:    node.ID,
			NodeType:  node.Type,
			Duration:  time.Since(start),
			Bytes:     len(frag),
		})
	}
	return frag, nil
}

// attached generates the nodes attached to id in resolver order. Body groups
// go to slot, continuation nodes to tail. A node already present in either,
// or on the current recursion path, is skipped.
func (g *generation) attached(ctx context.Context, id string) (slot, tail string, err error) {
	attachments, err := g.resolver.Attached(id)
	if err != nil {
		return "", "", err
	}

	var body, rest strings.Builder
	for _, a := range attachments {
		dst := &rest
		if a.IsGroup() {
			dst = &body
		}
		for _, n := range a.Nodes() {
			if g.active[n.ID] || domain.ContainsFragment(body.String(), n.ID) || domain.ContainsFragment(rest.String(), n.ID) {
				continue
			}
			frag, err := g.node(ctx, n, nil, false)
			if err != nil {
				return "", "", err
			}
			dst.WriteString(frag)
		}
	}
	return body.String(), rest.String(), nil
}

func safeGenerate(ctx context.Context, gen registry.GeneratorFunc, in *registry.Inputs) (tpl registry.Template, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panicked: %v", r)
		}
	}()
	return gen(ctx, in)
}
