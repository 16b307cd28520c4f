package dsl

import (
	"github.com/aretw0/aoflow/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Type sets the node type identifier.
func (n *NodeBuilder) Type(nodeType string) *NodeBuilder {
	n.node.Type = nodeType
	return n
}

// At places the node on the canvas. Y decides which edges lead into a block body.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Set stores a raw data value without touching its interpretation kind.
func (n *NodeBuilder) Set(key string, value any) *NodeBuilder {
	if n.node.Data == nil {
		n.node.Data = make(map[string]any)
	}
	n.node.Data[key] = value
	return n
}

// Text stores value under key, interpreted as a string literal.
func (n *NodeBuilder) Text(key, value string) *NodeBuilder {
	return n.Set(key, value).Set(key+domain.TypeSuffix, domain.KindText)
}

// Var stores value under key, interpreted as a variable reference.
func (n *NodeBuilder) Var(key, value string) *NodeBuilder {
	return n.Set(key, value).Set(key+domain.TypeSuffix, domain.KindVariable)
}

// Code sets the raw source of a codeblock node.
func (n *NodeBuilder) Code(src string) *NodeBuilder {
	return n.Set("code", src)
}

// To adds a default edge to the target node.
func (n *NodeBuilder) To(target string) *NodeBuilder {
	return n.Via(domain.EdgeTypeDefault, target)
}

// Loop adds an edge leading into the body of a loop node.
func (n *NodeBuilder) Loop(target string) *NodeBuilder {
	return n.Via(domain.EdgeTypeLoop, target)
}

// LoopEnd adds the edge closing a loop body. It is drawn but never followed.
func (n *NodeBuilder) LoopEnd(target string) *NodeBuilder {
	return n.Via(domain.EdgeTypeLoopEnd, target)
}

// Via adds an edge of the given type to the target node.
func (n *NodeBuilder) Via(edgeType, target string) *NodeBuilder {
	n.builder.connect(n.node.ID, target, edgeType)
	return n
}

// Build returns the underlying domain.Node.
func (n *NodeBuilder) Build() domain.Node {
	out := n.node
	if n.node.Data != nil {
		out.Data = n.node.CloneData()
	}
	return out
}
