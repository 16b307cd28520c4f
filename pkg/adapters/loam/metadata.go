package loam

import (
	"github.com/aretw0/aoflow/pkg/domain"
)

// NodeMetadata is the frontmatter of one node document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
//
//	---
//	id: h1
//	type: handler
//	position: {x: 0, y: 120}
//	data:
//	  handlerName: Ping
//	edges:
//	  - to: p1
//	---
type NodeMetadata struct {
	ID       string          `json:"id" mapstructure:"id"`
	Type     string          `json:"type" mapstructure:"type"`
	Position domain.Position `json:"position" mapstructure:"position"`
	Data     map[string]any  `json:"data" mapstructure:"data"`

	// Edges leave this node, in discovery order.
	Edges []EdgeMetadata `json:"edges" mapstructure:"edges"`

	// To is shorthand for a single default edge.
	To string `json:"to,omitempty" mapstructure:"to"`
}

// EdgeMetadata describes one outgoing edge.
type EdgeMetadata struct {
	ID     string `json:"id" mapstructure:"id"`
	To     string `json:"to" mapstructure:"to"`
	Type   string `json:"type" mapstructure:"type"`
	Handle string `json:"handle" mapstructure:"handle"`
}
