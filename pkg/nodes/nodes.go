// Package nodes provides the built-in node types of the AO flow builder.
package nodes

import (
	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/registry"
)

// Common values offered as presets by several inputs.
var (
	presetProcessID = registry.Preset{Value: "ao.id", Kind: domain.KindVariable}
	presetSender    = registry.Preset{Value: "msg.From", Kind: domain.KindVariable}
	presetData      = registry.Preset{Value: "msg.Data", Kind: domain.KindVariable}
)

// Register adds every built-in node type to reg.
func Register(reg *registry.Registry) {
	reg.Register(registry.NodeType{ID: domain.NodeTypeStart, Name: "Start"})
	reg.Register(registry.NodeType{ID: domain.NodeTypeAdd, Name: "Add Node"})
	reg.Register(registry.NodeType{ID: domain.NodeTypeAnnotation, Name: "Annotation", OutputType: domain.EdgeTypeDashed})

	reg.Register(Handler())
	reg.Register(Token())
	reg.Register(SendMessage())
	reg.Register(Codeblock())
	reg.Register(Conditional())
	reg.Register(Loop())
	reg.Register(Print())
	reg.Register(Transfer())
}

// NewRegistry returns a registry holding the built-in node types.
func NewRegistry() *registry.Registry {
	reg := registry.NewRegistry()
	Register(reg)
	return reg
}
