package domain

// Node type identifiers known to the built-in registry.
const (
	// NodeTypeStart is the root marker of the main chain. It emits no code.
	NodeTypeStart = "start"
	// NodeTypeAdd is the terminal marker (the open insertion slot). It emits no code.
	NodeTypeAdd = "add"
	// NodeTypeAnnotation is a canvas-only note.
	NodeTypeAnnotation = "annotation"

	NodeTypeHandler     = "handler"
	NodeTypeToken       = "token"
	NodeTypeSendMessage = "send-message"
	NodeTypeCodeblock   = "codeblock"
	NodeTypeConditional = "conditional"
	NodeTypeLoop        = "loop"
	NodeTypePrint       = "print"
	NodeTypeTransfer    = "transfer"
)

// Position is the 2-D canvas coordinate of a node.
// Y grows downwards, as on screen.
type Position struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// Node represents one step of the generated program.
type Node struct {
	ID   string `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`

	// Data maps input keys to raw user values. Keys suffixed with "Type"
	// (e.g. "lhsType") carry the TEXT/VARIABLE interpretation of their field.
	// Unknown keys are passed through untouched.
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty"`

	// Position only matters to order sibling edges.
	Position Position `json:"position" yaml:"position"`
}

// String returns the raw data value under key formatted as a string.
func (n *Node) String(key string) string {
	if n == nil || n.Data == nil {
		return ""
	}
	return stringify(n.Data[key])
}

// CloneData returns a shallow copy of the node data.
func (n *Node) CloneData() map[string]any {
	out := make(map[string]any, len(n.Data))
	for k, v := range n.Data {
		out[k] = v
	}
	return out
}
