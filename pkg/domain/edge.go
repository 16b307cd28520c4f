package domain

// Edge types. They drive both rendering and structure: "loop" edges lead into
// a loop body, "loopEnd" edges close it and are never followed by the compiler.
const (
	EdgeTypeDefault = "default"
	EdgeTypeDashed  = "dashed"
	EdgeTypeMessage = "message"
	EdgeTypeTokenID = "tokenId"
	EdgeTypeLoop    = "loop"
	EdgeTypeLoopEnd = "loopEnd"
)

// OutputTypeInherit makes a node reuse the type of its own incoming edge for
// the edges leaving it.
const OutputTypeInherit = "inherit"

// Edge is a directed, typed link between two nodes.
type Edge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`

	// SourceHandle is the canvas handle the edge leaves from, if any.
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
}

// Followable reports whether the compiler may walk along this edge.
func (e Edge) Followable() bool {
	return e.Type != EdgeTypeLoopEnd && e.Type != EdgeTypeDashed
}
