package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/aoflow/pkg/domain"
)

// Overlay carries run results to highlight on the graph.
type Overlay struct {
	Succeeded []string
	Failed    []string
}

// BlockClassifier reports block-scoped node types (*registry.Registry).
type BlockClassifier interface {
	IsBlock(nodeType string) bool
}

// GenerateMermaid produces a Mermaid flowchart of a snapshot.
// Shapes follow the node role:
// - Start: ((Circle))
// - Add: (((Double circle)))
// - Block-scoped (handler, conditional, loop): {{Hexagon}}
// - Token: [[Subroutine]]
// - Annotation: >Flag]
// - Default: [Rectangle]
// Edges are drawn by type; loop bodies use thick arrows and loopEnd edges dotted ones.
func GenerateMermaid(snap *domain.Snapshot, types BlockClassifier, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range snap.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.Type == domain.NodeTypeStart:
			opener, closer = "((", "))"
		case node.Type == domain.NodeTypeAdd:
			opener, closer = "(((", ")))"
		case node.Type == domain.NodeTypeToken:
			opener, closer = "[[", "]]"
		case node.Type == domain.NodeTypeAnnotation:
			opener, closer = ">", "]"
		case types != nil && types.IsBlock(node.Type):
			opener, closer = "{{", "}}"
		}

		label := node.ID
		if node.Type != "" && node.Type != node.ID {
			label = fmt.Sprintf("%s <br/> <i>%s</i>", node.ID, node.Type)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer))
	}

	for _, e := range snap.Edges {
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(e.Source), arrow(e.Type), sanitizeMermaidID(e.Target)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme
		sb.WriteString("    classDef succeeded fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#c62828,stroke-width:4px,color:#000;\n")
		writeClass(&sb, overlay.Succeeded, "succeeded")
		writeClass(&sb, overlay.Failed, "failed")
	}

	return sb.String()
}

func arrow(edgeType string) string {
	switch edgeType {
	case domain.EdgeTypeDashed:
		return "-.-"
	case domain.EdgeTypeLoop:
		return "== loop ==>"
	case domain.EdgeTypeLoopEnd:
		return "-. loopEnd .->"
	case domain.EdgeTypeMessage, domain.EdgeTypeTokenID:
		return fmt.Sprintf("-- %s -->", edgeType)
	default:
		return "-->"
	}
}

func writeClass(sb *strings.Builder, ids []string, class string) {
	seen := make(map[string]bool)
	for _, id := range ids {
		safeID := sanitizeMermaidID(id)
		if safeID == "" || seen[safeID] {
			continue
		}
		seen[safeID] = true
		sb.WriteString(fmt.Sprintf("    class %s %s;\n", safeID, class))
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
