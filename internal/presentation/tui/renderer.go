package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// LuaMarkdown wraps code in a fenced lua block, optionally under a heading.
func LuaMarkdown(title, code string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString("## ")
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}
	sb.WriteString("```lua\n")
	sb.WriteString(strings.Trim(code, "\n"))
	sb.WriteString("\n```\n")
	return sb.String()
}
