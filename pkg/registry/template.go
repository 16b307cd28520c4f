package registry

import (
	"context"
	"regexp"
)

var placeholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// FromTemplate builds a node type whose code is a template with "{key}"
// placeholders, each replaced by the normalized token of that input.
// Placeholders naming no input are left untouched.
func FromTemplate(id, name, outputType string, inputs map[string]InputField, order []string, codeTemplate string) NodeType {
	return NodeType{
		ID:         id,
		Name:       name,
		Inputs:     inputs,
		Order:      order,
		OutputType: outputType,
		Generate: func(_ context.Context, in *Inputs) (Template, error) {
			code := placeholder.ReplaceAllStringFunc(codeTemplate, func(m string) string {
				key := m[1 : len(m)-1]
				if _, ok := inputs[key]; !ok {
					return m
				}
				return in.Token(key)
			})
			return Code(code), nil
		},
	}
}
