package nodes

import (
	"context"
	"strings"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/registry"
)

// Codeblock emits user-written Lua as is.
func Codeblock() registry.NodeType {
	return registry.NodeType{
		ID:         domain.NodeTypeCodeblock,
		Name:       "Codeblock",
		OutputType: domain.OutputTypeInherit,
		Order:      []string{"code"},
		Inputs: map[string]registry.InputField{
			"code": {Label: "Lua", Input: registry.InputNormal, Type: registry.ValueText},
		},
		Generate: func(_ context.Context, in *registry.Inputs) (registry.Template, error) {
			return registry.Code(strings.TrimSpace(in.Raw("code"))), nil
		},
	}
}
