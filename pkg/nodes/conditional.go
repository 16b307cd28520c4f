package nodes

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/normalize"
	"github.com/aretw0/aoflow/pkg/registry"
)

// Operators accepted by the conditional node.
var Operators = []string{"==", "~=", ">", "<", ">=", "<=", "and", "or"}

type conditionalInputs struct {
	Operator          string `mapstructure:"operator"`
	UseAdvanced       bool   `mapstructure:"useAdvanced"`
	AdvancedCondition string `mapstructure:"advancedCondition"`
}

var conditionPresets = []registry.Preset{
	presetProcessID,
	presetSender,
	presetData,
	{Value: "msg.Target", Kind: domain.KindVariable},
	{Value: "true", Kind: domain.KindVariable},
	{Value: "false", Kind: domain.KindVariable},
	{Value: "nil", Kind: domain.KindVariable},
}

// Conditional wraps its body in an if statement.
func Conditional() registry.NodeType {
	operators := make([]registry.Preset, 0, len(Operators))
	for _, op := range Operators {
		operators = append(operators, registry.Preset{Value: op, Kind: domain.KindText})
	}
	return registry.NodeType{
		ID:         domain.NodeTypeConditional,
		Name:       "Conditional",
		OutputType: domain.OutputTypeInherit,
		Block:      true,
		Order:      []string{"lhs", "operator", "rhs", "useAdvanced", "advancedCondition"},
		Inputs: map[string]registry.InputField{
			"lhs":               {Label: "Left", Input: registry.InputNormal, Type: registry.ValueText, ShowVariableToggle: true, Values: conditionPresets},
			"operator":          {Label: "Operator", Input: registry.InputDropdown, Type: registry.ValueText, Values: operators},
			"rhs":               {Label: "Right", Input: registry.InputNormal, Type: registry.ValueText, ShowVariableToggle: true, Values: conditionPresets},
			"useAdvanced":       {Label: "Advanced", Input: registry.InputCheckbox, Type: registry.ValueBoolean},
			"advancedCondition": {Label: "Condition", Input: registry.InputNormal, Type: registry.ValueText, Placeholder: "msg.From == Owner"},
		},
		Generate: generateConditional,
	}
}

func generateConditional(_ context.Context, in *registry.Inputs) (registry.Template, error) {
	var c conditionalInputs
	if err := in.Decode(&c); err != nil {
		return registry.Template{}, err
	}

	var cond string
	if c.UseAdvanced {
		cond = strings.TrimSpace(c.AdvancedCondition)
		if cond == "" {
			return registry.Template{}, fmt.Errorf("advanced condition is empty")
		}
	} else {
		if !slices.Contains(Operators, c.Operator) {
			return registry.Template{}, fmt.Errorf("unknown operator %q", c.Operator)
		}
		cond = fmt.Sprintf("%s %s %s", operand(in, "lhs"), c.Operator, operand(in, "rhs"))
	}
	return registry.Block("if "+cond+" then", "end"), nil
}

// operand renders one side of a comparison: numbers typed as text stay bare.
func operand(in *registry.Inputs, key string) string {
	raw := in.Raw(key)
	if in.Kind(key) == domain.KindText && normalize.IsNumeric(raw) {
		return strings.TrimSpace(raw)
	}
	return in.Token(key)
}
