package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/normalize"
	"github.com/aretw0/aoflow/pkg/registry"
)

// Loop kinds.
const (
	LoopNumeric = "numeric"
	LoopPairs   = "pairs"
	LoopIPairs  = "ipairs"
	LoopWhile   = "while"
)

type loopInputs struct {
	Kind      string `mapstructure:"loopType"`
	Variable  string `mapstructure:"variable"`
	From      string `mapstructure:"from"`
	To        string `mapstructure:"to"`
	Step      string `mapstructure:"step"`
	Table     string `mapstructure:"table"`
	Key       string `mapstructure:"key"`
	Value     string `mapstructure:"value"`
	Condition string `mapstructure:"condition"`
}

// Loop repeats its body. Body nodes hang off "loop" edges and the last one
// links back with a "loopEnd" edge.
func Loop() registry.NodeType {
	return registry.NodeType{
		ID:         domain.NodeTypeLoop,
		Name:       "Loop",
		OutputType: domain.EdgeTypeLoop,
		Block:      true,
		Order:      []string{"loopType", "variable", "from", "to", "step", "table", "key", "value", "condition"},
		Inputs: map[string]registry.InputField{
			"loopType": {Label: "Kind", Input: registry.InputDropdown, Type: registry.ValueText, Values: []registry.Preset{
				{Value: LoopNumeric, Kind: domain.KindText},
				{Value: LoopPairs, Kind: domain.KindText},
				{Value: LoopIPairs, Kind: domain.KindText},
				{Value: LoopWhile, Kind: domain.KindText},
			}},
			"variable":  {Label: "Counter", Input: registry.InputNormal, Type: registry.ValueText, Placeholder: "i"},
			"from":      {Label: "From", Input: registry.InputNormal, Type: registry.ValueNumber, Placeholder: "1"},
			"to":        {Label: "To", Input: registry.InputNormal, Type: registry.ValueNumber, Placeholder: "10"},
			"step":      {Label: "Step", Input: registry.InputNormal, Type: registry.ValueNumber},
			"table":     {Label: "Table", Input: registry.InputNormal, Type: registry.ValueText, Placeholder: "Balances"},
			"key":       {Label: "Key", Input: registry.InputNormal, Type: registry.ValueText, Placeholder: "k"},
			"value":     {Label: "Value", Input: registry.InputNormal, Type: registry.ValueText, Placeholder: "v"},
			"condition": {Label: "Condition", Input: registry.InputNormal, Type: registry.ValueText, Placeholder: "running"},
		},
		Generate: generateLoop,
	}
}

func generateLoop(_ context.Context, in *registry.Inputs) (registry.Template, error) {
	var l loopInputs
	if err := in.Decode(&l); err != nil {
		return registry.Template{}, err
	}

	var head string
	switch l.Kind {
	case LoopNumeric, "":
		head = fmt.Sprintf("for %s = %s, %s", ident(l.Variable, "i"), bound(l.From, "1"), bound(l.To, "1"))
		if step := bound(l.Step, "1"); step != "1" {
			head += ", " + step
		}
		head += " do"
	case LoopPairs, LoopIPairs:
		table := normalize.SanitizeIdentifier(l.Table)
		if table == "" {
			return registry.Template{}, fmt.Errorf("%s loop needs a table", l.Kind)
		}
		key := "k"
		if l.Kind == LoopIPairs {
			key = "i"
		}
		head = fmt.Sprintf("for %s, %s in %s(%s) do", ident(l.Key, key), ident(l.Value, "v"), l.Kind, table)
	case LoopWhile:
		cond := strings.TrimSpace(l.Condition)
		if cond == "" {
			return registry.Template{}, fmt.Errorf("while loop needs a condition")
		}
		head = "while " + cond + " do"
	default:
		return registry.Template{}, fmt.Errorf("unknown loop kind %q", l.Kind)
	}
	return registry.Block(head, "end"), nil
}

// bound renders a numeric loop bound: a number literal or a variable.
func bound(v, def string) string {
	v = normalize.TrimQuotes(v)
	if normalize.IsNumeric(v) {
		return v
	}
	return ident(v, def)
}

func ident(v, def string) string {
	if s := normalize.SanitizeIdentifier(v); s != "" {
		return s
	}
	return def
}
