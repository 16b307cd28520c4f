package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/normalize"
	"github.com/aretw0/aoflow/pkg/registry"
)

// Handler match modes.
const (
	ActionDefault  = "default-action"
	ActionString   = "custom-str"
	ActionFunction = "custom-fun"
)

type handlerInputs struct {
	Name        string `mapstructure:"handlerName"`
	ActionType  string `mapstructure:"actionType"`
	ActionValue string `mapstructure:"actionValue"`
	Markup      string `mapstructure:"blocklyXml"`
}

// Handler registers an AO message handler whose body holds the nested nodes.
func Handler() registry.NodeType {
	return registry.NodeType{
		ID:         domain.NodeTypeHandler,
		Name:       "Add Handler",
		OutputType: domain.EdgeTypeMessage,
		Block:      true,
		Order:      []string{"handlerName", "actionType", "actionValue"},
		Inputs: map[string]registry.InputField{
			"handlerName": {Label: "Handler Name", Input: registry.InputNormal, Type: registry.ValueText, Placeholder: "ping"},
			"actionType": {Label: "Match", Input: registry.InputDropdown, Type: registry.ValueText, Values: []registry.Preset{
				{Value: ActionDefault, Kind: domain.KindText},
				{Value: ActionString, Kind: domain.KindText},
				{Value: ActionFunction, Kind: domain.KindText},
			}},
			"actionValue": {Label: "Action", Input: registry.InputNormal, Type: registry.ValueText, Placeholder: "Ping"},
		},
		Generate: generateHandler,
	}
}

func generateHandler(_ context.Context, in *registry.Inputs) (registry.Template, error) {
	var h handlerInputs
	if err := in.Decode(&h); err != nil {
		return registry.Template{}, err
	}
	if strings.TrimSpace(h.Name) == "" {
		return registry.Template{}, fmt.Errorf("handler name is required")
	}

	var pattern string
	switch h.ActionType {
	case ActionString:
		pattern = normalize.Text(h.ActionValue)
	case ActionFunction:
		pattern = strings.TrimSpace(h.ActionValue)
		if pattern == "" {
			return registry.Template{}, fmt.Errorf("handler %q: match function is empty", h.Name)
		}
	case ActionDefault, "":
		action := h.ActionValue
		if action == "" {
			action = h.Name
		}
		pattern = fmt.Sprintf("Handlers.utils.hasMatchingTag(%s, %s)", normalize.Text("Action"), normalize.Text(action))
	default:
		return registry.Template{}, fmt.Errorf("handler %q: unknown action type %q", h.Name, h.ActionType)
	}

	head := fmt.Sprintf("Handlers.add(%s, %s, function(msg)", normalize.Text(h.Name), pattern)
	if strings.TrimSpace(h.Markup) != "" {
		if in.Editor == nil {
			return registry.Template{}, domain.ErrNoEditor
		}
		lua, err := in.Editor.ToLua(h.Markup)
		if err != nil {
			return registry.Template{}, fmt.Errorf("failed to convert handler markup: %w", err)
		}
		head += "\n" + strings.TrimSpace(lua)
	}
	return registry.Block(head, "end)"), nil
}
