package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/registry"
)

var sendFields = []struct {
	key, field string
}{
	{"target", "Target"},
	{"action", "Action"},
	{"data", "Data"},
}

// SendMessage sends an AO message.
func SendMessage() registry.NodeType {
	return registry.NodeType{
		ID:         domain.NodeTypeSendMessage,
		Name:       "Send Message",
		OutputType: domain.OutputTypeInherit,
		Order:      []string{"target", "action", "data"},
		Inputs: map[string]registry.InputField{
			"target": {Label: "Target", Input: registry.InputNormal, Type: registry.ValueText, ShowVariableToggle: true,
				Values: []registry.Preset{presetProcessID, presetSender}},
			"action": {Label: "Action", Input: registry.InputNormal, Type: registry.ValueText, Placeholder: "Info"},
			"data": {Label: "Data", Input: registry.InputNormal, Type: registry.ValueText, ShowVariableToggle: true,
				Values: []registry.Preset{presetData}},
		},
		Generate: generateSend,
	}
}

func generateSend(_ context.Context, in *registry.Inputs) (registry.Template, error) {
	if in.Raw("target") == "" {
		return registry.Template{}, fmt.Errorf("message target is required")
	}
	var fields []string
	for _, f := range sendFields {
		if in.Raw(f.key) == "" {
			continue
		}
		fields = append(fields, fmt.Sprintf("%s = %s", f.field, in.Token(f.key)))
	}
	return registry.Code("Send({\n" + strings.Join(fields, ",\n") + "\n})"), nil
}
