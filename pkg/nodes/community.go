package nodes

import (
	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/registry"
)

// Print writes a value to the process output.
func Print() registry.NodeType {
	return registry.FromTemplate(domain.NodeTypePrint, "Print", domain.OutputTypeInherit,
		map[string]registry.InputField{
			"var": {
				Label:              "Variable Name (variable / value)",
				Input:              registry.InputNormal,
				Type:               registry.ValueText,
				Placeholder:        "Hello AO!",
				ShowVariableToggle: true,
				Values: []registry.Preset{
					{Value: "Hello AO!", Kind: domain.KindText},
					{Value: "gm", Kind: domain.KindText},
					presetProcessID,
				},
			},
		},
		[]string{"var"},
		"print({var})",
	)
}

// Transfer moves tokens from the process to a recipient.
func Transfer() registry.NodeType {
	return registry.FromTemplate(domain.NodeTypeTransfer, "Transfer", domain.OutputTypeInherit,
		map[string]registry.InputField{
			"token": {Label: "Token Process", Input: registry.InputNormal, Type: registry.ValueText, ShowVariableToggle: true,
				Values: []registry.Preset{presetProcessID}},
			"recipient": {Label: "Recipient", Input: registry.InputNormal, Type: registry.ValueText, ShowVariableToggle: true,
				Values: []registry.Preset{presetSender}},
			"quantity": {Label: "Quantity", Input: registry.InputNormal, Type: registry.ValueText, Placeholder: "100"},
		},
		[]string{"token", "recipient", "quantity"},
		`Send({ Target = {token}, Action = "Transfer", Recipient = {recipient}, Quantity = {quantity} })`,
	)
}
