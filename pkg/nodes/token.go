package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/normalize"
	"github.com/aretw0/aoflow/pkg/registry"
)

// Data keys of the token node.
const (
	TokenIDKey      = "tokenId"
	TokenRespawnKey = "respawn"
)

type tokenInputs struct {
	Name         string `mapstructure:"name"`
	Ticker       string `mapstructure:"ticker"`
	Denomination string `mapstructure:"denomination"`
	TokenID      string `mapstructure:"tokenId"`
}

// Token references a token process. The process is spawned by the
// provisioner the first time the node is generated (or when respawn is set),
// and its id is registered in the global tokens table.
func Token() registry.NodeType {
	return registry.NodeType{
		ID:         domain.NodeTypeToken,
		Name:       "Token",
		OutputType: domain.EdgeTypeTokenID,
		Order:      []string{"name", "ticker", "denomination", TokenRespawnKey},
		Inputs: map[string]registry.InputField{
			"name":          {Label: "Token Name", Input: registry.InputNormal, Type: registry.ValueText, Placeholder: "Points"},
			"ticker":        {Label: "Ticker", Input: registry.InputNormal, Type: registry.ValueText, Placeholder: "PNT"},
			"denomination":  {Label: "Denomination", Input: registry.InputNormal, Type: registry.ValueNumber, Placeholder: "12"},
			TokenRespawnKey: {Label: "Spawn a new token", Input: registry.InputCheckbox, Type: registry.ValueBoolean},
		},
		Provision: &registry.ProvisionSpec{
			IdentifierKey: TokenIDKey,
			RespawnKey:    TokenRespawnKey,
		},
		Generate: generateToken,
	}
}

func generateToken(_ context.Context, in *registry.Inputs) (registry.Template, error) {
	var t tokenInputs
	if err := in.Decode(&t); err != nil {
		return registry.Template{}, err
	}
	if t.TokenID == "" {
		return registry.Template{}, fmt.Errorf("token %q has no process id", t.Name)
	}
	name := strings.TrimSpace(t.Name)
	if name == "" {
		name = strings.TrimSpace(t.Ticker)
	}
	if name == "" {
		return registry.Template{}, fmt.Errorf("token name is required")
	}
	code := fmt.Sprintf("tokens = tokens or {}\ntokens[%s] = %s", normalize.Text(name), normalize.Text(t.TokenID))
	return registry.Code(code), nil
}
