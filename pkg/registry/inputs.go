package registry

import (
	"fmt"
	"strings"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/normalize"
	"github.com/mitchellh/mapstructure"
)

// EditorConverter turns visual-editor markup into Lua.
type EditorConverter interface {
	ToLua(markup string) (string, error)
}

// Inputs are the resolved input values handed to a generator.
type Inputs struct {
	NodeID   string
	NodeType string

	// Editor converts visual-editor markup, nil when none is configured.
	Editor EditorConverter

	data  map[string]any
	kinds map[string]string
}

// Resolve prepares the inputs of a node: every field interpreted as a
// VARIABLE is sanitized, and each key gets its interpretation kind from the
// "<key>Type" companion or, failing that, from the field schema.
func Resolve(node *domain.Node, t NodeType, data map[string]any) *Inputs {
	in := &Inputs{
		NodeID:   node.ID,
		NodeType: node.Type,
		data:     make(map[string]any, len(data)),
		kinds:    make(map[string]string, len(data)),
	}
	for k, v := range data {
		in.data[k] = v
	}

	keys := make(map[string]bool, len(data)+len(t.Inputs))
	for k := range data {
		keys[k] = true
	}
	for k := range t.Inputs {
		keys[k] = true
	}

	for k := range keys {
		if strings.HasSuffix(k, domain.TypeSuffix) && keys[strings.TrimSuffix(k, domain.TypeSuffix)] {
			continue
		}
		kind := kindOf(in.data[k+domain.TypeSuffix], t.Inputs[k])
		in.kinds[k] = kind
		if kind == domain.KindVariable {
			if v, ok := in.data[k]; ok {
				in.data[k] = normalize.SanitizeIdentifier(toString(v))
			}
		}
	}
	return in
}

func kindOf(explicit any, field InputField) string {
	if s, ok := explicit.(string); ok {
		switch s {
		case domain.KindText, domain.KindVariable, domain.KindNumber, domain.KindBoolean:
			return s
		}
	}
	switch {
	case field.Input == InputCheckbox, field.Type == ValueBoolean:
		return domain.KindBoolean
	case field.Type == ValueNumber:
		return domain.KindNumber
	default:
		return domain.KindText
	}
}

// Raw returns the (sanitized) value under key as a string.
func (in *Inputs) Raw(key string) string {
	return toString(in.data[key])
}

// Kind returns the interpretation kind of key.
func (in *Inputs) Kind(key string) string {
	if k, ok := in.kinds[key]; ok {
		return k
	}
	return domain.KindText
}

// Token returns the normalized Lua token of key.
func (in *Inputs) Token(key string) string {
	return normalize.Normalize(in.Raw(key), in.Kind(key))
}

// Bool reports whether key holds a true value ("true" string or bool).
func (in *Inputs) Bool(key string) bool {
	switch v := in.data[key].(type) {
	case bool:
		return v
	case string:
		return normalize.TrimQuotes(v) == "true"
	}
	return false
}

// Set overrides a value, e.g. a freshly provisioned identifier.
func (in *Inputs) Set(key string, value any) {
	in.data[key] = value
}

// Data returns a copy of the resolved values.
func (in *Inputs) Data() map[string]any {
	out := make(map[string]any, len(in.data))
	for k, v := range in.data {
		out[k] = v
	}
	return out
}

// Decode fills target (a pointer to a struct with mapstructure tags) from the
// resolved values. Scalars are converted loosely ("10" into an int field).
func (in *Inputs) Decode(target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(in.data); err != nil {
		return fmt.Errorf("failed to decode %s inputs: %w", in.NodeType, err)
	}
	return nil
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
