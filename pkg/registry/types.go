// Package registry holds the declarative per-node-type contract: input field
// schemas, generator functions, output edge styling and provisioning needs.
package registry

import (
	"context"
	"strings"
	"time"
)

// Input widgets.
const (
	InputNormal   = "normal"
	InputDropdown = "dropdown"
	InputCheckbox = "checkbox"
)

// Value types of an input field.
const (
	ValueText    = "text"
	ValueNumber  = "number"
	ValueBoolean = "boolean"
)

// EmptyBodyComment fills the body slot of a block node with nothing nested in it.
const EmptyBodyComment = "-- Add nodes to the graph to add code here"

// Preset is a quick-pick value, pre-tagged with its interpretation kind.
type Preset struct {
	Value string `json:"value" yaml:"value"`
	Kind  string `json:"kind" yaml:"kind"`
}

// InputField describes one configurable input of a node type.
type InputField struct {
	Label              string   `json:"label" yaml:"label"`
	Input              string   `json:"input" yaml:"input"`
	Type               string   `json:"type" yaml:"type"`
	Placeholder        string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	ShowVariableToggle bool     `json:"showVariableToggle,omitempty" yaml:"showVariableToggle,omitempty"`
	Values             []Preset `json:"values,omitempty" yaml:"values,omitempty"`
}

// Template is the raw output of a generator. Block templates own exactly one
// body slot between Head and Tail; the engine fills it with nested fragments.
type Template struct {
	Head  string
	Tail  string
	Block bool
}

// Code returns a template without a body slot.
func Code(code string) Template {
	return Template{Head: code}
}

// Block returns a template whose body goes between head and tail.
func Block(head, tail string) Template {
	return Template{Head: head, Tail: tail, Block: true}
}

// Render fills the body slot. Non-block templates ignore body.
func (t Template) Render(body string) string {
	if !t.Block {
		return t.Head
	}
	body = strings.Trim(body, "\n")
	if strings.TrimSpace(body) == "" {
		body = EmptyBodyComment
	}
	return t.Head + "\n" + body + "\n" + t.Tail
}

// GeneratorFunc produces the raw Lua for a node from its resolved inputs.
// It may block on collaborators (e.g. the visual editor converter).
type GeneratorFunc func(ctx context.Context, in *Inputs) (Template, error)

// ProvisionSpec declares that nodes of a type reference a remote identifier
// which must exist before code can be generated.
type ProvisionSpec struct {
	// IdentifierKey is the data key holding a previously provisioned identifier.
	IdentifierKey string
	// RespawnKey is the data key of the flag forcing a new provisioning.
	RespawnKey string
	// Retry overrides the engine default retry policy for this type.
	Retry *RetryPolicy
}

// NodeType bundles the configuration schema and code generator of a node type.
type NodeType struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Inputs map[string]InputField `json:"inputs,omitempty"`
	// Order lists input keys in display order.
	Order []string `json:"order,omitempty"`

	Generate GeneratorFunc `json:"-"`

	// OutputType is the edge type used when this node is an edge source, or
	// domain.OutputTypeInherit.
	OutputType string `json:"outputType"`

	// Block marks block-scoped types (conditionals, loops, handlers) whose
	// outgoing edges may lead into a nested body.
	Block bool `json:"block"`

	Provision *ProvisionSpec `json:"-"`
}

// RetryPolicy bounds provisioning retries with exponential backoff.
type RetryPolicy struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay" yaml:"delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
}

// DefaultRetryPolicy makes a single attempt.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{MaxAttempts: 1}
}

// Attempts returns the number of tries, at least one.
func (p *RetryPolicy) Attempts() int {
	if p == nil || p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Backoff returns the wait before the given retry (attempt >= 1).
func (p *RetryPolicy) Backoff(attempt int) time.Duration {
	if p == nil || attempt < 1 {
		return 0
	}
	delay := p.Delay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}
