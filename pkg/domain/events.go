package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeGenerated   EventType = "node_generated"
	EventGeneratorError  EventType = "generator_error"
	EventProvisioned     EventType = "provisioned"
	EventProvisionFailed EventType = "provision_failed"
	EventExecuted        EventType = "executed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// GenerationEvent describes the code produced (or not) for one node.
type GenerationEvent struct {
	EventBase
	NodeID   string        `json:"node_id"`
	NodeType string        `json:"node_type"`
	Duration time.Duration `json:"duration"`
	Bytes    int           `json:"bytes"`
	Err      error         `json:"-"`
}

// ProvisionEvent describes a provisioning attempt.
type ProvisionEvent struct {
	EventBase
	NodeID     string `json:"node_id"`
	NodeType   string `json:"node_type"`
	Identifier string `json:"identifier,omitempty"`
	Attempts   int    `json:"attempts"`
	Err        error  `json:"-"`
}

// ExecutionEvent describes the remote run of a fragment.
type ExecutionEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	RunID  string `json:"run_id"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// LifecycleHooks defines callbacks for compiler observability.
type LifecycleHooks struct {
	OnNodeGenerated   func(context.Context, *GenerationEvent)
	OnGeneratorError  func(context.Context, *GenerationEvent)
	OnProvisioned     func(context.Context, *ProvisionEvent)
	OnProvisionFailed func(context.Context, *ProvisionEvent)
	OnExecuted        func(context.Context, *ExecutionEvent)
}
