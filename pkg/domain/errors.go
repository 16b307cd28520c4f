package domain

import (
	"errors"
	"fmt"
)

// ErrNodeNotFound is returned when a requested node id is absent from the snapshot.
var ErrNodeNotFound = errors.New("node not found")

// ErrGraphNotFound is returned when a named graph cannot be found in a store.
var ErrGraphNotFound = errors.New("graph not found")

// ErrNoProvisioner is returned when a node needs provisioning but no
// provisioner was configured.
var ErrNoProvisioner = errors.New("no provisioner configured")

// ErrNoEditor is returned by visual-editor backed nodes when no converter is configured.
var ErrNoEditor = errors.New("no visual editor converter configured")

// GeneratorError wraps a failure raised by a node type generator.
type GeneratorError struct {
	NodeID string
	Err    error
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("generator for node %q failed: %v", e.NodeID, e.Err)
}

func (e *GeneratorError) Unwrap() error { return e.Err }

// ProvisionError reports that the remote identifier of a node could not be
// provisioned. The node's generator never ran.
type ProvisionError struct {
	NodeID   string
	NodeType string
	Attempts int
	Err      error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provisioning node %q (%s) failed after %d attempt(s): %v", e.NodeID, e.NodeType, e.Attempts, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// NodeNotFound returns ErrNodeNotFound annotated with the missing id.
func NodeNotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
}
