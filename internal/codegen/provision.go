package codegen

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/registry"
)

const provisionLockTTL = 30 * time.Second

// provision returns the remote identifier of node, creating it through the
// provisioner when the data holds none or asks for a respawn.
//
// An identifier in the data always wins unless a respawn is asked for. A
// respawn is honored once per engine lifetime: the new identifier is
// remembered and reused until Forget is called.
func (e *Engine) provision(ctx context.Context, node *domain.Node, nt registry.NodeType, data map[string]any) (string, error) {
	spec := nt.Provision
	respawn := isTrue(data[spec.RespawnKey])

	if !respawn {
		if id := str(data[spec.IdentifierKey]); id != "" {
			return id, nil
		}
	}
	if id, ok := e.Identifier(node.ID); ok {
		return id, nil
	}

	if e.provisioner == nil {
		return "", e.provisionFailed(ctx, node, 0, domain.ErrNoProvisioner)
	}

	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, "provision:"+node.ID, provisionLockTTL)
		if err != nil {
			return "", e.provisionFailed(ctx, node, 0, fmt.Errorf("failed to acquire provisioning lock: %w", err))
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				e.logger.Warn("Failed to release provisioning lock", "node_id", node.ID, "err", err)
			}
		}()
	}

	target := *node
	target.Data = data

	policy := e.retry
	if spec.Retry != nil {
		policy = spec.Retry
	}
	attempts := policy.Attempts()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		id, err := e.provisioner.Provision(ctx, &target)
		if err == nil && id != "" {
			e.identifiers.Store(node.ID, id)
			e.logger.Info("Provisioned node", "node_id", node.ID, "node_type", node.Type, "identifier", id, "attempts", attempt)
			if e.hooks.OnProvisioned != nil {
				e.hooks.OnProvisioned(ctx, &domain.ProvisionEvent{
					EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventProvisioned},
					NodeID:     node.ID,
					NodeType:   node.Type,
					Identifier: id,
					Attempts:   attempt,
				})
			}
			return id, nil
		}
		if err == nil {
			err = fmt.Errorf("provisioner returned an empty identifier")
		}
		lastErr = err
		e.logger.Warn("Provisioning attempt failed", "node_id", node.ID, "attempt", attempt, "max_attempts", attempts, "err", err)

		if attempt == attempts {
			break
		}
		if err := sleep(ctx, policy.Backoff(attempt)); err != nil {
			return "", e.provisionFailed(ctx, node, attempt, err)
		}
	}
	return "", e.provisionFailed(ctx, node, attempts, lastErr)
}

func (e *Engine) provisionFailed(ctx context.Context, node *domain.Node, attempts int, err error) error {
	perr := &domain.ProvisionError{
		NodeID:   node.ID,
		NodeType: node.Type,
		Attempts: attempts,
		Err:      err,
	}
	e.logger.Error("Provisioning failed", "node_id", node.ID, "node_type", node.Type, "err", err)
	if e.hooks.OnProvisionFailed != nil {
		e.hooks.OnProvisionFailed(ctx, &domain.ProvisionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventProvisionFailed},
			NodeID:    node.ID,
			NodeType:  node.Type,
			Attempts:  attempts,
			Err:       err,
		})
	}
	return perr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isTrue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	}
	return false
}

func str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
