package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/aoflow/pkg/domain"
)

// LogHooks logs every lifecycle event. Generation is logged at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeGenerated: func(ctx context.Context, e *domain.GenerationEvent) {
			logger.DebugContext(ctx, "node_generated", "node_id", e.NodeID, "type", e.NodeType, "bytes", e.Bytes, "duration", e.Duration)
		},
		OnGeneratorError: func(ctx context.Context, e *domain.GenerationEvent) {
			logger.WarnContext(ctx, "generator_error", "node_id", e.NodeID, "type", e.NodeType, "err", e.Err)
		},
		OnProvisioned: func(ctx context.Context, e *domain.ProvisionEvent) {
			logger.InfoContext(ctx, "provisioned", "node_id", e.NodeID, "identifier", e.Identifier, "attempts", e.Attempts)
		},
		OnProvisionFailed: func(ctx context.Context, e *domain.ProvisionEvent) {
			logger.ErrorContext(ctx, "provision_failed", "node_id", e.NodeID, "attempts", e.Attempts, "err", e.Err)
		},
		OnExecuted: func(ctx context.Context, e *domain.ExecutionEvent) {
			logger.InfoContext(ctx, "executed", "node_id", e.NodeID, "run_id", e.RunID, "error", e.Error)
		},
	}
}

// Combine fans every event out to all hook sets, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, s := range sets {
		out.OnNodeGenerated = chain(out.OnNodeGenerated, s.OnNodeGenerated)
		out.OnGeneratorError = chain(out.OnGeneratorError, s.OnGeneratorError)
		out.OnProvisioned = chain(out.OnProvisioned, s.OnProvisioned)
		out.OnProvisionFailed = chain(out.OnProvisionFailed, s.OnProvisionFailed)
		out.OnExecuted = chain(out.OnExecuted, s.OnExecuted)
	}
	return out
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
