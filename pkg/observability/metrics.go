package observability

import (
	"context"
	"errors"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "aoflow"

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	Generated       *prometheus.CounterVec
	GeneratorErrors *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
	Provisions      *prometheus.CounterVec
	Executions      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Generated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "fragments_generated_total",
				Help:      "Total number of node fragments generated",
			},
			[]string{"node_type"},
		),
		GeneratorErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "generator_errors_total",
				Help:      "Total number of generators that failed or panicked",
			},
			[]string{"node_type"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "generation_duration_seconds",
				Help:      "Duration of node generation, nested nodes included",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"node_type"},
		),
		Provisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "provisions_total",
				Help:      "Total number of provisioning outcomes",
			},
			[]string{"node_type", "result"},
		),
		Executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "executions_total",
				Help:      "Total number of fragment runs",
			},
			[]string{"result"},
		),
	}

	for _, c := range []prometheus.Collector{m.Generated, m.GeneratorErrors, m.Duration, m.Provisions, m.Executions} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, err
			}
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeGenerated: func(_ context.Context, e *domain.GenerationEvent) {
			m.Generated.WithLabelValues(e.NodeType).Inc()
			m.Duration.WithLabelValues(e.NodeType).Observe(e.Duration.Seconds())
		},
		OnGeneratorError: func(_ context.Context, e *domain.GenerationEvent) {
			m.GeneratorErrors.WithLabelValues(e.NodeType).Inc()
		},
		OnProvisioned: func(_ context.Context, e *domain.ProvisionEvent) {
			m.Provisions.WithLabelValues(e.NodeType, "ok").Inc()
		},
		OnProvisionFailed: func(_ context.Context, e *domain.ProvisionEvent) {
			m.Provisions.WithLabelValues(e.NodeType, "failed").Inc()
		},
		OnExecuted: func(_ context.Context, e *domain.ExecutionEvent) {
			result := "ok"
			if e.Error != "" {
				result = "failed"
			}
			m.Executions.WithLabelValues(result).Inc()
		},
	}
}
