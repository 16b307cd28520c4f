/*
Package observability turns compiler lifecycle hooks into Prometheus metrics
and structured logs.

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Combine(metrics.Hooks(), observability.LogHooks(logger))
	compiler, _ := aoflow.New("graph.json", aoflow.WithLifecycleHooks(hooks))
*/
package observability
