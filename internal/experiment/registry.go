package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/metrics"
	"github.com/san-kum/dpendulum/internal/physics"
)

// Registry maps metric names to constructors.
type Registry struct {
	metrics  map[string]func(physics.Params) metrics.Metric
	defaults []string
}

// DefaultRegistry holds the built-in metrics.
var DefaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(physics.Params) metrics.Metric),
	}

	r.Register("energy_drift", func(p physics.Params) metrics.Metric {
		return metrics.NewEnergyDrift(physics.NewDoublePendulum(p))
	})
	r.Register("flips_inner", func(physics.Params) metrics.Metric { return metrics.NewFlips(dynamo.Theta1) })
	r.Register("flips_outer", func(physics.Params) metrics.Metric { return metrics.NewFlips(dynamo.Theta2) })

	r.defaults = []string{"energy_drift", "flips_inner", "flips_outer"}
	return r
}

func (r *Registry) Register(name string, fn func(physics.Params) metrics.Metric) {
	r.metrics[name] = fn
}

func (r *Registry) GetMetric(name string, p physics.Params) (metrics.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(p), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh instances of the metrics every run records.
func (r *Registry) DefaultMetrics(p physics.Params) []metrics.Metric {
	ms := make([]metrics.Metric, 0, len(r.defaults))
	for _, name := range r.defaults {
		ms = append(ms, r.metrics[name](p))
	}
	return ms
}
