package metrics

import "github.com/san-kum/dpendulum/internal/dynamo"

// Metric accumulates a scalar while a run is stepped. Every Metric is a
// sim.Observer.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}
