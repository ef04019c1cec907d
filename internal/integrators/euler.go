package integrators

import "github.com/san-kum/dpendulum/internal/dynamo"

// Euler is the explicit first-order method. It drifts quickly on the
// double pendulum and exists as a baseline for integrator comparisons.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return x.AddScaled(dt, dyn.Derive(x, t))
}
