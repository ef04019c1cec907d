// Package dynamo provides core simulation primitives for the double pendulum.
//
// The package defines the fundamental types shared by the dynamics model,
// the steppers and the grid integrator:
//
//   - [State]: the 4-component pendulum state (θ1, ω1, θ2, ω2)
//   - [System]: interface for first-order ODE systems (dX/dt = f(X, t))
//   - [Hamiltonian]: systems that can report their total energy
//   - [Stepper]: single-step numerical integrator
//   - [AdaptiveStepper]: error-controlled single-step integrator
//
// # Example
//
//	dyn := physics.NewDoublePendulum(physics.DefaultParams())
//	step := integrators.NewRK45()
//	next, dtNext, err := step.StepAdaptive(dyn, x, 0, 0.01, dynamo.DefaultTolerance())
//
// # Thread Safety
//
// State is a value type and safe to share. Steppers keep scratch buffers
// and must not be shared between goroutines; give every run its own.
package dynamo
