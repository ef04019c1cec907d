// Package sim integrates the double pendulum over a fixed time grid.
//
// [Solver.Run] validates its inputs, advances the state from grid point to
// grid point with a [dynamo.Stepper] and returns the resulting [Trajectory].
// Adaptive steppers take as many error-controlled substeps as needed between
// two grid points; fixed steppers take exactly one.
//
// Numerical failure is reported as a [*dynamo.SimulationError] wrapping
// [dynamo.ErrStepTooSmall] or [dynamo.ErrInvalidState]. The trajectory
// returned alongside such an error holds only the finite prefix computed
// before the failure, so callers can truncate instead of aborting.
//
// A Trajectory is immutable once returned and may be read concurrently.
// [Ensemble] runs independent simulations in parallel.
package sim
