// Package physics implements the equations of motion of the planar double
// pendulum: two point masses on massless rigid rods swinging in a uniform
// gravity field.
//
// The free functions are the model itself:
//
//   - [AngularAcceleration1], [AngularAcceleration2]: Lagrangian accelerations
//   - [Derivatives]: right-hand side of the first-order ODE system
//   - [TotalEnergy], [TotalEnergies]: mechanical energy of one or many states
//   - [ToCartesian]: bob positions relative to the pivot
//
// [DoublePendulum] adapts them to [dynamo.System] and [dynamo.Hamiltonian]
// so the integrators can drive the model without knowing about it.
//
// # Conventions
//
// Angles are measured from the downward vertical. The pivot is the zero of
// potential energy, so a pendulum hanging at rest has the minimum (negative)
// energy. Cartesian y grows downwards from the pivot.
package physics
