package dynamo

import (
	"fmt"
	"math"
)

// Indices of the components of a State.
const (
	Theta1 = iota
	Omega1
	Theta2
	Omega2
)

// Dim is the number of components in a State.
const Dim = 4

// State is the instantaneous configuration of the double pendulum:
// angle and angular velocity of rod 1, then of rod 2. Angles are measured
// from the downward vertical in radians.
type State [Dim]float64

// NewState builds a State from its components.
func NewState(theta1, omega1, theta2, omega2 float64) State {
	return State{theta1, omega1, theta2, omega2}
}

func (s State) Theta1() float64 { return s[Theta1] }
func (s State) Omega1() float64 { return s[Omega1] }
func (s State) Theta2() float64 { return s[Theta2] }
func (s State) Omega2() float64 { return s[Omega2] }

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	for i := range s {
		s[i] += other[i]
	}
	return s
}

func (s State) Sub(other State) State {
	for i := range s {
		s[i] -= other[i]
	}
	return s
}

func (s State) Scale(factor float64) State {
	for i := range s {
		s[i] *= factor
	}
	return s
}

// AddScaled returns s + alpha*other.
func (s State) AddScaled(alpha float64, other State) State {
	for i := range s {
		s[i] += alpha * other[i]
	}
	return s
}

func (s State) String() string {
	return fmt.Sprintf("(θ1=%.6f, ω1=%.6f, θ2=%.6f, ω2=%.6f)", s[Theta1], s[Omega1], s[Theta2], s[Omega2])
}

// System is a first-order ODE system dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Hamiltonian systems report a conserved total energy.
type Hamiltonian interface {
	Energy(x State) float64
}

// Stepper advances a system by exactly one step of size dt. Steppers keep
// no state between calls: cloned solvers share one stepper across
// goroutines.
type Stepper interface {
	Step(dyn System, x State, t, dt float64) State
}

// AdaptiveStepper estimates its local error. StepAdaptive returns the new
// state and the step size suggested for the next attempt. When the error
// exceeds tol it returns ErrStepRejected and the input state unchanged.
type AdaptiveStepper interface {
	Stepper
	StepAdaptive(dyn System, x State, t, dt float64, tol Tolerance) (State, float64, error)
}

// Tolerance bounds the local error of an adaptive step. A component passes
// when |err_i| <= Abs + Rel*max(|x_i|, |x_i'|).
type Tolerance struct {
	Rel float64 `json:"rel"`
	Abs float64 `json:"abs"`
}

func DefaultTolerance() Tolerance {
	return Tolerance{Rel: 1e-10, Abs: 1e-10}
}

func (t Tolerance) Validate() error {
	if !(t.Rel > 0) && !(t.Abs > 0) {
		return fmt.Errorf("tolerance must have a positive component (rel=%g, abs=%g): %w", t.Rel, t.Abs, ErrParameterBounds)
	}
	if t.Rel < 0 || t.Abs < 0 || math.IsNaN(t.Rel) || math.IsNaN(t.Abs) {
		return fmt.Errorf("tolerance components must be non-negative (rel=%g, abs=%g): %w", t.Rel, t.Abs, ErrParameterBounds)
	}
	return nil
}
