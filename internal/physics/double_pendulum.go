package physics

import (
	"math"

	"github.com/san-kum/dpendulum/internal/dynamo"
)

// AngularAcceleration1 returns d²θ1/dt² from the Lagrangian equations of
// motion.
func AngularAcceleration1(x dynamo.State, p Params) float64 {
	theta1, omega1, theta2, omega2 := x[dynamo.Theta1], x[dynamo.Omega1], x[dynamo.Theta2], x[dynamo.Omega2]
	m1, m2, l1, l2, g := p.M1, p.M2, p.L1, p.L2, p.Gravity

	s, c := math.Sincos(theta2 - theta1)

	num := m2*l1*s*c*omega1*omega1 +
		m2*g*math.Sin(theta2)*c +
		m2*l2*s*omega2*omega2 -
		(m1+m2)*g*math.Sin(theta1)
	den := (m1+m2)*l1 - m2*l1*c*c

	return num / den
}

// AngularAcceleration2 returns d²θ2/dt² from the Lagrangian equations of
// motion.
func AngularAcceleration2(x dynamo.State, p Params) float64 {
	theta1, omega1, theta2, omega2 := x[dynamo.Theta1], x[dynamo.Omega1], x[dynamo.Theta2], x[dynamo.Omega2]
	m1, m2, l1, l2, g := p.M1, p.M2, p.L1, p.L2, p.Gravity

	s, c := math.Sincos(theta2 - theta1)

	num := (m1+m2)*(g*math.Sin(theta1)*c-l1*s*omega1*omega1-g*math.Sin(theta2)) -
		m2*l2*s*c*omega2*omega2
	den := (m1+m2)*l2 - m2*l2*c*c

	return num / den
}

// Derivatives is the right-hand side of dx/dt = f(x): velocities pass
// through, accelerations come from the equations of motion.
func Derivatives(x dynamo.State, p Params) dynamo.State {
	return dynamo.State{
		x[dynamo.Omega1],
		AngularAcceleration1(x, p),
		x[dynamo.Omega2],
		AngularAcceleration2(x, p),
	}
}

// TotalEnergy returns kinetic plus potential energy in joules.
func TotalEnergy(x dynamo.State, p Params) float64 {
	theta1, omega1, theta2, omega2 := x[dynamo.Theta1], x[dynamo.Omega1], x[dynamo.Theta2], x[dynamo.Omega2]
	m1, m2, l1, l2, g := p.M1, p.M2, p.L1, p.L2, p.Gravity

	v := -(m1+m2)*l1*g*math.Cos(theta1) - m2*l2*g*math.Cos(theta2)

	v1 := l1 * omega1
	v2 := l2 * omega2
	t := 0.5*m1*v1*v1 +
		0.5*m2*(v1*v1+v2*v2+2*l1*l2*omega1*omega2*math.Cos(theta1-theta2))

	return t + v
}

// TotalEnergies evaluates TotalEnergy for every state.
func TotalEnergies(xs []dynamo.State, p Params) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = TotalEnergy(x, p)
	}
	return out
}

// Position holds the bob coordinates relative to the pivot, y pointing down.
type Position struct {
	X1, Y1 float64
	X2, Y2 float64
}

// ToCartesian converts the two rod angles to bob positions.
func ToCartesian(theta1, theta2 float64, p Params) Position {
	x1 := p.L1 * math.Sin(theta1)
	y1 := p.L1 * math.Cos(theta1)
	return Position{
		X1: x1,
		Y1: y1,
		X2: x1 + p.L2*math.Sin(theta2),
		Y2: y1 + p.L2*math.Cos(theta2),
	}
}

// DoublePendulum exposes the model as a dynamo.System.
type DoublePendulum struct {
	params Params
}

func NewDoublePendulum(p Params) *DoublePendulum {
	return &DoublePendulum{params: p}
}

func (d *DoublePendulum) Params() Params { return d.params }

func (d *DoublePendulum) StateDim() int { return dynamo.Dim }

func (d *DoublePendulum) Derive(x dynamo.State, _ float64) dynamo.State {
	return Derivatives(x, d.params)
}

func (d *DoublePendulum) Energy(x dynamo.State) float64 {
	return TotalEnergy(x, d.params)
}

// Position returns the Cartesian bob positions for x.
func (d *DoublePendulum) Position(x dynamo.State) Position {
	return ToCartesian(x[dynamo.Theta1], x[dynamo.Theta2], d.params)
}
