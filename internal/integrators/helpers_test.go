package integrators

import "github.com/san-kum/dpendulum/internal/dynamo"

// harmonicOscillator runs two independent unit oscillators in the
// (θ1, ω1) and (θ2, ω2) slots.
type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return dynamo.Dim }

func (h *harmonicOscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0], x[3], -x[2]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1] + x[2]*x[2] + x[3]*x[3])
}
