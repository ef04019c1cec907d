package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/dpendulum/internal/dynamo"
)

func TestRK4Accuracy(t *testing.T) {
	dyn := &harmonicOscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0, 0.0, 1.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	tEnd := float64(steps) * dt
	want := dynamo.State{math.Cos(tEnd), -math.Sin(tEnd), math.Sin(tEnd), math.Cos(tEnd)}
	for i := range x {
		if math.Abs(x[i]-want[i]) > 1e-8 {
			t.Errorf("component %d: got %.10f, expected %.10f", i, x[i], want[i])
		}
	}
}

func TestEulerFirstOrder(t *testing.T) {
	dyn := &harmonicOscillator{}
	integ := NewEuler()

	x := integ.Step(dyn, dynamo.State{1, 0, 0, 0}, 0, 0.1)
	if x != (dynamo.State{1, -0.1, 0, 0}) {
		t.Errorf("unexpected euler step %v", x)
	}

	// Explicit Euler pumps energy into an oscillator.
	x = dynamo.State{1, 0, 0, 0}
	for i := 0; i < 100; i++ {
		x = integ.Step(dyn, x, 0, 0.01)
	}
	if dyn.Energy(x) <= 0.5 {
		t.Errorf("expected euler energy growth, got %f", dyn.Energy(x))
	}
}
