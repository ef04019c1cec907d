package integrators

import (
	"testing"

	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/physics"
)

func benchStepper(b *testing.B, s dynamo.Stepper) {
	dyn := physics.NewDoublePendulum(physics.DefaultParams())
	x := dynamo.NewState(2.0, 0.0, 2.5, 0.0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = s.Step(dyn, x, 0, 0.001)
	}
}

func BenchmarkEuler(b *testing.B) { benchStepper(b, NewEuler()) }
func BenchmarkRK4(b *testing.B)   { benchStepper(b, NewRK4()) }
func BenchmarkRK45(b *testing.B)  { benchStepper(b, NewRK45()) }

func BenchmarkRK45_Adaptive(b *testing.B) {
	integrator := NewRK45()
	dyn := physics.NewDoublePendulum(physics.DefaultParams())
	x := dynamo.NewState(2.0, 0.0, 2.5, 0.0)
	tol := dynamo.DefaultTolerance()
	dt := 0.001

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		next, dtNext, err := integrator.StepAdaptive(dyn, x, 0, dt, tol)
		if err == nil {
			x = next
		}
		dt = min(dtNext, 0.01)
	}
}
