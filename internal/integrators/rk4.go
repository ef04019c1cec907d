package integrators

import "github.com/san-kum/dpendulum/internal/dynamo"

// RK4 is the classic fixed-step fourth-order Runge-Kutta method.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	k1 := dyn.Derive(x, t)
	k2 := dyn.Derive(x.AddScaled(dt*0.5, k1), t+dt*0.5)
	k3 := dyn.Derive(x.AddScaled(dt*0.5, k2), t+dt*0.5)
	k4 := dyn.Derive(x.AddScaled(dt, k3), t+dt)

	dt6 := dt / 6.0
	var result dynamo.State
	for i := range x {
		result[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result
}
