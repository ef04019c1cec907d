package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/physics"
	"github.com/san-kum/dpendulum/internal/sim"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Algorithm:
// 1. Start a second trajectory d0 away from x0 (along θ1)
// 2. Advance both by dt and measure their separation d
// 3. Accumulate ln(d/d0) and pull the companion back to distance d0
// 4. λ ≈ Σ ln(d/d0) / tMax
func LyapunovExponent(ctx context.Context, solver *sim.Solver, x0 dynamo.State, p physics.Params, dt, tMax, d0 float64) (float64, error) {
	if !(d0 > 0) {
		return 0, fmt.Errorf("perturbation must be positive, got %g: %w", d0, dynamo.ErrParameterBounds)
	}
	if err := sim.Validate(x0, p, tMax, dt); err != nil {
		return 0, err
	}

	x := x0
	xp := x0
	xp[dynamo.Theta1] += d0

	n := sim.GridSize(tMax, dt)
	sumLog := 0.0

	for i := 0; i < n; i++ {
		var err error
		if x, err = advance(ctx, solver, x, p, dt); err != nil {
			return 0, err
		}
		if xp, err = advance(ctx, solver, xp, p, dt); err != nil {
			return 0, err
		}

		sep := xp.Sub(x).Norm()
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / d0)

		// Renormalize to keep the separation in the linear regime
		xp = x.AddScaled(d0/sep, xp.Sub(x))
	}

	return sumLog / (float64(n) * dt), nil
}

// advance integrates x over one interval of length dt.
func advance(ctx context.Context, solver *sim.Solver, x dynamo.State, p physics.Params, dt float64) (dynamo.State, error) {
	tr, err := solver.Run(ctx, x, p, dt, dt)
	if err != nil {
		return x, err
	}
	_, last := tr.Last()
	return last, nil
}
