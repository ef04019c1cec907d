// Package analysis characterises double pendulum trajectories.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [PowerSpectrum], [DominantFrequency]: spectral content of a series
//   - [PhasePortrait]: 2D projection of phase space
//   - [PoincareSection]: points where a component crosses a level
//   - [Bifurcation]: Poincaré values swept over one parameter
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(ctx, solver, x0, p, 0.01, 50, 1e-8)
//	if err == nil && lambda > 0 {
//	    // chaotic
//	}
package analysis
