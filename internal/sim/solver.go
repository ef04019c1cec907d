package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/integrators"
	"github.com/san-kum/dpendulum/internal/physics"
)

const (
	DefaultMinStep     = 1e-12
	DefaultMaxSubsteps = 100000

	// MaxPoints bounds the number of grid intervals of one run.
	MaxPoints = 100_000_000

	// preallocPoints caps the trajectory capacity reserved up front.
	preallocPoints = 1 << 20

	// gridSlack absorbs rounding in tMax/dt so that exact multiples keep
	// their final grid point.
	gridSlack = 1e-9
)

// Observer is notified of every grid point as it is produced.
type Observer interface {
	Observe(x dynamo.State, t float64)
}

// Solver integrates the double pendulum on a uniform time grid.
type Solver struct {
	stepper     dynamo.Stepper
	tol         dynamo.Tolerance
	minStep     float64
	maxSubsteps int
	logger      *slog.Logger
	observers   []Observer
}

type Option func(*Solver)

func WithTolerance(tol dynamo.Tolerance) Option {
	return func(s *Solver) { s.tol = tol }
}

// WithMinStep sets the substep size below which an adaptive run fails.
func WithMinStep(h float64) Option {
	return func(s *Solver) { s.minStep = h }
}

// WithMaxSubsteps bounds the substeps taken between two grid points.
func WithMaxSubsteps(n int) Option {
	return func(s *Solver) { s.maxSubsteps = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) { s.logger = l }
}

func NewSolver(stepper dynamo.Stepper, opts ...Option) *Solver {
	s := &Solver{
		stepper:     stepper,
		tol:         dynamo.DefaultTolerance(),
		minStep:     DefaultMinStep,
		maxSubsteps: DefaultMaxSubsteps,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Clone returns a solver with the same configuration and no observers. The
// stepper is shared; see dynamo.Stepper.
func (s *Solver) Clone() *Solver {
	c := *s
	c.observers = nil
	return &c
}

// Integrate runs the default adaptive solver.
func Integrate(x0 dynamo.State, p physics.Params, tMax, dt float64) (*Trajectory, error) {
	return NewSolver(integrators.NewRK45()).Run(context.Background(), x0, p, tMax, dt)
}

// GridSize returns the index of the last grid point, floor(tMax/dt).
func GridSize(tMax, dt float64) int {
	return int(math.Floor(tMax/dt + gridSlack))
}

// Validate checks the inputs of Run without integrating.
func Validate(x0 dynamo.State, p physics.Params, tMax, dt float64) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !(tMax > 0) || math.IsInf(tMax, 0) {
		return fmt.Errorf("tMax must be positive and finite, got %g: %w", tMax, dynamo.ErrParameterBounds)
	}
	if !(dt > 0) {
		return fmt.Errorf("dt must be positive, got %g: %w", dt, dynamo.ErrParameterBounds)
	}
	if dt > tMax {
		return fmt.Errorf("dt (%g) must not exceed tMax (%g): %w", dt, tMax, dynamo.ErrParameterBounds)
	}
	if steps := tMax / dt; math.IsInf(steps, 0) || steps > MaxPoints {
		return fmt.Errorf("tMax/dt = %g exceeds %d grid points: %w", steps, MaxPoints, dynamo.ErrParameterBounds)
	}
	if !x0.IsValid() {
		return fmt.Errorf("initial state %v: %w", x0, dynamo.ErrParameterBounds)
	}
	return nil
}

func (s *Solver) validate() error {
	if s.stepper == nil {
		return fmt.Errorf("solver has no stepper: %w", dynamo.ErrParameterBounds)
	}
	if _, ok := s.stepper.(dynamo.AdaptiveStepper); ok {
		if err := s.tol.Validate(); err != nil {
			return err
		}
	}
	if !(s.minStep > 0) || s.maxSubsteps < 1 {
		return fmt.Errorf("minStep=%g maxSubsteps=%d: %w", s.minStep, s.maxSubsteps, dynamo.ErrParameterBounds)
	}
	return nil
}

// Run integrates from x0 at t=0 to tMax, recording the state at t_i = i*dt
// for i = 0..GridSize(tMax, dt). On failure the returned trajectory holds
// the points computed so far.
func (s *Solver) Run(ctx context.Context, x0 dynamo.State, p physics.Params, tMax, dt float64) (*Trajectory, error) {
	if err := Validate(x0, p, tMax, dt); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	n := GridSize(tMax, dt)
	dyn := physics.NewDoublePendulum(p)
	tr := newTrajectory(min(n+1, preallocPoints))

	s.logger.Debug("integration started",
		slog.Int("points", n+1),
		slog.Float64("t_max", tMax),
		slog.Float64("dt", dt),
		slog.String("initial", x0.String()),
	)

	x := x0
	tr.append(0, x)
	s.notify(x, 0)

	h := dt
	for i := 1; i <= n; i++ {
		t0 := float64(i-1) * dt
		t1 := float64(i) * dt

		if err := ctx.Err(); err != nil {
			return tr, &dynamo.SimulationError{Step: i, Time: t0, State: x, Wrapped: fmt.Errorf("%w: %w", dynamo.ErrCanceled, err)}
		}

		next, hNext, err := s.advance(dyn, x, t0, t1, h, &tr.Stats)
		if err != nil {
			s.logger.Debug("integration failed", slog.Int("step", i), slog.Float64("t", t0), slog.Any("error", err))
			return tr, &dynamo.SimulationError{Step: i, Time: t0, State: x, Wrapped: err}
		}
		if !next.IsValid() {
			return tr, &dynamo.SimulationError{Step: i, Time: t1, State: x, Wrapped: dynamo.ErrInvalidState}
		}

		x, h = next, hNext
		tr.append(t1, x)
		s.notify(x, t1)
	}

	s.logger.Debug("integration finished",
		slog.Int("points", tr.Len()),
		slog.Int("accepted", tr.Stats.Accepted),
		slog.Int("rejected", tr.Stats.Rejected),
	)

	return tr, nil
}

func (s *Solver) notify(x dynamo.State, t float64) {
	for _, o := range s.observers {
		o.Observe(x, t)
	}
}

// advance moves x from t0 to t1. h is the substep size carried over from
// the previous interval; the returned size seeds the next one.
func (s *Solver) advance(dyn dynamo.System, x dynamo.State, t0, t1, h float64, stats *Stats) (dynamo.State, float64, error) {
	adaptive, ok := s.stepper.(dynamo.AdaptiveStepper)
	if !ok {
		stats.Accepted++
		return s.stepper.Step(dyn, x, t0, t1-t0), h, nil
	}

	t := t0
	for sub := 0; sub < s.maxSubsteps; sub++ {
		remaining := t1 - t
		step, last := h, false
		if step >= remaining*(1-gridSlack) {
			step, last = remaining, true
		}

		next, hNext, err := adaptive.StepAdaptive(dyn, x, t, step, s.tol)
		if errors.Is(err, dynamo.ErrStepRejected) {
			stats.Rejected++
			h = hNext
			if h < s.minStep {
				return x, h, fmt.Errorf("substep %g at t=%g: %w", h, t, dynamo.ErrStepTooSmall)
			}
			continue
		}
		if err != nil {
			return x, h, err
		}

		stats.Accepted++
		x = next
		if last {
			// A step shortened to hit the grid says little about the
			// natural step size; only let it grow h.
			if step == h || hNext > h {
				h = hNext
			}
			return x, h, nil
		}
		t += step
		h = hNext
	}

	return x, h, fmt.Errorf("more than %d substeps between t=%g and t=%g: %w", s.maxSubsteps, t0, t1, dynamo.ErrStepTooSmall)
}
