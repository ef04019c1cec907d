package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/integrators"
	"github.com/san-kum/dpendulum/internal/physics"
)

type rejectingStepper struct{}

func (r *rejectingStepper) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return x
}

func (r *rejectingStepper) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt float64, tol dynamo.Tolerance) (dynamo.State, float64, error) {
	return x, dt / 2, dynamo.ErrStepRejected
}

// blowupStepper produces NaN once t reaches at.
type blowupStepper struct {
	at float64
}

func (b *blowupStepper) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	if t+dt >= b.at {
		return dynamo.State{math.NaN(), 0, 0, 0}
	}
	return x
}

type countingObserver struct {
	count int
	lastT float64
}

func (c *countingObserver) Observe(x dynamo.State, t float64) {
	c.count++
	c.lastT = t
}

func TestGridSize(t *testing.T) {
	tests := []struct {
		tMax, dt float64
		want     int
	}{
		{1.0, 0.1, 10},
		{1000, 0.01, 100000},
		{0.3, 0.1, 3},
		{1.05, 0.1, 10},
		{0.01, 0.01, 1},
	}

	for _, tt := range tests {
		if got := GridSize(tt.tMax, tt.dt); got != tt.want {
			t.Errorf("GridSize(%g, %g) = %d, want %d", tt.tMax, tt.dt, got, tt.want)
		}
	}
}

func TestSolverRun(t *testing.T) {
	s := NewSolver(integrators.NewRK45())
	x0 := dynamo.NewState(0.2, 0, 0.1, 0)

	tr, err := s.Run(context.Background(), x0, physics.DefaultParams(), 1.0, 0.1)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if tr.Len() != 11 {
		t.Errorf("expected 11 states, got %d", tr.Len())
	}
	if _, first := tr.First(); first != x0 {
		t.Errorf("first state %v differs from initial %v", first, x0)
	}
	if tr.Stats.Accepted < 10 {
		t.Errorf("expected at least one accepted step per interval, got %d", tr.Stats.Accepted)
	}
	if tr.FirstInvalid() != -1 {
		t.Errorf("unexpected invalid entry at %d", tr.FirstInvalid())
	}
}

func TestSolverFixedStepper(t *testing.T) {
	s := NewSolver(integrators.NewRK4())

	tr, err := s.Run(context.Background(), dynamo.NewState(0.5, 0, 0.5, 0), physics.DefaultParams(), 2.0, 0.01)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if tr.Stats.Accepted != 200 || tr.Stats.Rejected != 0 {
		t.Errorf("expected exactly one step per interval, got %+v", tr.Stats)
	}
}

func TestSolverInvalidInput(t *testing.T) {
	s := NewSolver(integrators.NewRK45())
	x0 := dynamo.NewState(1, 0, 1, 0)

	tests := []struct {
		name     string
		p        physics.Params
		tMax, dt float64
		x0       dynamo.State
	}{
		{"zero dt", physics.DefaultParams(), 1.0, 0, x0},
		{"negative dt", physics.DefaultParams(), 1.0, -0.1, x0},
		{"zero tMax", physics.DefaultParams(), 0, 0.1, x0},
		{"negative tMax", physics.DefaultParams(), -1.0, 0.1, x0},
		{"dt beyond tMax", physics.DefaultParams(), 1.0, 2.0, x0},
		{"zero l1", physics.NewParams(0, 1, 1, 1), 1.0, 0.1, x0},
		{"negative l2", physics.NewParams(1, -1, 1, 1), 1.0, 0.1, x0},
		{"zero m1", physics.NewParams(1, 1, 0, 1), 1.0, 0.1, x0},
		{"negative m2", physics.NewParams(1, 1, 1, -1), 1.0, 0.1, x0},
		{"NaN state", physics.DefaultParams(), 1.0, 0.1, dynamo.State{math.NaN(), 0, 0, 0}},
		{"grid too large", physics.DefaultParams(), 1e15, 0.01, x0},
		{"grid overflows", physics.DefaultParams(), 1e300, 1e-300, x0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := s.Run(context.Background(), tt.x0, tt.p, tt.tMax, tt.dt)
			if !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
			if tr != nil {
				t.Error("no trajectory expected for rejected input")
			}
		})
	}
}

func TestSolverStepTooSmall(t *testing.T) {
	s := NewSolver(&rejectingStepper{})

	tr, err := s.Run(context.Background(), dynamo.NewState(1, 0, 1, 0), physics.DefaultParams(), 1.0, 0.1)
	if !errors.Is(err, dynamo.ErrStepTooSmall) {
		t.Fatalf("expected ErrStepTooSmall, got %v", err)
	}

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected *SimulationError, got %T", err)
	}
	if simErr.Step != 1 {
		t.Errorf("expected failure at step 1, got %d", simErr.Step)
	}
	if tr == nil || tr.Len() != 1 {
		t.Errorf("expected the initial point only, got %v", tr)
	}
}

func TestSolverMaxSubsteps(t *testing.T) {
	s := NewSolver(integrators.NewRK45(), WithMaxSubsteps(1), WithTolerance(dynamo.Tolerance{Rel: 1e-14, Abs: 1e-14}))

	_, err := s.Run(context.Background(), dynamo.NewState(2, 3, 2.5, -4), physics.DefaultParams(), 2.0, 1.0)
	if !errors.Is(err, dynamo.ErrStepTooSmall) {
		t.Fatalf("expected ErrStepTooSmall, got %v", err)
	}
}

func TestSolverNonFiniteState(t *testing.T) {
	s := NewSolver(&blowupStepper{at: 0.45})

	tr, err := s.Run(context.Background(), dynamo.NewState(1, 0, 1, 0), physics.DefaultParams(), 1.0, 0.1)
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if tr.FirstInvalid() != -1 {
		t.Error("partial trajectory must not contain non-finite entries")
	}
	if tr.Len() != 5 {
		t.Errorf("expected 5 valid points before the blowup, got %d", tr.Len())
	}
}

func TestSolverCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr, err := NewSolver(integrators.NewRK45()).Run(ctx, dynamo.NewState(1, 0, 1, 0), physics.DefaultParams(), 1.0, 0.1)
	if !errors.Is(err, dynamo.ErrCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if tr.Len() != 1 {
		t.Errorf("expected only the initial point, got %d", tr.Len())
	}
}

func TestSolverObservers(t *testing.T) {
	s := NewSolver(integrators.NewRK45())
	obs := &countingObserver{}
	s.AddObserver(obs)

	if _, err := s.Run(context.Background(), dynamo.NewState(1, 0, 1, 0), physics.DefaultParams(), 1.0, 0.1); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if obs.count != 11 {
		t.Errorf("expected 11 observations, got %d", obs.count)
	}
	if math.Abs(obs.lastT-1.0) > 1e-12 {
		t.Errorf("expected last observation at t=1, got %g", obs.lastT)
	}

	if len(s.Clone().observers) != 0 {
		t.Error("Clone must drop observers")
	}
}

func TestTrajectoryHelpers(t *testing.T) {
	tr := FromRows([]Row{
		{T: 0, Theta1: 1, Omega1: 2, Theta2: 3, Omega2: 4},
		{T: 0.5, Theta1: 5, Omega1: 6, Theta2: 7, Omega2: 8},
		{T: 1.0, Theta1: math.Inf(1)},
	})

	if tr.Len() != 3 || tr.Dt() != 0.5 {
		t.Fatalf("unexpected trajectory len=%d dt=%g", tr.Len(), tr.Dt())
	}
	if idx := tr.FirstInvalid(); idx != 2 {
		t.Errorf("FirstInvalid() = %d, want 2", idx)
	}

	valid := tr.Truncate(tr.FirstInvalid())
	if valid.Len() != 2 || valid.FirstInvalid() != -1 {
		t.Errorf("truncate kept %d entries", valid.Len())
	}
	if tr.Len() != 3 {
		t.Error("Truncate must not modify the receiver")
	}

	rows := valid.Rows()
	if rows[1] != (Row{T: 0.5, Theta1: 5, Omega1: 6, Theta2: 7, Omega2: 8}) {
		t.Errorf("unexpected row %+v", rows[1])
	}
	if got := valid.Component(dynamo.Theta2); got[0] != 3 || got[1] != 7 {
		t.Errorf("unexpected theta2 series %v", got)
	}
	if es := valid.Energies(physics.DefaultParams()); len(es) != 2 {
		t.Errorf("expected 2 energies, got %d", len(es))
	}
	if ps := valid.Positions(physics.DefaultParams()); len(ps) != 2 {
		t.Errorf("expected 2 positions, got %d", len(ps))
	}
}

func TestEnsemble(t *testing.T) {
	e := NewEnsemble(NewSolver(integrators.NewRK45()))
	e.SetLimit(2)

	x0s := Perturb(dynamo.NewState(2, 0, 2.5, 0), dynamo.Theta1, 4, 1e-3)
	results, err := e.Run(context.Background(), x0s, physics.DefaultParams(), 2.0, 0.01)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, tr := range results {
		if _, x := tr.First(); x != x0s[i] {
			t.Errorf("result %d out of order: starts at %v", i, x)
		}
	}
}

func TestEnsembleFailure(t *testing.T) {
	e := NewEnsemble(NewSolver(&rejectingStepper{}))

	_, err := e.Run(context.Background(), []dynamo.State{{1, 0, 1, 0}, {0.5, 0, 0.5, 0}}, physics.DefaultParams(), 1.0, 0.1)
	if !errors.Is(err, dynamo.ErrStepTooSmall) {
		t.Errorf("expected ErrStepTooSmall, got %v", err)
	}
}
