package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/dpendulum/internal/config"
	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/integrators"
	"github.com/san-kum/dpendulum/internal/metrics"
	"github.com/san-kum/dpendulum/internal/physics"
	"github.com/san-kum/dpendulum/internal/sim"
	"github.com/san-kum/dpendulum/internal/storage"
)

// Experiment is one configured simulation run.
type Experiment struct {
	cfg     config.Config
	params  physics.Params
	x0      dynamo.State
	solver  *sim.Solver
	metrics []metrics.Metric
	logger  *slog.Logger
}

// Result bundles everything a run produced. Trajectory is non-nil even when
// Err is set, holding the valid prefix.
type Result struct {
	Trajectory *sim.Trajectory
	Energy     metrics.Report
	Metrics    map[string]float64
	Err        error
}

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

// WithMetrics replaces the default metrics.
func WithMetrics(ms ...metrics.Metric) Option {
	return func(e *Experiment) { e.metrics = ms }
}

// New validates cfg and builds its solver.
func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stepper, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:    *cfg,
		params: cfg.Params(),
		x0:     cfg.InitialState(),
		logger: slog.New(slog.DiscardHandler),
	}
	e.metrics = DefaultRegistry.DefaultMetrics(e.params)
	for _, opt := range opts {
		opt(e)
	}

	e.solver = sim.NewSolver(stepper, sim.WithTolerance(cfg.Tol()), sim.WithLogger(e.logger))
	for _, m := range e.metrics {
		m.Reset()
		e.solver.AddObserver(m)
	}

	return e, nil
}

func (e *Experiment) Params() physics.Params { return e.params }

func (e *Experiment) InitialState() dynamo.State { return e.x0 }

func (e *Experiment) Config() config.Config { return e.cfg }

// Solver returns the underlying solver for adding observers
func (e *Experiment) Solver() *sim.Solver { return e.solver }

// Run integrates the experiment. A failed run still returns a Result with
// the valid prefix of the trajectory; the error is also stored in it.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	tr, err := e.solver.Run(ctx, e.x0, e.params, e.cfg.TMax, e.cfg.Dt)
	if tr == nil {
		return nil, err
	}

	res := &Result{
		Trajectory: tr,
		Energy:     metrics.Energy(tr, e.params),
		Metrics:    make(map[string]float64, len(e.metrics)),
		Err:        err,
	}
	for _, m := range e.metrics {
		res.Metrics[m.Name()] = m.Value()
	}

	e.logger.Info("simulation finished",
		slog.String("integrator", e.cfg.Integrator),
		slog.Int("points", tr.Len()),
		slog.Int("accepted", tr.Stats.Accepted),
		slog.Int("rejected", tr.Stats.Rejected),
		slog.Float64("energy_drift", res.Energy.Drift),
		slog.Float64("max_energy_drift", res.Energy.MaxDrift),
	)
	if err != nil {
		e.logger.Warn("simulation stopped early", slog.Any("error", err), slog.Int("valid_points", tr.Len()))
		return res, fmt.Errorf("simulation incomplete: %w", err)
	}

	return res, nil
}

// Metadata describes res for storage.
func (e *Experiment) Metadata(res *Result) storage.RunMetadata {
	meta := storage.RunMetadata{
		Params:     e.params,
		Initial:    e.x0,
		TMax:       e.cfg.TMax,
		Dt:         e.cfg.Dt,
		Integrator: e.cfg.Integrator,
		Tolerance:  e.cfg.Tol(),
		Energy:     res.Energy,
		Metrics:    res.Metrics,
	}
	if res.Err != nil {
		meta.Error = res.Err.Error()
	}
	return meta
}
