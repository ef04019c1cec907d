package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/dpendulum/internal/config"
	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/experiment"
	"github.com/san-kum/dpendulum/internal/metrics"
	"github.com/san-kum/dpendulum/internal/physics"
	"github.com/san-kum/dpendulum/internal/sim"
	"github.com/san-kum/dpendulum/internal/storage"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run of a scenario. The run starts from the base
// configuration, or from Preset when set, then applies Integrator and Set.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	Set        map[string]float64 `yaml:"set"` // config.Fields names, angles in degrees
	Save       bool               `yaml:"save"`
}

// StepResult is the outcome of one scenario step. Result holds the valid
// prefix when Err is a simulation failure.
type StepResult struct {
	Step   ScenarioStep
	Result *experiment.Result
	RunID  string
	Err    error
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// StepConfig builds the configuration of step on top of base.
func StepConfig(base *config.Config, step ScenarioStep) (*config.Config, error) {
	cfg := *base
	if step.Preset != "" {
		p := config.GetPreset(step.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", step.Preset)
		}
		cfg = *p
	}
	if step.Integrator != "" {
		cfg.Integrator = step.Integrator
	}
	for name, v := range step.Set {
		if err := cfg.Set(name, v); err != nil {
			return nil, err
		}
	}
	return &cfg, cfg.Validate()
}

// RunScenario executes the steps in order. A step whose configuration is
// invalid aborts the scenario; a step whose simulation fails is recorded
// and the scenario goes on. Steps with Save are stored in store.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, store *storage.Store, logger *slog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("running scenario step",
			slog.String("scenario", scenario.Name),
			slog.Int("step", i+1),
			slog.Int("of", len(scenario.Steps)),
			slog.String("name", step.Name),
		)

		cfg, err := StepConfig(base, step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(cfg, experiment.WithLogger(logger))
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		res, err := exp.Run(ctx)
		sr := StepResult{Step: step, Result: res, Err: err}
		if errors.Is(err, dynamo.ErrCanceled) || res == nil {
			results = append(results, sr)
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		if step.Save && store != nil {
			id, err := store.Save(exp.Metadata(res), res.Trajectory)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
		}

		results = append(results, sr)
	}

	return results, nil
}

var nan = math.NaN()

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64 // half-width of the uniform angle noise, degrees
	NumTrials    int
	Workers      int
	Seed         int64 // 0 seeds from the clock
}

// MonteCarloResult holds one trial.
type MonteCarloResult struct {
	TrialID    int
	InitState  dynamo.State
	FinalState dynamo.State
	Flips      int     // flips of the outer rod
	FirstFlip  float64 // time of the first outer flip, NaN if none
	Drift      float64
}

// RunMonteCarlo integrates NumTrials copies of the base configuration whose
// initial angles are perturbed uniformly within ±Perturbation degrees.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("need at least one trial: %w", dynamo.ErrParameterBounds)
	}

	exp, err := experiment.New(cfg.Base)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	delta := config.Radians(cfg.Perturbation)
	base := exp.InitialState()
	x0s := make([]dynamo.State, cfg.NumTrials)
	for i := range x0s {
		x := base
		x[dynamo.Theta1] += (rng.Float64() - 0.5) * 2 * delta
		x[dynamo.Theta2] += (rng.Float64() - 0.5) * 2 * delta
		x0s[i] = x
	}

	ens := sim.NewEnsemble(exp.Solver())
	ens.SetLimit(cfg.Workers)

	p := exp.Params()
	trs, err := ens.Run(ctx, x0s, p, cfg.Base.TMax, cfg.Base.Dt)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(trs))
	for i, tr := range trs {
		results[i] = summarize(i, tr, p)
	}
	return results, nil
}

func summarize(id int, tr *sim.Trajectory, p physics.Params) MonteCarloResult {
	_, first := tr.First()
	_, last := tr.Last()
	r := MonteCarloResult{
		TrialID:    id,
		InitState:  first,
		FinalState: last,
		FirstFlip:  nan,
		Drift:      metrics.RelativeDrift(physics.TotalEnergy(first, p), physics.TotalEnergy(last, p)),
	}

	flips := metrics.NewFlips(dynamo.Theta2)
	for i := range tr.Len() {
		t, x := tr.At(i)
		flips.Observe(x, t)
		if r.Flips == 0 && flips.Value() > 0 {
			r.FirstFlip = t
		}
		r.Flips = int(flips.Value())
	}
	return r
}

// MonteCarloSummary aggregates the trials of a Monte Carlo run.
type MonteCarloSummary struct {
	Trials        int
	Flipped       int // trials where the outer rod flipped at least once
	MeanFlips     float64
	StdFlips      float64
	MeanFirstFlip float64 // over flipped trials, NaN if none
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) MonteCarloSummary {
	s := MonteCarloSummary{Trials: len(results), MeanFirstFlip: nan}
	if len(results) == 0 {
		return s
	}

	counts := make([]float64, len(results))
	var firsts []float64
	for i, r := range results {
		counts[i] = float64(r.Flips)
		if r.Flips > 0 {
			s.Flipped++
			firsts = append(firsts, r.FirstFlip)
		}
	}

	s.MeanFlips, s.StdFlips = stat.MeanStdDev(counts, nil)
	if len(results) == 1 {
		s.StdFlips = 0
	}
	if len(firsts) > 0 {
		s.MeanFirstFlip = stat.Mean(firsts, nil)
	}
	return s
}
