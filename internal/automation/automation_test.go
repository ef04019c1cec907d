package automation

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/dpendulum/internal/config"
	"github.com/san-kum/dpendulum/internal/storage"
)

const scenarioYAML = `name: tour
description: gentle then chaotic
steps:
  - name: small swing
    preset: gentle
    set:
      t_max: 2
    save: true
  - name: fixed step
    integrator: rk4
    set:
      theta1: 30
      theta2: 0
      t_max: 2
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Name != "tour" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	if sc.Steps[0].Preset != "gentle" || !sc.Steps[0].Save || sc.Steps[1].Set["theta1"] != 30 {
		t.Errorf("steps decoded incorrectly: %+v", sc.Steps)
	}

	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("scenario without steps should fail")
	}
}

func TestStepConfig(t *testing.T) {
	base := config.DefaultConfig()

	cfg, err := StepConfig(base, ScenarioStep{Integrator: "rk4", Set: map[string]float64{"l2": 2}})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Integrator != "rk4" || cfg.Physics.L2 != 2 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if base.Physics.L2 != 1 {
		t.Error("base config was modified")
	}

	bad := []ScenarioStep{
		{Preset: "nope"},
		{Set: map[string]float64{"mass": 1}},
		{Set: map[string]float64{"dt": 0.5}},
	}
	for _, step := range bad {
		if _, err := StepConfig(base, step); err == nil {
			t.Errorf("StepConfig(%+v) should fail", step)
		}
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	store := storage.New(t.TempDir())

	results, err := RunScenario(context.Background(), sc, config.DefaultConfig(), store, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("scenario failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].RunID == "" || results[1].RunID != "" {
		t.Errorf("only the first step should be saved: %q %q", results[0].RunID, results[1].RunID)
	}
	for i, r := range results {
		if r.Err != nil || r.Result.Trajectory.Len() != 201 {
			t.Errorf("step %d: err=%v points=%d", i, r.Err, r.Result.Trajectory.Len())
		}
	}

	runs, err := store.List()
	if err != nil || len(runs) != 1 {
		t.Errorf("expected one stored run, got %d (%v)", len(runs), err)
	}
}

func TestRunScenarioCanceled(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RunScenario(ctx, sc, config.DefaultConfig(), nil, slog.New(slog.DiscardHandler)); err == nil {
		t.Error("canceled scenario should fail")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	base := config.GetPreset("chaos")
	base.TMax = 5

	cfg := &MonteCarloConfig{Base: base, Perturbation: 1, NumTrials: 6, Workers: 2, Seed: 42}
	a, err := RunMonteCarlo(context.Background(), cfg)
	if err != nil {
		t.Fatalf("monte carlo failed: %v", err)
	}
	if len(a) != 6 {
		t.Fatalf("expected 6 trials, got %d", len(a))
	}

	x0 := base.InitialState()
	limit := config.Radians(1)
	for _, r := range a {
		for _, idx := range []int{0, 2} {
			if math.Abs(r.InitState[idx]-x0[idx]) > limit {
				t.Errorf("trial %d: angle %d perturbed beyond ±1°", r.TrialID, idx)
			}
		}
		if r.Flips == 0 && !math.IsNaN(r.FirstFlip) {
			t.Errorf("trial %d: first flip set without flips", r.TrialID)
		}
	}

	b, err := RunMonteCarlo(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i].InitState != b[i].InitState || a[i].FinalState != b[i].FinalState {
			t.Errorf("trial %d differs between runs with the same seed", i)
		}
	}

	if _, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{Base: base}); err == nil {
		t.Error("zero trials should fail")
	}
}

func TestMonteCarloStats(t *testing.T) {
	s := MonteCarloStats([]MonteCarloResult{
		{Flips: 0, FirstFlip: math.NaN()},
		{Flips: 2, FirstFlip: 1},
		{Flips: 4, FirstFlip: 3},
	})
	if s.Trials != 3 || s.Flipped != 2 {
		t.Errorf("unexpected counts %+v", s)
	}
	if s.MeanFlips != 2 || s.StdFlips != 2 || s.MeanFirstFlip != 2 {
		t.Errorf("unexpected statistics %+v", s)
	}

	empty := MonteCarloStats(nil)
	if empty.Trials != 0 || !math.IsNaN(empty.MeanFirstFlip) {
		t.Errorf("unexpected empty summary %+v", empty)
	}
}
