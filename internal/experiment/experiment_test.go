package experiment

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/san-kum/dpendulum/internal/config"
	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/metrics"
)

func shortConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.TMax = 2
	return cfg
}

func TestExperimentRun(t *testing.T) {
	exp, err := New(shortConfig())
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if res.Trajectory.Len() != 201 {
		t.Errorf("expected 201 points, got %d", res.Trajectory.Len())
	}
	if res.Energy.MaxDrift > 1e-6 {
		t.Errorf("energy drift %g too large for rk45", res.Energy.MaxDrift)
	}
	for _, name := range []string{"energy_drift", "flips_inner", "flips_outer"} {
		if _, ok := res.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
	if res.Metrics["energy_drift"] != res.Energy.MaxDrift {
		t.Errorf("streaming drift %g differs from report %g", res.Metrics["energy_drift"], res.Energy.MaxDrift)
	}

	meta := exp.Metadata(res)
	if meta.Integrator != "rk45" || meta.TMax != 2 || meta.Error != "" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Initial != exp.InitialState() {
		t.Error("metadata must carry the initial state in radians")
	}
}

func TestExperimentInvalidConfig(t *testing.T) {
	cfg := shortConfig()
	cfg.Dt = 0.05

	if _, err := New(cfg); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestExperimentCanceled(t *testing.T) {
	exp, err := New(shortConfig())
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := exp.Run(ctx)
	if !errors.Is(err, dynamo.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if res == nil || res.Trajectory.Len() != 1 {
		t.Fatal("expected the initial point as partial result")
	}
	if exp.Metadata(res).Error == "" {
		t.Error("metadata must record the failure")
	}
}

func TestExperimentCustomMetrics(t *testing.T) {
	flips := metrics.NewFlips(dynamo.Theta2)
	exp, err := New(shortConfig(), WithMetrics(flips))
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(res.Metrics) != 1 {
		t.Errorf("expected only the custom metric, got %v", res.Metrics)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	want := []string{"energy_drift", "flips_inner", "flips_outer"}
	if got := r.ListMetrics(); !reflect.DeepEqual(got, want) {
		t.Errorf("ListMetrics() = %v, want %v", got, want)
	}

	p := shortConfig().Params()
	if _, err := r.GetMetric("energy_drift", p); err != nil {
		t.Errorf("lookup failed: %v", err)
	}
	if _, err := r.GetMetric("control_effort", p); err == nil {
		t.Error("expected error for unknown metric")
	}

	a := r.DefaultMetrics(p)
	b := r.DefaultMetrics(p)
	if a[0] == b[0] {
		t.Error("DefaultMetrics must return fresh instances")
	}
}

func TestCompare(t *testing.T) {
	cfg := shortConfig()
	cfg.Initial = config.InitialConfig{Theta1: 120, Theta2: 135}

	results, err := Compare(context.Background(), cfg, []string{"euler", "rk4", "rk45"})
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	drift := make(map[string]float64)
	for _, c := range results {
		if c.Err != nil {
			t.Fatalf("%s failed: %v", c.Integrator, c.Err)
		}
		drift[c.Integrator] = c.Result.Energy.MaxDrift
	}

	if !(drift["rk45"] < drift["rk4"] && drift["rk4"] < drift["euler"]) {
		t.Errorf("expected rk45 < rk4 < euler drift, got %v", drift)
	}

	if _, err := Compare(context.Background(), cfg, []string{"verlet"}); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestCompareCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Compare(ctx, shortConfig(), []string{"rk4", "rk45"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 comparisons, got %d", len(results))
	}
	for _, c := range results {
		if !errors.Is(c.Err, dynamo.ErrCanceled) {
			t.Errorf("%s: expected ErrCanceled, got %v", c.Integrator, c.Err)
		}
	}
}
