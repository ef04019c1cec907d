package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test"}
	addConfigFlags(cmd)
	addRenderFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestBuildConfigDefaults(t *testing.T) {
	cfg, err := buildConfig(newTestCommand(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Initial.Theta1 != 175 || cfg.Dt != 0.01 || cfg.Integrator != "rk45" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestBuildConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	body := "initial:\n  theta2: 45\nt_max: 12\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCommand(t, "--preset", "chaos", "--config", path, "--tmax", "8", "--integrator", "rk4", "--gif", "out.gif")
	cfg, err := buildConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}

	// theta1 from the preset, theta2 from the file, t_max from the flag
	if cfg.Initial.Theta1 != 120 || cfg.Initial.Theta2 != 45 || cfg.TMax != 8 {
		t.Errorf("wrong precedence: %+v", cfg.Initial)
	}
	if cfg.Integrator != "rk4" || cfg.Render.GIF != "out.gif" {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestBuildConfigErrors(t *testing.T) {
	cases := [][]string{
		{"--preset", "nope"},
		{"--dt", "0.1"},
		{"--tmax", "1"},
		{"--l1", "-1"},
		{"--integrator", "leapfrog"},
		{"--config", "/nonexistent/cfg.yaml"},
	}
	for _, args := range cases {
		if _, err := buildConfig(newTestCommand(t, args...)); err == nil {
			t.Errorf("buildConfig(%v) should fail", args)
		}
	}
}

func TestStateIndex(t *testing.T) {
	for name, want := range map[string]int{"theta1": 0, "OMEGA1": 1, "theta2": 2, "omega2": 3} {
		got, err := stateIndex(name)
		if err != nil || got != want {
			t.Errorf("stateIndex(%q) = %d, %v", name, got, err)
		}
	}
	if _, err := stateIndex("x0"); err == nil {
		t.Error("unknown component should fail")
	}
}
