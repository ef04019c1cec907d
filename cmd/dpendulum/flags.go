package main

import (
	"fmt"
	"strings"

	"github.com/san-kum/dpendulum/internal/config"
	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/spf13/cobra"
)

// addConfigFlags registers the simulation settings. Their defaults are only
// documentation: buildConfig applies a flag only when it was set.
func addConfigFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()

	f.Float64("l1", d.Physics.L1, "upper rod length (m)")
	f.Float64("l2", d.Physics.L2, "lower rod length (m)")
	f.Float64("m1", d.Physics.M1, "upper bob mass (kg)")
	f.Float64("m2", d.Physics.M2, "lower bob mass (kg)")
	f.Float64("gravity", d.Physics.Gravity, "gravitational acceleration (m/s²)")
	f.Float64("theta1", d.Initial.Theta1, "initial upper angle (degrees)")
	f.Float64("theta2", d.Initial.Theta2, "initial lower angle (degrees)")
	f.Float64("omega1", d.Initial.Omega1, "initial upper angular velocity (degrees/s)")
	f.Float64("omega2", d.Initial.Omega2, "initial lower angular velocity (degrees/s)")
	f.Float64("tmax", d.TMax, "simulated time (s), must exceed 1")
	f.Float64("dt", d.Dt, "output interval (s), at most 0.01")
	f.Float64("rtol", d.Tolerance.Rel, "relative tolerance of adaptive integrators")
	f.Float64("atol", d.Tolerance.Abs, "absolute tolerance of adaptive integrators")
	f.String("integrator", d.Integrator, "integrator (rk45, rk4, euler)")

	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
}

func addRenderFlags(cmd *cobra.Command) {
	d := config.DefaultConfig().Render
	f := cmd.Flags()

	f.StringVar(&gifPath, "gif", "", "write an animated GIF to this path")
	f.StringVar(&svgPath, "svg", "", "write an SVG trace to this path")
	f.IntVar(&frameRate, "fps", d.FPS, "GIF frame rate")
	f.IntVar(&imgWidth, "width", d.Width, "image width (px)")
	f.IntVar(&imgHeight, "height", d.Height, "image height (px)")
	f.IntVar(&trailLen, "trail", d.Trail, "GIF frames of trail behind the lower bob")
}

// buildConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		if err := cfg.Merge(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	floats := map[string]*float64{
		"l1":      &cfg.Physics.L1,
		"l2":      &cfg.Physics.L2,
		"m1":      &cfg.Physics.M1,
		"m2":      &cfg.Physics.M2,
		"gravity": &cfg.Physics.Gravity,
		"theta1":  &cfg.Initial.Theta1,
		"theta2":  &cfg.Initial.Theta2,
		"omega1":  &cfg.Initial.Omega1,
		"omega2":  &cfg.Initial.Omega2,
		"tmax":    &cfg.TMax,
		"dt":      &cfg.Dt,
		"rtol":    &cfg.Tolerance.Rel,
		"atol":    &cfg.Tolerance.Abs,
	}
	for name, dst := range floats {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetFloat64(name)
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator, _ = cmd.Flags().GetString("integrator")
	}

	if cmd.Flags().Lookup("gif") != nil {
		applyRenderFlags(cmd, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyRenderFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("fps") {
		cfg.Render.FPS = frameRate
	}
	if f.Changed("width") {
		cfg.Render.Width = imgWidth
	}
	if f.Changed("height") {
		cfg.Render.Height = imgHeight
	}
	if f.Changed("trail") {
		cfg.Render.Trail = trailLen
	}
	if f.Changed("gif") {
		cfg.Render.GIF = gifPath
	}
	if f.Changed("svg") {
		cfg.Render.SVG = svgPath
	}
}

var componentNames = map[string]int{
	"theta1": dynamo.Theta1,
	"omega1": dynamo.Omega1,
	"theta2": dynamo.Theta2,
	"omega2": dynamo.Omega2,
}

func stateIndex(name string) (int, error) {
	idx, ok := componentNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown state component %q (theta1, omega1, theta2, omega2)", name)
	}
	return idx, nil
}
