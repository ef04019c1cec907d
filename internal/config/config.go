package config

import (
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/integrators"
	"github.com/san-kum/dpendulum/internal/physics"
	"github.com/san-kum/dpendulum/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt     = 0.01
	DefaultTMax   = 60.0
	DefaultTheta  = 175.0
	DefaultFPS    = 30
	DefaultWidth  = 480
	DefaultHeight = 480
	DefaultTrail  = 45

	// MaxDt and MinTMax bound the user-facing run settings.
	MaxDt   = 0.01
	MinTMax = 1.0
)

type Config struct {
	Physics    PhysicsConfig   `yaml:"physics"`
	Initial    InitialConfig   `yaml:"initial"`
	TMax       float64         `yaml:"t_max"`
	Dt         float64         `yaml:"dt"`
	Integrator string          `yaml:"integrator"`
	Tolerance  ToleranceConfig `yaml:"tolerance"`
	Render     RenderConfig    `yaml:"render"`
}

type PhysicsConfig struct {
	L1      float64 `yaml:"l1"`
	L2      float64 `yaml:"l2"`
	M1      float64 `yaml:"m1"`
	M2      float64 `yaml:"m2"`
	Gravity float64 `yaml:"gravity"`
}

// InitialConfig holds the initial angles in degrees and angular velocities
// in degrees per second.
type InitialConfig struct {
	Theta1 float64 `yaml:"theta1"`
	Omega1 float64 `yaml:"omega1"`
	Theta2 float64 `yaml:"theta2"`
	Omega2 float64 `yaml:"omega2"`
}

type ToleranceConfig struct {
	Rel float64 `yaml:"rel"`
	Abs float64 `yaml:"abs"`
}

type RenderConfig struct {
	FPS    int    `yaml:"fps"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Trail  int    `yaml:"trail"` // frames of outer-bob history drawn
	GIF    string `yaml:"gif,omitempty"`
	SVG    string `yaml:"svg,omitempty"`
}

func DefaultConfig() *Config {
	tol := dynamo.DefaultTolerance()
	return &Config{
		Physics: PhysicsConfig{
			L1:      physics.DefaultLength,
			L2:      physics.DefaultLength,
			M1:      physics.DefaultMass,
			M2:      physics.DefaultMass,
			Gravity: physics.StandardGravity,
		},
		Initial: InitialConfig{
			Theta1: DefaultTheta,
			Theta2: DefaultTheta,
		},
		TMax:       DefaultTMax,
		Dt:         DefaultDt,
		Integrator: integrators.Default,
		Tolerance:  ToleranceConfig{Rel: tol.Rel, Abs: tol.Abs},
		Render: RenderConfig{
			FPS:    DefaultFPS,
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Trail:  DefaultTrail,
		},
	}
}

// Load reads a YAML config on top of DefaultConfig, so omitted keys keep
// their defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.Merge(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overlays the YAML file at path onto c.
func (c *Config) Merge(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the physical parameters and the run settings.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if !(c.Dt > 0) || c.Dt > MaxDt {
		return fmt.Errorf("dt must be in (0, %g], got %g: %w", MaxDt, c.Dt, dynamo.ErrParameterBounds)
	}
	if !(c.TMax > MinTMax) || math.IsInf(c.TMax, 0) {
		return fmt.Errorf("t_max must be greater than %g, got %g: %w", MinTMax, c.TMax, dynamo.ErrParameterBounds)
	}
	if c.TMax/c.Dt > sim.MaxPoints {
		return fmt.Errorf("t_max/dt must not exceed %d grid points (t_max=%g, dt=%g): %w", sim.MaxPoints, c.TMax, c.Dt, dynamo.ErrParameterBounds)
	}
	if !c.InitialState().IsValid() {
		return fmt.Errorf("initial state must be finite: %w", dynamo.ErrParameterBounds)
	}
	if c.Integrator != "" && !slices.Contains(integrators.Names(), c.Integrator) {
		return fmt.Errorf("unknown integrator %q (available: %v): %w", c.Integrator, integrators.Names(), dynamo.ErrParameterBounds)
	}
	if err := c.Tol().Validate(); err != nil {
		return err
	}
	if c.Render.FPS <= 0 || c.Render.Width <= 0 || c.Render.Height <= 0 || c.Render.Trail < 0 {
		return fmt.Errorf("render settings must be positive (fps=%d, %dx%d, trail=%d): %w",
			c.Render.FPS, c.Render.Width, c.Render.Height, c.Render.Trail, dynamo.ErrParameterBounds)
	}
	return nil
}

func (c *Config) Params() physics.Params {
	return physics.Params{
		L1:      c.Physics.L1,
		L2:      c.Physics.L2,
		M1:      c.Physics.M1,
		M2:      c.Physics.M2,
		Gravity: c.Physics.Gravity,
	}
}

// InitialState converts the initial conditions to radians.
func (c *Config) InitialState() dynamo.State {
	return dynamo.NewState(
		Radians(c.Initial.Theta1),
		Radians(c.Initial.Omega1),
		Radians(c.Initial.Theta2),
		Radians(c.Initial.Omega2),
	)
}

func (c *Config) Tol() dynamo.Tolerance {
	return dynamo.Tolerance{Rel: c.Tolerance.Rel, Abs: c.Tolerance.Abs}
}

func Radians(deg float64) float64 { return deg * math.Pi / 180 }

func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Fields lists the names accepted by Set.
var Fields = []string{"l1", "l2", "m1", "m2", "gravity", "theta1", "omega1", "theta2", "omega2", "t_max", "dt"}

// Set assigns one numeric setting by name. Angles are in degrees.
func (c *Config) Set(name string, v float64) error {
	switch name {
	case "l1":
		c.Physics.L1 = v
	case "l2":
		c.Physics.L2 = v
	case "m1":
		c.Physics.M1 = v
	case "m2":
		c.Physics.M2 = v
	case "gravity":
		c.Physics.Gravity = v
	case "theta1":
		c.Initial.Theta1 = v
	case "omega1":
		c.Initial.Omega1 = v
	case "theta2":
		c.Initial.Theta2 = v
	case "omega2":
		c.Initial.Omega2 = v
	case "t_max":
		c.TMax = v
	case "dt":
		c.Dt = v
	default:
		return fmt.Errorf("unknown setting %q (available: %v)", name, Fields)
	}
	return nil
}
