package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/dpendulum/internal/config"
	"github.com/san-kum/dpendulum/internal/integrators"
	"github.com/san-kum/dpendulum/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	logger   = slog.New(slog.DiscardHandler)

	// Run configuration sources
	configFile string
	preset     string

	// Rendering
	gifPath   string
	svgPath   string
	frameRate int
	imgWidth  int
	imgHeight int
	trailLen  int

	// Inspection
	xAxis      string
	yAxis      string
	sectionX   string
	sectionY   string
	crossAxis  string
	crossLevel float64
	component  string
	speed      float64

	// Analysis
	perturbation float64
	sweepSpecs   []string
	objective    string
	workers      int
	top          int
	bifParam     string
	bifMin       float64
	bifMax       float64
	bifSteps     int
	transient    float64
	mcTrials     int
	mcSpread     float64
	mcSeed       int64
)

// main registers the commands and runs the root command. It exits with
// status 1 when the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "dpendulum",
		Short:         "double pendulum simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			logger = l
			slog.SetDefault(l)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", storage.DefaultDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	addRenderFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.New(dataDir).Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot angles and energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	energyCmd := &cobra.Command{
		Use:   "energy [run_id]",
		Short: "energy conservation report",
		Args:  cobra.ExactArgs(1),
		RunE:  energyReport,
	}

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a run to GIF and/or SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	addRenderFlags(renderCmd)

	liveCmd := &cobra.Command{
		Use:   "live [run_id]",
		Short: "replay a run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&speed, "speed", 1.0, "playback speed")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xAxis, "x-axis", "theta1", "state component for the x-axis")
	phaseCmd.Flags().StringVar(&yAxis, "y-axis", "omega1", "state component for the y-axis")

	poincareCmd := &cobra.Command{
		Use:   "poincare [run_id]",
		Short: "Poincaré section of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  poincarePlot,
	}
	poincareCmd.Flags().StringVar(&crossAxis, "cross", "theta1", "component whose upward crossing records a point")
	poincareCmd.Flags().Float64Var(&crossLevel, "level", 0, "crossing level (radians)")
	poincareCmd.Flags().StringVar(&sectionX, "x-axis", "theta2", "state component for the x-axis")
	poincareCmd.Flags().StringVar(&sectionY, "y-axis", "omega2", "state component for the y-axis")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "power spectrum of a state component",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrumRun,
	}
	spectrumCmd.Flags().StringVar(&component, "component", "theta1", "state component")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the largest Lyapunov exponent",
		Args:  cobra.NoArgs,
		RunE:  lyapunov,
	}
	addConfigFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64Var(&perturbation, "d0", 1e-8, "initial separation")

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation",
		Short: "sweep a parameter and plot Poincaré values",
		Args:  cobra.NoArgs,
		RunE:  bifurcation,
	}
	addConfigFlags(bifurcationCmd)
	bifurcationCmd.Flags().StringVar(&bifParam, "param", "l2", "parameter to sweep (l1, l2, m1, m2, gravity)")
	bifurcationCmd.Flags().Float64Var(&bifMin, "min", 0.5, "lower bound")
	bifurcationCmd.Flags().Float64Var(&bifMax, "max", 1.5, "upper bound")
	bifurcationCmd.Flags().IntVar(&bifSteps, "steps", 40, "parameter values")
	bifurcationCmd.Flags().Float64Var(&transient, "transient", 10, "seconds discarded before recording")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the same configuration",
		RunE:  compareIntegrators,
	}
	addConfigFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "parallel grid search over parameters and initial conditions",
		Args:  cobra.NoArgs,
		RunE:  sweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepSpecs, "vary", nil, "name=min:max:steps (repeatable)")
	sweepCmd.Flags().StringVar(&objective, "objective", "drift", "score to minimise (drift, angle)")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")
	sweepCmd.Flags().IntVar(&top, "top", 10, "rows to print")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "statistics over randomly perturbed initial angles",
		Args:  cobra.NoArgs,
		RunE:  monteCarlo,
	}
	addConfigFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&mcTrials, "trials", 100, "number of trials")
	monteCarloCmd.Flags().Float64Var(&mcSpread, "spread", 1, "angle perturbation half-width (degrees)")
	monteCarloCmd.Flags().Int64Var(&mcSeed, "seed", 0, "random seed (0 = time based)")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	integratorsCmd := &cobra.Command{
		Use:   "integrators",
		Short: "list available integrators",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range integrators.Names() {
				marker := " "
				if name == integrators.Default {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, deleteCmd, plotCmd, energyCmd, renderCmd, liveCmd,
		exportCSVCmd, exportJSONCmd, phaseCmd, poincareCmd, spectrumCmd, lyapunovCmd,
		bifurcationCmd, compareCmd, sweepCmd, scenarioCmd, monteCarloCmd, presetsCmd, integratorsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("presets:")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Printf("  %-10s θ1=%6.1f° θ2=%6.1f° ω1=%6.1f°/s ω2=%6.1f°/s t_max=%gs dt=%g\n",
			name, cfg.Initial.Theta1, cfg.Initial.Theta2, cfg.Initial.Omega1, cfg.Initial.Omega2, cfg.TMax, cfg.Dt)
	}
	return nil
}
