package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/dpendulum/internal/config"
	"github.com/san-kum/dpendulum/internal/experiment"
	"github.com/san-kum/dpendulum/internal/integrators"
	"github.com/san-kum/dpendulum/internal/optim"
	"github.com/san-kum/dpendulum/internal/physics"
	"github.com/san-kum/dpendulum/internal/render"
	"github.com/san-kum/dpendulum/internal/sim"
	"github.com/san-kum/dpendulum/internal/storage"
	"github.com/san-kum/dpendulum/internal/viz"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(16)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("running %s simulation (t_max=%gs, dt=%gs)...\n", cfg.Integrator, cfg.TMax, cfg.Dt)

	start := time.Now()
	res, runErr := exp.Run(ctx)
	elapsed := time.Since(start)
	if res == nil {
		return runErr
	}

	st := storage.New(dataDir)
	runID, err := st.Save(exp.Metadata(res), res.Trajectory)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	logger.Debug("run saved", slog.String("id", runID), slog.String("dir", dataDir))

	printReport(runID, elapsed, res)

	if err := writeOutputs(res.Trajectory, exp.Params(), cfg); err != nil {
		return err
	}

	return runErr
}

func printReport(runID string, elapsed time.Duration, res *experiment.Result) {
	tr := res.Trajectory
	row := func(label, value string) {
		fmt.Println(labelStyle.Render(label) + value)
	}

	fmt.Println(headerStyle.Render("run " + runID))
	row("completed in", elapsed.Round(time.Millisecond).String())
	row("points", fmt.Sprintf("%d", tr.Len()))
	row("steps", fmt.Sprintf("%d accepted, %d rejected", tr.Stats.Accepted, tr.Stats.Rejected))
	row("energy", fmt.Sprintf("%.6f J -> %.6f J", res.Energy.Initial, res.Energy.Final))
	row("energy drift", fmt.Sprintf("%.3e (max %.3e)", res.Energy.Drift, res.Energy.MaxDrift))

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row(name, fmt.Sprintf("%.6g", res.Metrics[name]))
	}

	if res.Err != nil {
		fmt.Println(warnStyle.Render("incomplete: " + res.Err.Error()))
	}
}

func writeOutputs(tr *sim.Trajectory, p physics.Params, cfg *config.Config) error {
	opts := render.DefaultOptions()
	opts.FPS = cfg.Render.FPS
	opts.Width = cfg.Render.Width
	opts.Height = cfg.Render.Height
	opts.Trail = cfg.Render.Trail

	if cfg.Render.GIF != "" {
		if err := writeFile(cfg.Render.GIF, func(f *os.File) error { return render.GIF(f, tr, p, opts) }); err != nil {
			return fmt.Errorf("failed to render gif: %w", err)
		}
		fmt.Printf("gif: %s\n", cfg.Render.GIF)
	}

	if cfg.Render.SVG != "" {
		if err := writeFile(cfg.Render.SVG, func(f *os.File) error { return render.SVG(f, tr, p, opts) }); err != nil {
			return fmt.Errorf("failed to render svg: %w", err)
		}
		fmt.Printf("svg: %s\n", cfg.Render.SVG)
	}

	return nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func renderRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	if gifPath == "" && svgPath == "" {
		return errors.New("nothing to render: pass --gif and/or --svg")
	}

	cfg := config.DefaultConfig()
	applyRenderFlags(cmd, cfg)
	return writeOutputs(tr, meta.Params, cfg)
}

func runLive(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("run %s has no data", args[0])
	}
	return viz.Run(tr, meta.Params, speed)
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	ctx, stop := signalContext()
	defer stop()

	results, err := experiment.Compare(ctx, cfg, names)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators (dt=%g, t_max=%gs)\n\n", cfg.Dt, cfg.TMax)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tPOINTS\tFINAL θ2\tDRIFT\tMAX DRIFT\tSTEPS\tTIME")
	for _, c := range results {
		if c.Result == nil {
			fmt.Fprintf(w, "%s\terror: %v\t\t\t\t\t\n", c.Integrator, c.Err)
			continue
		}
		_, last := c.Result.Trajectory.Last()
		status := ""
		if c.Err != nil {
			status = " (incomplete)"
		}
		fmt.Fprintf(w, "%s%s\t%d\t%.4f\t%.3e\t%.3e\t%d\t%s\n",
			c.Integrator, status,
			c.Result.Trajectory.Len(),
			last.Theta2(),
			c.Result.Energy.Drift,
			c.Result.Energy.MaxDrift,
			c.Result.Trajectory.Stats.Accepted,
			c.Elapsed.Round(time.Microsecond),
		)
	}
	return w.Flush()
}

func sweep(cmd *cobra.Command, args []string) error {
	if len(sweepSpecs) == 0 {
		return errors.New("sweep needs at least one --vary name=min:max:steps")
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ranges := make([]optim.Range, 0, len(sweepSpecs))
	for _, spec := range sweepSpecs {
		r, err := optim.ParseRange(spec)
		if err != nil {
			return err
		}
		ranges = append(ranges, r)
	}

	var obj optim.Objective
	switch objective {
	case "drift":
		obj = optim.EnergyDriftObjective
	case "angle":
		obj = optim.FinalAngleObjective
	default:
		return fmt.Errorf("unknown objective %q (drift, angle)", objective)
	}

	gs := optim.NewGridSearch(ranges...)
	gs.SetLimit(workers)

	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	points, err := gs.Search(ctx, cfg, obj)
	if err != nil {
		return err
	}

	fmt.Printf("evaluated %d points in %v (objective: %s)\n\n", len(points), time.Since(start).Round(time.Millisecond), objective)

	names := make([]string, len(ranges))
	for i, r := range ranges {
		names[i] = strings.ToUpper(r.Name)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\t%s\tSCORE\n", strings.Join(names, "\t"))
	for i, pt := range points {
		if top > 0 && i >= top {
			break
		}
		vals := make([]string, len(ranges))
		for k, r := range ranges {
			vals[k] = fmt.Sprintf("%.4g", pt.Values[r.Name])
		}
		score := fmt.Sprintf("%.4e", pt.Score)
		if pt.Err != nil {
			score = "error: " + pt.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, strings.Join(vals, "\t"), score)
	}
	return w.Flush()
}
