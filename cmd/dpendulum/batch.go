package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/san-kum/dpendulum/internal/automation"
	"github.com/san-kum/dpendulum/internal/config"
	"github.com/san-kum/dpendulum/internal/storage"
	"github.com/spf13/cobra"
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	fmt.Println()

	results, runErr := automation.RunScenario(ctx, sc, config.DefaultConfig(), storage.New(dataDir), logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tNAME\tPOINTS\tDRIFT\tFLIPS\tRUN ID\tSTATUS")
	for i, r := range results {
		points, drift, flips := 0, math.NaN(), math.NaN()
		if r.Result != nil {
			points = r.Result.Trajectory.Len()
			drift = r.Result.Energy.Drift
			flips = r.Result.Metrics["flips_outer"]
		}
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		runID := r.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.3e\t%g\t%s\t%s\n", i+1, r.Step.Name, points, drift, flips, runID, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	return runErr
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	mc := &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: mcSpread,
		NumTrials:    mcTrials,
		Workers:      workers,
		Seed:         mcSeed,
	}

	fmt.Printf("monte carlo: %d trials, ±%g° around θ1=%g° θ2=%g°, t_max=%gs\n\n",
		mcTrials, mcSpread, cfg.Initial.Theta1, cfg.Initial.Theta2, cfg.TMax)

	start := time.Now()
	results, err := automation.RunMonteCarlo(ctx, mc)
	if err != nil {
		return err
	}
	s := automation.MonteCarloStats(results)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "trials\t%d\n", s.Trials)
	fmt.Fprintf(w, "outer rod flipped\t%d (%.1f%%)\n", s.Flipped, 100*float64(s.Flipped)/float64(s.Trials))
	fmt.Fprintf(w, "flips per trial\t%.2f ± %.2f\n", s.MeanFlips, s.StdFlips)
	if !math.IsNaN(s.MeanFirstFlip) {
		fmt.Fprintf(w, "mean time to first flip\t%.2fs\n", s.MeanFirstFlip)
	}
	fmt.Fprintf(w, "elapsed\t%v\n", time.Since(start).Round(time.Millisecond))
	return w.Flush()
}
