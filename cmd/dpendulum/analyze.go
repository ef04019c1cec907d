package main

import (
	"fmt"
	"time"

	"github.com/san-kum/dpendulum/internal/analysis"
	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/experiment"
	"github.com/spf13/cobra"
)

func lyapunov(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("estimating largest lyapunov exponent (t_max=%gs, d0=%g)...\n", cfg.TMax, perturbation)

	start := time.Now()
	lambda, err := analysis.LyapunovExponent(ctx, exp.Solver(), exp.InitialState(), exp.Params(), cfg.Dt, cfg.TMax, perturbation)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("λ ≈ %.4f 1/s\n", lambda)
	switch {
	case lambda > 0.01:
		fmt.Println("chaotic: nearby trajectories diverge")
	case lambda < -0.01:
		fmt.Println("stable: nearby trajectories converge")
	default:
		fmt.Println("marginal: regular or quasi-periodic motion")
	}
	return nil
}

func bifurcation(cmd *cobra.Command, args []string) error {
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

	opts := analysis.BifurcationOptions{
		Param:     bifParam,
		Min:       bifMin,
		Max:       bifMax,
		Steps:     bifSteps,
		Dt:        cfg.Dt,
		Transient: transient,
		Record:    cfg.TMax,
		CrossIdx:  dynamo.Theta1,
		ValueIdx:  dynamo.Theta2,
	}

	fmt.Printf("sweeping %s over [%g, %g] in %d steps...\n\n", bifParam, bifMin, bifMax, bifSteps)

	data, err := analysis.Bifurcation(ctx, exp.Solver(), exp.InitialState(), exp.Params(), opts)
	if err != nil {
		return err
	}

	fmt.Println(analysis.BifurcationToASCII(data, 60, 20))
	fmt.Printf("\nx: %s, y: θ2 at upward θ1 = 0 crossings\n", bifParam)
	return nil
}
