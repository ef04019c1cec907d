package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dpendulum/internal/analysis"
	"github.com/san-kum/dpendulum/internal/config"
	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/metrics"
	"github.com/san-kum/dpendulum/internal/sim"
	"github.com/san-kum/dpendulum/internal/storage"
	"github.com/spf13/cobra"
)

const (
	graphWidth  = 80
	graphHeight = 10
)

// loadRun reads the metadata and trajectory of a stored run and rejects
// runs without data.
func loadRun(runID string) (*storage.RunMetadata, *sim.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	if tr.Len() == 0 {
		return nil, nil, errors.New("no data")
	}
	return meta, tr, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tT_MAX\tDT\tINTEG\tθ1\tθ2\tDRIFT\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "incomplete"
		}
		fmt.Fprintf(w, "%s\t%s\t%.2fs\t%.4fs\t%s\t%.1f°\t%.1f°\t%.2e\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.TMax,
			run.Dt,
			run.Integrator,
			config.Degrees(run.Initial.Theta1()),
			config.Degrees(run.Initial.Theta2()),
			run.Energy.Drift,
			status,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", tr.Len())

	series := []struct {
		caption string
		data    []float64
	}{
		{"θ1 (rad)", tr.Component(dynamo.Theta1)},
		{"θ2 (rad)", tr.Component(dynamo.Theta2)},
		{"total energy (J)", metrics.EnergySeries(tr, meta.Params)},
	}

	for _, s := range series {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func energyReport(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	r := metrics.Energy(tr, meta.Params)

	fmt.Printf("energy report: %s\n", meta.ID)
	fmt.Printf("integrator: %s\n\n", meta.Integrator)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "initial\t%.9f J\n", r.Initial)
	fmt.Fprintf(w, "final\t%.9f J\n", r.Final)
	fmt.Fprintf(w, "mean\t%.9f J\n", r.Mean)
	fmt.Fprintf(w, "std dev\t%.3e J\n", r.StdDev)
	fmt.Fprintf(w, "drift\t%.3e\n", r.Drift)
	fmt.Fprintf(w, "max drift\t%.3e\n", r.MaxDrift)
	fmt.Fprintf(w, "samples\t%d\n", r.Samples)
	if err := w.Flush(); err != nil {
		return err
	}

	if meta.Error != "" {
		fmt.Printf("\nrun incomplete: %s\n", meta.Error)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, tr)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, tr)
}

func phasePlot(cmd *cobra.Command, args []string) error {
	xIdx, err := stateIndex(xAxis)
	if err != nil {
		return err
	}
	yIdx, err := stateIndex(yAxis)
	if err != nil {
		return err
	}

	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("x-axis: %s, y-axis: %s\n\n", xAxis, yAxis)

	fmt.Println(analysis.PhasePortraitToASCII(analysis.PhasePortrait(tr, xIdx, yIdx), 60, 20))
	return nil
}

func poincarePlot(cmd *cobra.Command, args []string) error {
	crossIdx, err := stateIndex(crossAxis)
	if err != nil {
		return err
	}
	xIdx, err := stateIndex(sectionX)
	if err != nil {
		return err
	}
	yIdx, err := stateIndex(sectionY)
	if err != nil {
		return err
	}

	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	section := analysis.NewPoincareSection(tr, crossIdx, crossLevel, xIdx, yIdx)

	fmt.Printf("poincaré section: %s\n", meta.ID)
	fmt.Printf("%s = %g crossing upwards, %d points\n\n", crossAxis, crossLevel, len(section.Points))
	fmt.Println(analysis.PoincareSectionToASCII(section, 60, 20))
	return nil
}

func spectrumRun(cmd *cobra.Command, args []string) error {
	idx, err := stateIndex(component)
	if err != nil {
		return err
	}

	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	data := tr.Component(idx)
	ps := analysis.PowerSpectrum(data)

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("component: %s, samples: %d\n\n", component, len(data))

	// The low end of the spectrum holds the pendulum modes.
	plotData := ps[1:]
	if len(plotData) > 4*graphWidth {
		plotData = plotData[:len(ps)/4]
	}
	if len(plotData) > 0 {
		graph := asciigraph.Plot(plotData,
			asciigraph.Height(15),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("power spectrum ("+component+")"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	freq := analysis.DominantFrequency(data, tr.Dt())
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}
