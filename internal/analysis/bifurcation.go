package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/physics"
	"github.com/san-kum/dpendulum/internal/sim"
)

// BifurcationPoint represents the section values found for one parameter
// value.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// BifurcationOptions selects the swept parameter and the section recorded
// for each of its values.
type BifurcationOptions struct {
	Param     string // physics.ParamNames entry
	Min, Max  float64
	Steps     int
	Dt        float64
	Transient float64 // time discarded before recording
	Record    float64 // time recorded after the transient
	CrossIdx  int     // component whose upward crossing of 0 triggers a sample
	ValueIdx  int     // component sampled at the crossing
}

// Bifurcation sweeps one parameter and records the distinct values of
// ValueIdx at the Poincaré crossings of each run. A wide spread of values
// marks chaotic motion, a few isolated ones periodic motion.
func Bifurcation(ctx context.Context, solver *sim.Solver, x0 dynamo.State, p physics.Params, opts BifurcationOptions) ([]BifurcationPoint, error) {
	if !validIndex(opts.CrossIdx) || !validIndex(opts.ValueIdx) {
		return nil, fmt.Errorf("state index out of range: %w", dynamo.ErrParameterBounds)
	}
	if opts.Steps < 2 {
		opts.Steps = 2
	}
	if !(opts.Record > 0) || opts.Transient < 0 {
		return nil, fmt.Errorf("record window must be positive: %w", dynamo.ErrParameterBounds)
	}
	paramStep := (opts.Max - opts.Min) / float64(opts.Steps-1)

	results := make([]BifurcationPoint, 0, opts.Steps)
	for i := 0; i < opts.Steps; i++ {
		param := opts.Min + float64(i)*paramStep
		pp, err := p.With(opts.Param, param)
		if err != nil {
			return nil, err
		}

		tr, err := solver.Run(ctx, x0, pp, opts.Transient+opts.Record, opts.Dt)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", opts.Param, param, err)
		}

		section := NewPoincareSection(tr, opts.CrossIdx, 0, opts.ValueIdx, opts.ValueIdx)

		values := make([]float64, 0, len(section.Points))
		seen := make(map[int]bool)
		for k, pt := range section.Points {
			if section.Times[k] < opts.Transient {
				continue
			}
			// Quantize to find distinct values
			key := int(math.Round(pt.X * 1000))
			if !seen[key] {
				seen[key] = true
				values = append(values, pt.X)
			}
		}

		results = append(results, BifurcationPoint{Param: param, Values: values})
	}

	return results, nil
}

// BifurcationToASCII converts bifurcation data to ASCII art
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 1 {
		return ""
	}

	var minVal, maxVal float64
	found := false
	for _, p := range data {
		for _, v := range p.Values {
			if !found {
				minVal, maxVal = v, v
				found = true
				continue
			}
			minVal = min(minVal, v)
			maxVal = max(maxVal, v)
		}
	}
	if !found {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
