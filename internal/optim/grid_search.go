package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/dpendulum/internal/config"
	"github.com/san-kum/dpendulum/internal/experiment"
	"golang.org/x/sync/errgroup"
)

// Objective scores a finished run; lower is better.
type Objective func(res *experiment.Result) float64

// EnergyDriftObjective scores a run by its largest relative energy drift.
func EnergyDriftObjective(res *experiment.Result) float64 {
	return res.Energy.MaxDrift
}

// FinalAngleObjective scores a run by how far the outer rod ends from
// hanging straight down, favouring calm final states.
func FinalAngleObjective(res *experiment.Result) float64 {
	_, x := res.Trajectory.Last()
	return math.Abs(math.Remainder(x.Theta2(), 2*math.Pi))
}

// Point is one evaluated grid point.
type Point struct {
	Values map[string]float64
	Score  float64
	Err    error
}

// Range is the inclusive sweep of one named value. Names are those of
// config.Fields; initial conditions are in degrees.
type Range struct {
	Name  string
	Min   float64
	Max   float64
	Steps int
}

// Values lists the Steps evenly spaced values of r.
func (r Range) Values() []float64 {
	if r.Steps <= 1 {
		return []float64{r.Min}
	}
	step := (r.Max - r.Min) / float64(r.Steps-1)
	out := make([]float64, r.Steps)
	for i := range out {
		out[i] = r.Min + float64(i)*step
	}
	return out
}

// ParseRange reads name=min:max:steps.
func ParseRange(spec string) (Range, error) {
	name, rest, ok := strings.Cut(spec, "=")
	if !ok {
		return Range{}, fmt.Errorf("range %q: expected name=min:max:steps", spec)
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return Range{}, fmt.Errorf("range %q: expected name=min:max:steps", spec)
	}

	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", spec, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", spec, err)
	}
	steps, err := strconv.Atoi(parts[2])
	if err != nil || steps < 1 {
		return Range{}, fmt.Errorf("range %q: steps must be a positive integer", spec)
	}

	r := Range{Name: strings.TrimSpace(name), Min: lo, Max: hi, Steps: steps}
	if err := config.DefaultConfig().Set(r.Name, lo); err != nil {
		return Range{}, fmt.Errorf("range %q: %w", spec, err)
	}
	return r, nil
}

type GridSearch struct {
	ranges []Range
	limit  int
}

func NewGridSearch(ranges ...Range) *GridSearch {
	return &GridSearch{ranges: ranges, limit: runtime.GOMAXPROCS(0)}
}

// SetLimit bounds the number of concurrent runs.
func (g *GridSearch) SetLimit(n int) {
	if n > 0 {
		g.limit = n
	}
}

// Points enumerates the Cartesian product of the ranges.
func (g *GridSearch) Points() []map[string]float64 {
	points := []map[string]float64{{}}
	for _, r := range g.ranges {
		next := make([]map[string]float64, 0, len(points)*max(r.Steps, 1))
		for _, current := range points {
			for _, val := range r.Values() {
				p := make(map[string]float64, len(current)+1)
				for k, v := range current {
					p[k] = v
				}
				p[r.Name] = val
				next = append(next, p)
			}
		}
		points = next
	}
	return points
}

// Search runs base once per grid point and scores every run. Points whose
// configuration is invalid or whose run fails keep their error and score
// +Inf. The result is sorted by score; the best point comes first.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective) ([]Point, error) {
	grid := g.Points()
	results := make([]Point, len(grid))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.limit)

	for i, values := range grid {
		eg.Go(func() error {
			cfg := *base
			results[i] = Point{Values: values, Score: math.Inf(1)}
			for _, r := range g.ranges {
				if err := cfg.Set(r.Name, values[r.Name]); err != nil {
					results[i].Err = err
					return nil
				}
			}

			exp, err := experiment.New(&cfg)
			if err != nil {
				results[i].Err = err
				return nil
			}
			res, err := exp.Run(ctx)
			if err != nil {
				results[i].Err = err
				return ctx.Err()
			}
			results[i].Score = objective(res)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score < results[j].Score })
	return results, nil
}
