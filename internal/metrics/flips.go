package metrics

import (
	"math"

	"github.com/san-kum/dpendulum/internal/dynamo"
)

// Flips counts how often a rod passes over its pivot, i.e. how often its
// angle crosses an odd multiple of π.
type Flips struct {
	name    string
	idx     int
	last    float64
	flips   int
	samples int
}

// NewFlips counts flips of the rod whose angle sits at idx (dynamo.Theta1
// or dynamo.Theta2).
func NewFlips(idx int) *Flips {
	name := "flips_outer"
	if idx == dynamo.Theta1 {
		name = "flips_inner"
	}
	return &Flips{name: name, idx: idx}
}

func (f *Flips) Name() string { return f.name }

func (f *Flips) Observe(x dynamo.State, t float64) {
	theta := x[f.idx]
	if f.samples > 0 {
		f.flips += abs(crossing(theta) - crossing(f.last))
	}
	f.last = theta
	f.samples++
}

func (f *Flips) Value() float64 { return float64(f.flips) }

func (f *Flips) Reset() {
	f.last = 0
	f.flips = 0
	f.samples = 0
}

// crossing is the index of the (2k-1)π..(2k+1)π band holding theta.
func crossing(theta float64) int {
	return int(math.Floor((theta + math.Pi) / (2 * math.Pi)))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
