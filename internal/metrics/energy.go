package metrics

import (
	"math"

	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/physics"
	"github.com/san-kum/dpendulum/internal/sim"
	"gonum.org/v1/gonum/stat"
)

// Report summarises the total energy along a trajectory.
type Report struct {
	Initial  float64 `json:"initial"`
	Final    float64 `json:"final"`
	Drift    float64 `json:"drift"`
	MaxDrift float64 `json:"max_drift"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Samples  int     `json:"samples"`
}

// EnergySeries returns the total energy of every state of tr.
func EnergySeries(tr *sim.Trajectory, p physics.Params) []float64 {
	return tr.Energies(p)
}

// RelativeDrift is |e1-e0|/|e0|, or |e1-e0| when e0 is zero.
func RelativeDrift(e0, e1 float64) float64 {
	if e0 == 0 {
		return math.Abs(e1 - e0)
	}
	return math.Abs(e1-e0) / math.Abs(e0)
}

// Energy computes the energy report of tr. An empty trajectory yields a
// zero Report.
func Energy(tr *sim.Trajectory, p physics.Params) Report {
	es := EnergySeries(tr, p)
	if len(es) == 0 {
		return Report{}
	}

	e0 := es[0]
	maxDrift := 0.0
	for _, e := range es {
		maxDrift = math.Max(maxDrift, RelativeDrift(e0, e))
	}

	r := Report{
		Initial:  e0,
		Final:    es[len(es)-1],
		MaxDrift: maxDrift,
		Mean:     stat.Mean(es, nil),
		Samples:  len(es),
	}
	r.Drift = RelativeDrift(r.Initial, r.Final)
	if len(es) > 1 {
		r.StdDev = stat.StdDev(es, nil)
	}
	return r
}

// EnergyDrift tracks the largest relative energy drift seen while stepping.
type EnergyDrift struct {
	name          string
	sys           dynamo.Hamiltonian
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(sys dynamo.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		sys:  sys,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	energy := e.sys.Energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++
	e.maxDrift = math.Max(e.maxDrift, RelativeDrift(e.initialEnergy, energy))
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

// Current returns the energy of the last observed state.
func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
