package sim

import (
	"math"

	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/physics"
)

// Trajectory is the time series produced by one simulation run. Times[i] is
// the time of States[i].
type Trajectory struct {
	Times  []float64
	States []dynamo.State
	Stats  Stats
}

// Stats counts the work done by the solver.
type Stats struct {
	Accepted int
	Rejected int
}

// Row is the flat (t, θ1, ω1, θ2, ω2) view of one trajectory entry.
type Row struct {
	T      float64 `csv:"time" json:"t"`
	Theta1 float64 `csv:"theta1" json:"theta1"`
	Omega1 float64 `csv:"omega1" json:"omega1"`
	Theta2 float64 `csv:"theta2" json:"theta2"`
	Omega2 float64 `csv:"omega2" json:"omega2"`
}

func (r Row) State() dynamo.State {
	return dynamo.NewState(r.Theta1, r.Omega1, r.Theta2, r.Omega2)
}

func newTrajectory(capacity int) *Trajectory {
	return &Trajectory{
		Times:  make([]float64, 0, capacity),
		States: make([]dynamo.State, 0, capacity),
	}
}

// FromRows rebuilds a trajectory from its flat rows.
func FromRows(rows []Row) *Trajectory {
	tr := newTrajectory(len(rows))
	for _, r := range rows {
		tr.append(r.T, r.State())
	}
	return tr
}

func (tr *Trajectory) append(t float64, x dynamo.State) {
	tr.Times = append(tr.Times, t)
	tr.States = append(tr.States, x)
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

func (tr *Trajectory) At(i int) (float64, dynamo.State) {
	return tr.Times[i], tr.States[i]
}

func (tr *Trajectory) First() (float64, dynamo.State) { return tr.At(0) }

func (tr *Trajectory) Last() (float64, dynamo.State) { return tr.At(tr.Len() - 1) }

// Dt returns the grid spacing, or 0 for trajectories with fewer than two
// points.
func (tr *Trajectory) Dt() float64 {
	if tr.Len() < 2 {
		return 0
	}
	return tr.Times[1] - tr.Times[0]
}

func (tr *Trajectory) Rows() []Row {
	rows := make([]Row, tr.Len())
	for i, x := range tr.States {
		rows[i] = Row{
			T:      tr.Times[i],
			Theta1: x.Theta1(),
			Omega1: x.Omega1(),
			Theta2: x.Theta2(),
			Omega2: x.Omega2(),
		}
	}
	return rows
}

// Component extracts one state component (dynamo.Theta1, ...) as a series.
func (tr *Trajectory) Component(idx int) []float64 {
	out := make([]float64, tr.Len())
	for i, x := range tr.States {
		out[i] = x[idx]
	}
	return out
}

// FirstInvalid returns the index of the first entry with a non-finite time
// or state, or -1 when every entry is finite.
func (tr *Trajectory) FirstInvalid() int {
	for i, x := range tr.States {
		t := tr.Times[i]
		if !x.IsValid() || math.IsNaN(t) || math.IsInf(t, 0) {
			return i
		}
	}
	return -1
}

// Truncate returns a copy holding the first n entries.
func (tr *Trajectory) Truncate(n int) *Trajectory {
	if n > tr.Len() {
		n = tr.Len()
	}
	if n < 0 {
		n = 0
	}
	out := newTrajectory(n)
	out.Times = append(out.Times, tr.Times[:n]...)
	out.States = append(out.States, tr.States[:n]...)
	out.Stats = tr.Stats
	return out
}

// Energies evaluates the total energy of every state.
func (tr *Trajectory) Energies(p physics.Params) []float64 {
	return physics.TotalEnergies(tr.States, p)
}

// Positions converts every state to Cartesian bob positions.
func (tr *Trajectory) Positions(p physics.Params) []physics.Position {
	out := make([]physics.Position, tr.Len())
	for i, x := range tr.States {
		out[i] = physics.ToCartesian(x.Theta1(), x.Theta2(), p)
	}
	return out
}
