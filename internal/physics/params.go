package physics

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/dpendulum/internal/dynamo"
)

// StandardGravity is the standard acceleration of gravity in m/s².
const StandardGravity = 9.80665

const (
	DefaultMass   = 1.0
	DefaultLength = 1.0
)

// Params holds the physical constants of one simulation run. It is passed by
// value and never mutated; use With to derive a modified copy.
type Params struct {
	L1      float64 `json:"l1"` // rod lengths (m)
	L2      float64 `json:"l2"`
	M1      float64 `json:"m1"` // bob masses (kg)
	M2      float64 `json:"m2"`
	Gravity float64 `json:"gravity"` // m/s²
}

// NewParams builds Params with standard gravity.
func NewParams(l1, l2, m1, m2 float64) Params {
	return Params{L1: l1, L2: l2, M1: m1, M2: m2, Gravity: StandardGravity}
}

func DefaultParams() Params {
	return NewParams(DefaultLength, DefaultLength, DefaultMass, DefaultMass)
}

// Validate rejects non-positive or non-finite constants. The equations of
// motion have no division guard and rely on this check.
func (p Params) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"l1", p.L1},
		{"l2", p.L2},
		{"m1", p.M1},
		{"m2", p.M2},
		{"gravity", p.Gravity},
	}
	for _, c := range checks {
		if !(c.value > 0) || math.IsInf(c.value, 0) {
			return fmt.Errorf("%s must be positive and finite, got %g: %w", c.name, c.value, dynamo.ErrParameterBounds)
		}
	}
	return nil
}

// GetParams returns the constants keyed by name.
func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"l1":      p.L1,
		"l2":      p.L2,
		"m1":      p.M1,
		"m2":      p.M2,
		"gravity": p.Gravity,
	}
}

// ParamNames lists the names accepted by With, sorted.
func ParamNames() []string {
	names := make([]string, 0, 5)
	for k := range DefaultParams().GetParams() {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// With returns a copy of p with the named constant replaced.
func (p Params) With(name string, value float64) (Params, error) {
	switch name {
	case "l1":
		p.L1 = value
	case "l2":
		p.L2 = value
	case "m1":
		p.M1 = value
	case "m2":
		p.M2 = value
	case "gravity":
		p.Gravity = value
	default:
		return p, fmt.Errorf("unknown param: %s", name)
	}
	return p, nil
}
