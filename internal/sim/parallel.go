package sim

import (
	"context"
	"runtime"

	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/physics"
	"golang.org/x/sync/errgroup"
)

// Ensemble integrates many initial states under the same parameters. Every
// run gets its own solver clone, so runs share nothing mutable.
type Ensemble struct {
	base  *Solver
	limit int
}

func NewEnsemble(s *Solver) *Ensemble {
	return &Ensemble{base: s, limit: runtime.GOMAXPROCS(0)}
}

// SetLimit bounds the number of concurrent runs. n <= 0 means GOMAXPROCS.
func (e *Ensemble) SetLimit(n int) {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	e.limit = n
}

// Run returns one trajectory per initial state, in input order. The first
// failing run cancels the others and its error is returned.
func (e *Ensemble) Run(ctx context.Context, x0s []dynamo.State, p physics.Params, tMax, dt float64) ([]*Trajectory, error) {
	results := make([]*Trajectory, len(x0s))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i, x0 := range x0s {
		g.Go(func() error {
			tr, err := e.base.Clone().Run(ctx, x0, p, tMax, dt)
			if err != nil {
				return err
			}
			results[i] = tr
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Perturb returns n copies of x0 where copy k has component idx shifted by
// k*delta. Copy 0 is x0 itself.
func Perturb(x0 dynamo.State, idx, n int, delta float64) []dynamo.State {
	out := make([]dynamo.State, n)
	for k := range out {
		x := x0
		x[idx] += float64(k) * delta
		out[k] = x
	}
	return out
}
