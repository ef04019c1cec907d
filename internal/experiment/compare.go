package experiment

import (
	"context"
	"sync"
	"time"

	"github.com/san-kum/dpendulum/internal/config"
)

// Comparison is the outcome of one integrator on a shared configuration.
type Comparison struct {
	Integrator string
	Result     *Result
	Elapsed    time.Duration
	Err        error
}

// Compare runs cfg once per integrator, concurrently. A failing integrator
// does not stop the others; its error is reported in its Comparison.
func Compare(ctx context.Context, cfg *config.Config, names []string) ([]Comparison, error) {
	out := make([]Comparison, len(names))
	exps := make([]*Experiment, len(names))

	for i, name := range names {
		c := *cfg
		c.Integrator = name
		exp, err := New(&c)
		if err != nil {
			return nil, err
		}
		exps[i] = exp
	}

	var wg sync.WaitGroup
	for i, exp := range exps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			res, err := exp.Run(ctx)
			out[i] = Comparison{
				Integrator: names[i],
				Result:     res,
				Elapsed:    time.Since(start),
				Err:        err,
			}
		}()
	}
	wg.Wait()

	return out, ctx.Err()
}
