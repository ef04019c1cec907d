package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/integrators"
	"github.com/san-kum/dpendulum/internal/physics"
	"github.com/san-kum/dpendulum/internal/sim"
)

var _ = Describe("Solver", func() {
	var (
		solver *sim.Solver
		params physics.Params
		ctx    context.Context
	)

	BeforeEach(func() {
		solver = sim.NewSolver(integrators.NewRK45())
		params = physics.DefaultParams()
		ctx = context.Background()
	})

	Describe("output grid", func() {
		It("samples exactly at multiples of dt", func() {
			tr, err := solver.Run(ctx, dynamo.NewState(1, 0, 1.5, 0), params, 3.0, 0.01)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Len()).To(Equal(301))

			for i, t := range tr.Times {
				Expect(t).To(Equal(float64(i) * 0.01))
			}
		})

		It("drops the trailing partial interval", func() {
			tr, err := solver.Run(ctx, dynamo.NewState(1, 0, 1, 0), params, 1.05, 0.1)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Len()).To(Equal(11))

			t, _ := tr.Last()
			Expect(t).To(BeNumerically("~", 1.0, 1e-12))
		})
	})

	It("is deterministic", func() {
		x0 := dynamo.NewState(2*math.Pi/3, 0, 3*math.Pi/4, 0)

		a, err := solver.Run(ctx, x0, params, 10, 0.01)
		Expect(err).NotTo(HaveOccurred())
		b, err := sim.NewSolver(integrators.NewRK45()).Run(ctx, x0, params, 10, 0.01)
		Expect(err).NotTo(HaveOccurred())

		Expect(a.States).To(Equal(b.States))
		Expect(a.Times).To(Equal(b.Times))
	})

	It("leaves the hanging equilibrium at rest", func() {
		tr, err := solver.Run(ctx, dynamo.State{}, params, 5, 0.01)
		Expect(err).NotTo(HaveOccurred())

		for _, x := range tr.States {
			Expect(x).To(Equal(dynamo.State{}))
		}
	})

	It("keeps the inverted equilibrium in place", func() {
		x0 := dynamo.NewState(math.Pi, 0, math.Pi, 0)
		tr, err := solver.Run(ctx, x0, params, 1, 0.01)
		Expect(err).NotTo(HaveOccurred())

		_, last := tr.Last()
		Expect(last.Sub(x0).Norm()).To(BeNumerically("<", 1e-9))
	})

	It("conserves energy over a long chaotic run", func() {
		x0 := dynamo.NewState(2*math.Pi/3, 0, 3*math.Pi/4, 0)
		tr, err := solver.Run(ctx, x0, params, 1000, 0.01)
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Len()).To(Equal(100001))
		Expect(tr.FirstInvalid()).To(Equal(-1))

		energies := tr.Energies(params)
		e0 := energies[0]
		for _, e := range energies {
			Expect(math.Abs(e-e0) / math.Abs(e0)).To(BeNumerically("<", 0.01))
		}
	})

	It("agrees with fixed-step RK4 on a fine grid", func() {
		x0 := dynamo.NewState(0.1, 0, 0.1, 0)
		adaptive, err := solver.Run(ctx, x0, params, 2, 0.001)
		Expect(err).NotTo(HaveOccurred())
		fixed, err := sim.NewSolver(integrators.NewRK4()).Run(ctx, x0, params, 2, 0.001)
		Expect(err).NotTo(HaveOccurred())

		_, a := adaptive.Last()
		_, f := fixed.Last()
		Expect(a.Sub(f).Norm()).To(BeNumerically("<", 1e-8))
	})

	Context("with perturbed initial conditions", func() {
		It("diverges exponentially in the chaotic regime", func() {
			x0s := sim.Perturb(dynamo.NewState(2*math.Pi/3, 0, 3*math.Pi/4, 0), dynamo.Theta1, 2, 1e-8)
			results, err := sim.NewEnsemble(solver).Run(ctx, x0s, params, 20, 0.01)
			Expect(err).NotTo(HaveOccurred())

			_, a := results[0].Last()
			_, b := results[1].Last()
			Expect(a.Sub(b).Norm()).To(BeNumerically(">", 1e-4))
		})
	})
})
