package trim

import (
	"context"

	g "github.com/onsi/ginkgo/v2"
	o "github.com/onsi/gomega"

	"github.com/san-kum/iontrim/internal/target"
)

var _ = g.Describe("50 keV boron into silicon", func() {
	const ions = 200

	var (
		tgt *target.Compiled
		cfg Config
	)

	g.BeforeEach(func() {
		tgt = referenceTarget(g.GinkgoT())
		cfg = Config{Seed: 11, Workers: 4, EMin: DefaultEMin}
	})

	run := func(s Strategy) *Result {
		res, err := Execute(context.Background(), s, tgt, referenceBatch(g.GinkgoT(), ions), nil)
		o.Expect(err).NotTo(o.HaveOccurred())
		return res
	}

	g.DescribeTable("every strategy",
		func(newStrategy func(*target.Compiled, Config) Strategy) {
			res := run(newStrategy(tgt, cfg))

			g.By("leaving every ion in a terminal state")
			for _, ion := range res.Batch.Ions {
				if ion.Inside {
					o.Expect(ion.E).To(o.BeNumerically("<=", DefaultEMin))
					o.Expect(tgt.Inside(ion.Pos[2])).To(o.BeTrue())
				} else {
					o.Expect(tgt.Inside(ion.Pos[2])).To(o.BeFalse())
				}
				o.Expect(ion.E).To(o.BeNumerically(">=", 0))
			}

			g.By("stopping most ions at a plausible depth")
			sum := res.Summary
			o.Expect(sum.Total).To(o.Equal(ions))
			o.Expect(sum.Inside + sum.Backscattered + sum.Transmitted).To(o.Equal(ions))
			o.Expect(sum.Inside).To(o.BeNumerically(">", ions*9/10))
			o.Expect(sum.Transmitted).To(o.BeZero())
			o.Expect(sum.Depth.Mean.V).To(o.BeNumerically("~", 1600, 700))
			o.Expect(sum.Depth.Std.V).To(o.BeNumerically(">", 0))
			o.Expect(sum.Depth.Std.V).To(o.BeNumerically("<", sum.Depth.Mean.V))

			g.By("scattering symmetrically around the beam axis")
			o.Expect(sum.X.Mean.V).To(o.BeNumerically("~", 0, 5*sum.X.Mean.Err+1))
		},
		g.Entry(NameLoop, func(t *target.Compiled, c Config) Strategy { return NewLoop(t, c) }),
		g.Entry(NameBulk, func(t *target.Compiled, c Config) Strategy { return NewBulk(t, c) }),
		g.Entry(NameParallel, func(t *target.Compiled, c Config) Strategy { return NewParallel(t, c) }),
		g.Entry(NameParallelBulk, func(t *target.Compiled, c Config) Strategy { return NewParallelBulk(t, c) }),
	)

	g.It("gives statistically consistent depths across strategies", func() {
		loop := run(NewLoop(tgt, cfg)).Summary.Depth
		bulk := run(NewParallelBulk(tgt, cfg)).Summary.Depth

		tol := 5 * (loop.Mean.Err + bulk.Mean.Err)
		o.Expect(bulk.Mean.V).To(o.BeNumerically("~", loop.Mean.V, tol))
	})

	g.It("reproduces a parallel run with the same seed and workers", func() {
		a := run(NewParallelBulk(tgt, cfg))
		b := run(NewParallelBulk(tgt, cfg))
		o.Expect(a.Batch.Ions).To(o.Equal(b.Batch.Ions))
	})

	g.Context("with a cancelled context", func() {
		g.It("wraps the context error with the strategy name", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := NewBulk(tgt, cfg).Run(ctx, referenceBatch(g.GinkgoT(), 4), nil)
			o.Expect(err).To(o.MatchError(context.Canceled))
			o.Expect(err.Error()).To(o.HavePrefix(NameBulk + ":"))
		})
	})
})
