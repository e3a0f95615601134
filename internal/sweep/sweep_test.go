package sweep_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/poisson/internal/grid"
	"github.com/san-kum/poisson/internal/solver"
	"github.com/san-kum/poisson/internal/sweep"
)

func referenceGrid() *grid.Grid {
	g, err := grid.New(40, 30, 2.0, 1.5)
	Expect(err).NotTo(HaveOccurred())
	Expect(g.ApplyBoundary([]grid.Range{grid.MiddleThird(grid.West, g)}, 1.0)).To(Succeed())
	return g
}

var _ = Describe("Range", func() {
	It("is half-open and does not drift", func() {
		betas, err := sweep.Range(1.0, 2.0, 0.05)
		Expect(err).NotTo(HaveOccurred())
		Expect(betas).To(HaveLen(20))
		Expect(betas[0]).To(Equal(1.0))
		Expect(betas[19]).To(BeNumerically("~", 1.95, 1e-12))
		Expect(betas[19]).To(BeNumerically("<", 2.0))
	})

	It("rejects empty and backwards ranges", func() {
		_, err := sweep.Range(1, 2, 0)
		Expect(err).To(MatchError(sweep.ErrInvalidRange))
		_, err = sweep.Range(2, 1, 0.1)
		Expect(err).To(MatchError(sweep.ErrInvalidRange))
	})
})

var _ = Describe("Sweeper", func() {
	var (
		initial *grid.Grid
		cfg     solver.Config
		ctx     context.Context
	)

	BeforeEach(func() {
		initial = referenceGrid()
		cfg = solver.DefaultConfig()
		ctx = context.Background()
	})

	It("fails fast without factors", func() {
		_, err := sweep.New(cfg).Run(ctx, initial, nil)
		Expect(err).To(MatchError(sweep.ErrNoFactors))
	})

	It("fails fast on an invalid factor before running anything", func() {
		calls := 0
		s := sweep.New(cfg, sweep.WithProgress(func(int, sweep.Run) { calls++ }))
		_, err := s.Run(ctx, initial, []float64{1.2, 2.0})
		Expect(err).To(MatchError(solver.ErrInvalidFactor))
		Expect(calls).To(BeZero())
	})

	It("records every factor in input order without touching the initial field", func() {
		before := initial.Values()
		betas := []float64{1.9, 1.0, 1.5}

		table, err := sweep.New(cfg, sweep.WithWorkers(3)).Run(ctx, initial, betas)
		Expect(err).NotTo(HaveOccurred())
		Expect(initial.Values()).To(Equal(before))

		Expect(table.Runs).To(HaveLen(3))
		for i, run := range table.Runs {
			Expect(run.Beta).To(Equal(betas[i]))
			Expect(run.Status).To(Equal(solver.StatusConverged))
			Expect(run.Field).NotTo(BeNil())
			Expect(run.History).To(HaveLen(run.Iterations))
		}
		Expect(table.Runs[0].Field).NotTo(BeIdenticalTo(table.Runs[1].Field))
	})

	It("matches an independent solve for each factor", func() {
		table, err := sweep.New(cfg, sweep.WithWorkers(2)).Run(ctx, initial, []float64{1.3, 1.7})
		Expect(err).NotTo(HaveOccurred())

		for _, run := range table.Runs {
			sv, err := solver.New(solver.SORMode(run.Beta), cfg)
			Expect(err).NotTo(HaveOccurred())
			res, err := sv.Solve(initial)
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Iterations).To(Equal(res.Iterations))
			Expect(run.Field.Values()).To(Equal(res.Field.Values()))
		}
	})

	It("gives the same table sequentially and in parallel", func() {
		betas := []float64{1.1, 1.4, 1.6, 1.8}
		seq, err := sweep.New(cfg, sweep.WithWorkers(1)).Run(ctx, initial, betas)
		Expect(err).NotTo(HaveOccurred())
		par, err := sweep.New(cfg, sweep.WithWorkers(4)).Run(ctx, initial, betas)
		Expect(err).NotTo(HaveOccurred())

		Expect(par.Iterations()).To(Equal(seq.Iterations()))
		Expect(par.Best).To(Equal(seq.Best))
	})

	It("selects an interior optimum over [1, 2)", func() {
		betas, err := sweep.Range(1.0, 2.0, 0.05)
		Expect(err).NotTo(HaveOccurred())

		table, err := sweep.New(cfg, sweep.WithWorkers(4)).Run(ctx, initial, betas)
		Expect(err).NotTo(HaveOccurred())

		iters := table.Iterations()
		best := table.Best
		Expect(best).To(BeNumerically(">", 0))
		Expect(best).To(BeNumerically("<", len(betas)-1))
		Expect(iters[0]).To(BeNumerically(">", iters[best]))
		Expect(iters[len(iters)-1]).To(BeNumerically(">", iters[best]))
		for _, v := range iters {
			Expect(v).To(BeNumerically(">=", iters[best]))
		}
	})

	It("breaks ties by first occurrence", func() {
		table, err := sweep.New(cfg, sweep.WithWorkers(3)).Run(ctx, initial, []float64{1.6, 1.6, 1.6})
		Expect(err).NotTo(HaveOccurred())
		Expect(table.Best).To(Equal(0))
	})

	It("keeps evaluating factors after one exhausts the budget", func() {
		cfg.MaxIterations = 60
		table, err := sweep.New(cfg).Run(ctx, initial, []float64{1.0, 1.85})
		Expect(err).NotTo(HaveOccurred())

		Expect(table.Runs[0].Status).To(Equal(solver.StatusMaxIterations))
		Expect(table.Runs[0].Iterations).To(Equal(60))
		Expect(table.Runs[0].Field.IsFinite()).To(BeTrue())
		Expect(table.Runs[1].Iterations).To(BeNumerically("<=", 60))
	})

	It("reports progress once per factor", func() {
		var (
			mu   sync.Mutex
			seen = map[int]float64{}
		)
		progress := func(i int, run sweep.Run) {
			mu.Lock()
			defer mu.Unlock()
			seen[i] = run.Beta
		}

		_, err := sweep.New(cfg, sweep.WithWorkers(2), sweep.WithProgress(progress)).
			Run(ctx, initial, []float64{1.2, 1.5, 1.8})
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(Equal(map[int]float64{0: 1.2, 1: 1.5, 2: 1.8}))
	})

	It("does not start factors once the context is canceled", func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := sweep.New(cfg).Run(canceled, initial, []float64{1.5})
		Expect(err).To(MatchError(context.Canceled))
	})

	It("prunes every field but the best", func() {
		table, err := sweep.New(cfg, sweep.WithWorkers(2)).Run(ctx, initial, []float64{1.2, 1.8})
		Expect(err).NotTo(HaveOccurred())

		table.Prune()
		for i, run := range table.Runs {
			if i == table.Best {
				Expect(run.Field).NotTo(BeNil())
			} else {
				Expect(run.Field).To(BeNil())
			}
		}
		Expect(table.BestRun().Beta).To(Equal(1.8))
	})
})
