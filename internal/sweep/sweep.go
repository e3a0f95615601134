// Package sweep scans relaxation factors and picks the one that converges
// in the fewest sweeps.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/poisson/internal/grid"
	"github.com/san-kum/poisson/internal/solver"
)

var (
	ErrNoFactors    = errors.New("sweep: no relaxation factors given")
	ErrInvalidRange = errors.New("sweep: invalid factor range")
)

// Run is the outcome of one factor.
type Run struct {
	Beta       float64
	Iterations int
	Elapsed    time.Duration
	Status     solver.Status
	Residual   float64
	History    []float64
	Field      *grid.Grid
}

// Table holds every run in input order and the index of the best one.
type Table struct {
	Runs []Run
	Best int
}

func (t *Table) BestRun() Run { return t.Runs[t.Best] }

// Prune drops the fields of every run except the best.
func (t *Table) Prune() {
	for i := range t.Runs {
		if i != t.Best {
			t.Runs[i].Field = nil
			t.Runs[i].History = nil
		}
	}
}

// Iterations returns the iteration counts in input order.
func (t *Table) Iterations() []float64 {
	out := make([]float64, len(t.Runs))
	for i, r := range t.Runs {
		out[i] = float64(r.Iterations)
	}
	return out
}

// ProgressFunc is called once per finished factor. Calls may arrive
// concurrently and out of order.
type ProgressFunc func(index int, run Run)

type Option func(*Sweeper)

func WithWorkers(n int) Option {
	return func(s *Sweeper) { s.workers = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(s *Sweeper) { s.progress = fn }
}

type Sweeper struct {
	cfg      solver.Config
	workers  int
	logger   *zap.Logger
	progress ProgressFunc
}

func New(cfg solver.Config, opts ...Option) *Sweeper {
	s := &Sweeper{cfg: cfg, workers: 1, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run solves initial once per factor with SOR. Every run starts from its
// own copy of initial. A factor that exhausts the budget is recorded like
// any other; only invalid input fails the sweep. ctx is checked before each
// factor starts; a run already in progress always finishes.
func (s *Sweeper) Run(ctx context.Context, initial *grid.Grid, betas []float64) (*Table, error) {
	if len(betas) == 0 {
		return nil, ErrNoFactors
	}

	solvers := make([]*solver.Solver, len(betas))
	for i, b := range betas {
		sv, err := solver.New(solver.SORMode(b), s.cfg, solver.WithLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("factor %d (%g): %w", i, b, err)
		}
		solvers[i] = sv
	}

	table := &Table{Runs: make([]Run, len(betas))}

	g, gctx := errgroup.WithContext(ctx)
	if s.workers > 0 {
		g.SetLimit(s.workers)
	}
	for i := range solvers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := solvers[i].Solve(initial)
			if err != nil {
				return err
			}
			run := Run{
				Beta:       betas[i],
				Iterations: res.Iterations,
				Elapsed:    res.Elapsed,
				Status:     res.Status,
				Residual:   res.Residual,
				History:    res.History,
				Field:      res.Field,
			}
			table.Runs[i] = run

			s.logger.Debug("factor finished",
				zap.Float64("beta", run.Beta),
				zap.Int("iterations", run.Iterations),
				zap.Stringer("status", run.Status),
				zap.Duration("elapsed", run.Elapsed))
			if s.progress != nil {
				s.progress(i, run)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table.Best = selectBest(table.Runs)
	return table, nil
}

// selectBest returns the first index with the fewest iterations.
func selectBest(runs []Run) int {
	best := 0
	for i := 1; i < len(runs); i++ {
		if runs[i].Iterations < runs[best].Iterations {
			best = i
		}
	}
	return best
}

// Range returns start, start+step, ... for every value strictly below stop.
// Values are computed by multiplication so the grid does not drift.
func Range(start, stop, step float64) ([]float64, error) {
	if !(step > 0) || math.IsInf(step, 0) || !(stop > start) {
		return nil, fmt.Errorf("%w: start=%g stop=%g step=%g", ErrInvalidRange, start, stop, step)
	}
	n := int(math.Ceil((stop-start)/step - 1e-9))
	out := make([]float64, 0, n)
	for k := 0; k < n; k++ {
		v := start + float64(k)*step
		if v >= stop {
			break
		}
		out = append(out, v)
	}
	return out, nil
}
