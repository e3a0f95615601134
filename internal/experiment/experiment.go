// Package experiment wires a configuration into grids, solvers and sweeps.
package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/poisson/internal/config"
	"github.com/san-kum/poisson/internal/grid"
	"github.com/san-kum/poisson/internal/solver"
	"github.com/san-kum/poisson/internal/sweep"
)

type Experiment struct {
	cfg     *config.Config
	initial *grid.Grid
	logger  *zap.Logger
}

// New validates cfg and builds the boundary-conditioned initial guess.
func New(cfg *config.Config, logger *zap.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := cfg.BuildGrid()
	if err != nil {
		return nil, fmt.Errorf("build grid: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Experiment{cfg: cfg, initial: g, logger: logger}, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Initial returns a copy of the initial guess.
func (e *Experiment) Initial() *grid.Grid { return e.initial.Clone() }

func (e *Experiment) Solve(mode solver.Mode, opts ...solver.Option) (*solver.Result, error) {
	opts = append([]solver.Option{solver.WithLogger(e.logger)}, opts...)
	s, err := solver.New(mode, e.cfg.SolverConfig(), opts...)
	if err != nil {
		return nil, err
	}
	return s.Solve(e.initial)
}

// Sweep scans the configured factors. Jacobi row parallelism is turned off
// inside each run since the runs themselves are spread across workers.
func (e *Experiment) Sweep(ctx context.Context, opts ...sweep.Option) (*sweep.Table, error) {
	betas, err := e.cfg.Factors()
	if err != nil {
		return nil, err
	}
	sc := e.cfg.SolverConfig()
	sc.Workers = 1

	workers := e.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	opts = append([]sweep.Option{sweep.WithWorkers(workers), sweep.WithLogger(e.logger)}, opts...)
	return sweep.New(sc, opts...).Run(ctx, e.initial, betas)
}

// Report compares the three update rules on one problem.
type Report struct {
	Jacobi      *solver.Result
	GaussSeidel *solver.Result
	Sweep       *sweep.Table
}

// Speedups returns Jacobi/Gauss-Seidel and Gauss-Seidel/best-SOR
// iteration ratios.
func (r *Report) Speedups() (jacobiOverGS, gsOverSOR float64) {
	best := r.Sweep.BestRun()
	return ratio(r.Jacobi.Iterations, r.GaussSeidel.Iterations), ratio(r.GaussSeidel.Iterations, best.Iterations)
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// Compare runs Jacobi, Gauss-Seidel and the SOR sweep on the same initial
// field. Only the best sweep run keeps its field and history.
func (e *Experiment) Compare(ctx context.Context, opts ...sweep.Option) (*Report, error) {
	jac, err := e.Solve(solver.JacobiMode())
	if err != nil {
		return nil, fmt.Errorf("jacobi: %w", err)
	}
	gs, err := e.Solve(solver.GaussSeidelMode())
	if err != nil {
		return nil, fmt.Errorf("gauss-seidel: %w", err)
	}
	table, err := e.Sweep(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sor sweep: %w", err)
	}

	e.logger.Info("comparison finished",
		zap.Int("jacobi", jac.Iterations),
		zap.Int("gauss_seidel", gs.Iterations),
		zap.Float64("best_beta", table.BestRun().Beta),
		zap.Int("best_sor", table.BestRun().Iterations))

	table.Prune()
	return &Report{Jacobi: jac, GaussSeidel: gs, Sweep: table}, nil
}
