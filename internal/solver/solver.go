package solver

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/poisson/internal/grid"
	"github.com/san-kum/poisson/internal/residual"
	"github.com/san-kum/poisson/internal/stencil"
)

// minRowsPerWorker keeps tiny meshes from paying goroutine overhead.
const minRowsPerWorker = 8

// Status is the terminal state of a run.
type Status int

const (
	StatusRunning Status = iota
	StatusConverged
	StatusMaxIterations
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusMaxIterations:
		return "max-iterations"
	default:
		return "running"
	}
}

// Result is the outcome of one run. Field is owned by the caller.
type Result struct {
	Mode       Mode
	Field      *grid.Grid
	Iterations int
	Status     Status
	Residual   float64
	History    []float64
	Elapsed    time.Duration
}

func (r *Result) Converged() bool { return r.Status == StatusConverged }

// Observer is notified after every completed sweep.
type Observer interface {
	OnSweep(mode Mode, iteration int, residual float64)
}

type ObserverFunc func(mode Mode, iteration int, residual float64)

func (f ObserverFunc) OnSweep(mode Mode, iteration int, residual float64) {
	f(mode, iteration, residual)
}

type Option func(*Solver)

func WithLogger(l *zap.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Solver) { s.observers = append(s.observers, o) }
}

type Solver struct {
	mode      Mode
	cfg       Config
	logger    *zap.Logger
	observers []Observer
}

func New(mode Mode, cfg Config, opts ...Option) (*Solver, error) {
	if err := mode.validate(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s := &Solver{
		mode:   mode,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Solver) Mode() Mode     { return s.mode }
func (s *Solver) Config() Config { return s.cfg }

// Solve relaxes a private copy of initial until convergence or until the
// iteration budget is spent. initial is never modified.
func (s *Solver) Solve(initial *grid.Grid) (*Result, error) {
	if initial == nil {
		return nil, ErrNoField
	}

	start := time.Now()
	cur, next := initial.Clone(), initial.Clone()
	coef := stencil.New(initial.DX, initial.DY, s.cfg.Source)

	result := &Result{
		Mode:    s.mode,
		Status:  StatusRunning,
		History: make([]float64, 0, min(s.cfg.MaxIterations, 1024)),
	}

	for it := 1; it <= s.cfg.MaxIterations; it++ {
		s.sweep(coef, cur, next)
		r := residual.Must(cur, next)
		cur, next = next, cur

		result.Iterations = it
		result.Residual = r
		result.History = append(result.History, r)
		for _, o := range s.observers {
			o.OnSweep(s.mode, it, r)
		}

		if r < s.cfg.Tolerance {
			result.Status = StatusConverged
			break
		}
	}

	if result.Status != StatusConverged {
		result.Status = StatusMaxIterations
		s.logger.Warn("relaxation did not converge within budget",
			zap.Stringer("mode", s.mode),
			zap.Int("iterations", result.Iterations),
			zap.Float64("residual", result.Residual),
			zap.Float64("tolerance", s.cfg.Tolerance))
	} else {
		s.logger.Debug("relaxation converged",
			zap.Stringer("mode", s.mode),
			zap.Int("iterations", result.Iterations),
			zap.Float64("residual", result.Residual))
	}

	result.Field = cur
	result.Elapsed = time.Since(start)
	return result, nil
}

// Step runs a single sweep on field in place and returns the residual
// between the field before and after it.
func (s *Solver) Step(field *grid.Grid) (float64, error) {
	if field == nil {
		return 0, ErrNoField
	}
	prev := field.Clone()
	s.sweep(stencil.New(field.DX, field.DY, s.cfg.Source), prev, field)
	return residual.Must(prev, field), nil
}

// sweep writes the iterate that follows cur into next. Boundary cells of
// next must already equal those of cur.
func (s *Solver) sweep(coef stencil.Coefficients, cur, next *grid.Grid) {
	i0, i1, j0, j1 := s.bounds(cur)

	if !s.mode.InPlace() {
		parallelFor(i0, i1, s.cfg.Workers, minRowsPerWorker, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				west, mid, east := cur.Row(i-1), cur.Row(i), cur.Row(i+1)
				dst := next.Row(i)
				for j := j0; j < j1; j++ {
					dst[j] = coef.Apply(mid[j+1], mid[j-1], east[j], west[j])
				}
			}
		})
		return
	}

	if err := next.CopyFrom(cur); err != nil {
		panic(fmt.Sprintf("solver: sweep buffers diverged: %v", err))
	}
	beta := s.mode.Factor()
	for j := j0; j < j1; j++ {
		for i := i0; i < i1; i++ {
			west, mid, east := next.Row(i-1), next.Row(i), next.Row(i+1)
			raw := coef.Apply(mid[j+1], mid[j-1], east[j], west[j])
			mid[j] = stencil.Relax(raw, mid[j], beta)
		}
	}
}

// bounds returns the half-open interior index ranges for g.
func (s *Solver) bounds(g *grid.Grid) (i0, i1, j0, j1 int) {
	if s.cfg.Interior == InteriorReference {
		return 1, g.NX - 2, 1, g.NY - 2
	}
	return 1, g.NX - 1, 1, g.NY - 1
}
