package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/poisson/internal/grid"
	"github.com/san-kum/poisson/internal/solver"
	"github.com/san-kum/poisson/internal/sweep"
)

const (
	DefaultNX            = 40
	DefaultNY            = 30
	DefaultLX            = 2.0
	DefaultLY            = 1.5
	DefaultTolerance     = solver.DefaultTolerance
	DefaultMaxIterations = solver.DefaultMaxIterations
	DefaultSweepStart    = 1.0
	DefaultSweepStop     = 2.0
	DefaultSweepStep     = 0.05
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Grid          GridConfig       `yaml:"grid"`
	Boundary      []BoundaryConfig `yaml:"boundary" envPrefix:"POISSON_BOUNDARY_"`
	Source        float64          `yaml:"source" env:"POISSON_SOURCE"`
	Tolerance     float64          `yaml:"tolerance" env:"POISSON_TOLERANCE"`
	MaxIterations int              `yaml:"max_iterations" env:"POISSON_MAX_ITERATIONS"`
	Interior      string           `yaml:"interior" env:"POISSON_INTERIOR"`
	Workers       int              `yaml:"workers" env:"POISSON_WORKERS"`
	Sweep         SweepConfig      `yaml:"sweep"`
}

type GridConfig struct {
	NX int     `yaml:"nx" env:"POISSON_NX"`
	NY int     `yaml:"ny" env:"POISSON_NY"`
	LX float64 `yaml:"lx" env:"POISSON_LX"`
	LY float64 `yaml:"ly" env:"POISSON_LY"`
}

// BoundaryConfig fixes Value on the part of Edge between the fractional
// positions From and To.
type BoundaryConfig struct {
	Edge  string  `yaml:"edge" env:"EDGE"`
	From  float64 `yaml:"from" env:"FROM"`
	To    float64 `yaml:"to" env:"TO"`
	Value float64 `yaml:"value" env:"VALUE"`
}

// SweepConfig lists factors explicitly or as the half-open range
// [Start, Stop) with increment Step. Factors wins when set.
type SweepConfig struct {
	Start   float64   `yaml:"start" env:"POISSON_SWEEP_START"`
	Stop    float64   `yaml:"stop" env:"POISSON_SWEEP_STOP"`
	Step    float64   `yaml:"step" env:"POISSON_SWEEP_STEP"`
	Factors []float64 `yaml:"factors,omitempty" env:"POISSON_SWEEP_FACTORS" envSeparator:","`
}

func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{NX: DefaultNX, NY: DefaultNY, LX: DefaultLX, LY: DefaultLY},
		Boundary: []BoundaryConfig{
			{Edge: "west", From: 1.0 / 3, To: 2.0 / 3, Value: 1.0},
		},
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		Interior:      "full",
		Workers:       1,
		Sweep: SweepConfig{
			Start: DefaultSweepStart,
			Stop:  DefaultSweepStop,
			Step:  DefaultSweepStep,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the file at path onto base. Keys absent from the file
// keep base's values; a boundary list in the file replaces base's list.
func LoadInto(path string, base *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from POISSON_* variables that are set.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Grid.NX < 3 || c.Grid.NY < 3 {
		return fmt.Errorf("%w: grid %dx%d: %w", ErrInvalidConfig, c.Grid.NX, c.Grid.NY, grid.ErrInvalidGrid)
	}
	if c.Grid.LX <= 0 || c.Grid.LY <= 0 {
		return fmt.Errorf("%w: extents %gx%g: %w", ErrInvalidConfig, c.Grid.LX, c.Grid.LY, grid.ErrInvalidExtent)
	}
	for i, b := range c.Boundary {
		if _, err := grid.ParseEdge(b.Edge); err != nil {
			return fmt.Errorf("%w: boundary %d: %v", ErrInvalidConfig, i, err)
		}
		if b.From < 0 || b.To > 1 || b.From >= b.To {
			return fmt.Errorf("%w: boundary %d: span [%g,%g) outside [0,1]", ErrInvalidConfig, i, b.From, b.To)
		}
	}
	if _, err := solver.ParseInterior(c.Interior); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance %g: %w", ErrInvalidConfig, c.Tolerance, solver.ErrInvalidTolerance)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max_iterations %d: %w", ErrInvalidConfig, c.MaxIterations, solver.ErrInvalidBudget)
	}
	if len(c.Sweep.Factors) == 0 {
		if _, err := sweep.Range(c.Sweep.Start, c.Sweep.Stop, c.Sweep.Step); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// SolverConfig converts the run parameters. Call Validate first.
func (c *Config) SolverConfig() solver.Config {
	interior, _ := solver.ParseInterior(c.Interior)
	return solver.Config{
		Tolerance:     c.Tolerance,
		MaxIterations: c.MaxIterations,
		Source:        c.Source,
		Interior:      interior,
		Workers:       c.Workers,
	}
}

// Factors returns the relaxation factors to scan.
func (c *Config) Factors() ([]float64, error) {
	if len(c.Sweep.Factors) > 0 {
		return append([]float64(nil), c.Sweep.Factors...), nil
	}
	return sweep.Range(c.Sweep.Start, c.Sweep.Stop, c.Sweep.Step)
}

// BuildGrid allocates the mesh and applies every boundary strip in order.
func (c *Config) BuildGrid() (*grid.Grid, error) {
	g, err := grid.New(c.Grid.NX, c.Grid.NY, c.Grid.LX, c.Grid.LY)
	if err != nil {
		return nil, err
	}
	for i, b := range c.Boundary {
		edge, err := grid.ParseEdge(b.Edge)
		if err != nil {
			return nil, fmt.Errorf("boundary %d: %w", i, err)
		}
		r := grid.Strip(edge, g, b.From, b.To)
		if err := g.ApplyBoundary([]grid.Range{r}, b.Value); err != nil {
			return nil, fmt.Errorf("boundary %d: %w", i, err)
		}
	}
	return g, nil
}
