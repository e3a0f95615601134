package solver

import (
	"fmt"
	"math"
	"strings"
)

const (
	DefaultTolerance     = 1e-4
	DefaultMaxIterations = 10000
)

// Interior selects which cells a sweep relaxes.
type Interior int

const (
	// InteriorFull relaxes 1 ≤ i ≤ NX−2, 1 ≤ j ≤ NY−2.
	InteriorFull Interior = iota
	// InteriorReference relaxes 1 ≤ i ≤ NX−3, 1 ≤ j ≤ NY−3, leaving the
	// last interior line on the far sides at its initial value.
	InteriorReference
)

func (b Interior) String() string {
	if b == InteriorReference {
		return "reference"
	}
	return "full"
}

func ParseInterior(s string) (Interior, error) {
	switch strings.ToLower(s) {
	case "", "full":
		return InteriorFull, nil
	case "reference":
		return InteriorReference, nil
	}
	return 0, fmt.Errorf("unknown interior bound: %q (want full or reference)", s)
}

// Config holds the run parameters shared by every mode.
type Config struct {
	Tolerance     float64
	MaxIterations int
	Source        float64
	Interior      Interior
	// Workers bounds the goroutines used by a Jacobi sweep. Values below 2
	// run the sweep on the calling goroutine.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		Workers:       1,
	}
}

func (c Config) validate() error {
	if !(c.Tolerance > 0) || math.IsInf(c.Tolerance, 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidTolerance, c.Tolerance)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidBudget, c.MaxIterations)
	}
	return nil
}
