package solver

import (
	"fmt"
	"strconv"
	"strings"
)

// Rule selects how interior cells read their neighbours during a sweep.
type Rule int

const (
	// Jacobi reads only the previous iterate.
	Jacobi Rule = iota
	// GaussSeidel reads values already updated in the current sweep.
	GaussSeidel
	// SOR is Gauss-Seidel blended with the previous value by Mode.Beta.
	SOR
)

func (r Rule) String() string {
	switch r {
	case Jacobi:
		return "jacobi"
	case GaussSeidel:
		return "gauss-seidel"
	case SOR:
		return "sor"
	default:
		return "rule(" + strconv.Itoa(int(r)) + ")"
	}
}

// Mode is an update rule plus its relaxation factor. Beta is only
// meaningful for SOR; the constructors keep it at 1 otherwise.
type Mode struct {
	Rule Rule
	Beta float64
}

func JacobiMode() Mode      { return Mode{Rule: Jacobi, Beta: 1} }
func GaussSeidelMode() Mode { return Mode{Rule: GaussSeidel, Beta: 1} }
func SORMode(beta float64) Mode {
	return Mode{Rule: SOR, Beta: beta}
}

// Factor is the blending weight applied to each raw stencil value.
func (m Mode) Factor() float64 {
	if m.Rule == SOR {
		return m.Beta
	}
	return 1
}

// InPlace reports whether the sweep reads values written earlier in the
// same sweep.
func (m Mode) InPlace() bool { return m.Rule != Jacobi }

func (m Mode) String() string {
	if m.Rule == SOR {
		return fmt.Sprintf("sor(%.2f)", m.Beta)
	}
	return m.Rule.String()
}

func (m Mode) validate() error {
	switch m.Rule {
	case Jacobi, GaussSeidel:
		return nil
	case SOR:
		if !(m.Beta > 0 && m.Beta < 2) {
			return fmt.Errorf("%w: got %g", ErrInvalidFactor, m.Beta)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMode, m.Rule)
	}
}

// ParseMode maps a CLI or config name to a Mode. beta is used only for
// "sor".
func ParseMode(name string, beta float64) (Mode, error) {
	var m Mode
	switch strings.ToLower(name) {
	case "jacobi":
		m = JacobiMode()
	case "gauss-seidel", "gaussseidel", "gs":
		m = GaussSeidelMode()
	case "sor":
		m = SORMode(beta)
	default:
		return Mode{}, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	return m, m.validate()
}
