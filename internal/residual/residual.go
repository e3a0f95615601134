// Package residual measures the change between successive iterates.
package residual

import (
	"fmt"
	"math"

	"github.com/san-kum/poisson/internal/grid"
)

// MeanChange returns Σ|new−old| over every cell of the field, boundary
// included, divided by (NX−1)(NY−1). Boundary cells are never relaxed so
// they add zero; the normalisation keeps values comparable across runs of
// the same mesh.
func MeanChange(prev, next *grid.Grid) (float64, error) {
	if !prev.SameShape(next) {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", grid.ErrShapeMismatch, prev.NX, prev.NY, next.NX, next.NY)
	}
	return meanChange(prev, next), nil
}

// Must is MeanChange for callers that already guarantee matching shapes.
func Must(prev, next *grid.Grid) float64 {
	return meanChange(prev, next)
}

func meanChange(prev, next *grid.Grid) float64 {
	sum := 0.0
	for i := 0; i < prev.NX; i++ {
		a, b := prev.Row(i), next.Row(i)
		for j := range a {
			sum += math.Abs(b[j] - a[j])
		}
	}
	return sum / float64((prev.NX-1)*(prev.NY-1))
}
