// Package stencil evaluates the constant-coefficient 5-point Laplacian
// update for f_xx + f_yy = S on a uniform mesh.
package stencil

// Update returns the unrelaxed value at an interior point:
//
//	u* = [(north+south)/dy² + (east+west)/dx² − S] / (2/dx² + 2/dy²)
//
// North and south are the j±1 neighbours, east and west the i±1 neighbours.
func Update(north, south, east, west, dx, dy, source float64) float64 {
	return New(dx, dy, source).Apply(north, south, east, west)
}

// Coefficients caches the spacing-dependent factors of Update so the sweep
// loops do not recompute them per cell.
type Coefficients struct {
	invDX2 float64
	invDY2 float64
	source float64
	denom  float64
}

func New(dx, dy, source float64) Coefficients {
	ix, iy := 1/(dx*dx), 1/(dy*dy)
	return Coefficients{
		invDX2: ix,
		invDY2: iy,
		source: source,
		denom:  2*ix + 2*iy,
	}
}

func (c Coefficients) Apply(north, south, east, west float64) float64 {
	return ((north+south)*c.invDY2 + (east+west)*c.invDX2 - c.source) / c.denom
}

// Relax blends a raw update with the previous value:
// beta·u* + (1−beta)·old.
func Relax(raw, old, beta float64) float64 {
	return beta*raw + (1-beta)*old
}
