package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Grid is a uniform NX × NY mesh over [0,LX] × [0,LY].
type Grid struct {
	NX, NY int
	LX, LY float64
	DX, DY float64

	field *mat.Dense
}

// New allocates a zero field. It fails with ErrInvalidGrid when either axis
// has fewer than three points.
func New(nx, ny int, lx, ly float64) (*Grid, error) {
	if nx < 3 || ny < 3 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidGrid, nx, ny)
	}
	if !validExtent(lx) || !validExtent(ly) {
		return nil, fmt.Errorf("%w: got %gx%g", ErrInvalidExtent, lx, ly)
	}
	return &Grid{
		NX:    nx,
		NY:    ny,
		LX:    lx,
		LY:    ly,
		DX:    lx / float64(nx-1),
		DY:    ly / float64(ny-1),
		field: mat.NewDense(nx, ny, nil),
	}, nil
}

// FromValues rebuilds a grid from a row-per-i snapshot such as the one
// returned by Values.
func FromValues(values [][]float64, lx, ly float64) (*Grid, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty field", ErrInvalidGrid)
	}
	g, err := New(len(values), len(values[0]), lx, ly)
	if err != nil {
		return nil, err
	}
	for i, row := range values {
		if len(row) != g.NY {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrShapeMismatch, i, len(row), g.NY)
		}
		copy(g.field.RawRowView(i), row)
	}
	return g, nil
}

func validExtent(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func (g *Grid) At(i, j int) float64     { return g.field.At(i, j) }
func (g *Grid) Set(i, j int, v float64) { g.field.Set(i, j, v) }

// Row returns the backing storage of column-line i (all j values). Writes
// through the slice mutate the grid.
func (g *Grid) Row(i int) []float64 { return g.field.RawRowView(i) }

// Clone returns a deep copy that shares no storage with g.
func (g *Grid) Clone() *Grid {
	c := *g
	c.field = mat.DenseCopyOf(g.field)
	return &c
}

// CopyFrom overwrites g with the values of src.
func (g *Grid) CopyFrom(src *Grid) error {
	if !g.SameShape(src) {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, g.NX, g.NY, src.NX, src.NY)
	}
	g.field.Copy(src.field)
	return nil
}

func (g *Grid) SameShape(o *Grid) bool {
	return o != nil && g.NX == o.NX && g.NY == o.NY
}

// IsBoundary reports whether (i, j) lies on the outer frame.
func (g *Grid) IsBoundary(i, j int) bool {
	return i == 0 || j == 0 || i == g.NX-1 || j == g.NY-1
}

// Values returns an independent [i][j] snapshot.
func (g *Grid) Values() [][]float64 {
	out := make([][]float64, g.NX)
	for i := range out {
		out[i] = append([]float64(nil), g.field.RawRowView(i)...)
	}
	return out
}

// Range returns the smallest and largest field values.
func (g *Grid) Range() (lo, hi float64) {
	return mat.Min(g.field), mat.Max(g.field)
}

// IsFinite reports whether every value is neither NaN nor Inf.
func (g *Grid) IsFinite() bool {
	for i := 0; i < g.NX; i++ {
		for _, v := range g.field.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
