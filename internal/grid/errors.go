package grid

import "errors"

var (
	// ErrInvalidGrid indicates dimensions too small to hold an interior point.
	ErrInvalidGrid = errors.New("grid: need at least 3 points per axis")

	// ErrInvalidExtent indicates a non-positive or non-finite physical extent.
	ErrInvalidExtent = errors.New("grid: extents must be positive and finite")

	// ErrOutsideBoundary indicates a boundary range that does not fit its edge.
	ErrOutsideBoundary = errors.New("grid: boundary range outside edge")

	// ErrShapeMismatch indicates two grids with different dimensions.
	ErrShapeMismatch = errors.New("grid: shape mismatch")
)
