package solver

import "errors"

var (
	// ErrInvalidTolerance indicates a tolerance that is not positive and finite.
	ErrInvalidTolerance = errors.New("solver: tolerance must be positive")

	// ErrInvalidBudget indicates an iteration budget below one sweep.
	ErrInvalidBudget = errors.New("solver: max iterations must be at least 1")

	// ErrInvalidFactor indicates a relaxation factor outside (0, 2).
	ErrInvalidFactor = errors.New("solver: relaxation factor must lie in (0, 2)")

	// ErrUnknownMode indicates an update rule name that is not recognised.
	ErrUnknownMode = errors.New("solver: unknown update rule")

	// ErrNoField indicates Solve was called without an initial field.
	ErrNoField = errors.New("solver: nil initial field")
)
