package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySweep indicates a convergence sweep without entries.
	ErrEmptySweep = errors.New("analysis: empty sweep")

	// ErrInvalidSubintervals indicates a non-positive subdivision count in a sweep.
	ErrInvalidSubintervals = errors.New("analysis: subintervals must be positive")

	// ErrInvalidStep indicates a zero step in a step sweep.
	ErrInvalidStep = errors.New("analysis: step must be non-zero")

	// ErrInvalidPointCount indicates a derivative grid with fewer than one point.
	ErrInvalidPointCount = errors.New("analysis: point count must be positive")
)

// SweepError wraps an error with the sweep entry that caused it.
type SweepError struct {
	Index   int
	Value   float64
	Wrapped error
}

func (e *SweepError) Error() string {
	return fmt.Sprintf("sweep entry %d (%g): %v", e.Index, e.Value, e.Wrapped)
}

func (e *SweepError) Unwrap() error {
	return e.Wrapped
}
