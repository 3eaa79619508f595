package coverage

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParams = errors.New("invalid sampling parameters")

	// ErrDegenerateGeometry marks a run over a bounding box with zero extent
	// along an axis. Sampling still completes; the axis is held constant.
	ErrDegenerateGeometry = errors.New("bounding box has zero width or height")
)

// SamplingExhaustedError is returned alongside a partial result when the
// attempt cap was reached before the requested number of samples was
// accepted.
type SamplingExhaustedError struct {
	Accepted   int
	SampleSize int
	Attempts   int
}

func (e *SamplingExhaustedError) Error() string {
	return fmt.Sprintf("sampling exhausted after %d attempts: accepted %d of %d samples",
		e.Attempts, e.Accepted, e.SampleSize)
}
