package filter

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned by constructors given an impossible
	// configuration: zero capacity, a probability outside (0, 1), or an
	// unsupported width.
	ErrInvalidParameter = errors.New("invalid filter parameter")

	// ErrFilterFull is returned when an insertion cannot be placed. The filter
	// is left exactly as it was before the call.
	ErrFilterFull = errors.New("filter is full")
)

// InvalidParameter wraps ErrInvalidParameter with a description.
func InvalidParameter(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// CheckCapacity validates an expected item count.
func CheckCapacity(capacity int) error {
	if capacity <= 0 {
		return InvalidParameter("capacity must be positive, got %d", capacity)
	}
	return nil
}

// CheckProbability validates a target false positive probability.
func CheckProbability(fpp float64) error {
	if !(fpp > 0 && fpp < 1) {
		return InvalidParameter("false positive probability must be in (0, 1), got %v", fpp)
	}
	return nil
}
