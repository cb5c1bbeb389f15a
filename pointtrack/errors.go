package pointtrack

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrOutOfRange is returned for unknown object ids, user-status bit indices beyond the bit width and window sizes beyond image bounds
	ErrOutOfRange = errors.New("out of range")
	// ErrNotReady is returned when a point is requested before any grayscale frame has been processed
	ErrNotReady = errors.New("no frame processed yet")
	// ErrTooClose is returned when a new point lies within proximity threshold of an existing one
	ErrTooClose = errors.New("too close to an existing point")
	// ErrNothingToSelect is returned when there is no point to activate
	ErrNothingToSelect = errors.New("nothing to select")
	// ErrNothingToDelete is returned when the active point has no snapshot at the current frame
	ErrNothingToDelete = errors.New("nothing to delete")
	// ErrNoActivePoint is returned by operations on the active point while none is selected
	ErrNoActivePoint = errors.New("no active point")
)

// ContractViolation is the panic value raised when positional arrays disagree in length
// or any other caller-side invariant that trajectories depend on is broken.
type ContractViolation struct {
	What string
}

func (cv ContractViolation) Error() string {
	return "contract violation: " + cv.What
}

func assertSameLength(what string, lengths ...int) {
	for i := 1; i < len(lengths); i++ {
		if lengths[i] != lengths[0] {
			panic(ContractViolation{What: fmt.Sprintf("%s: lengths differ %v", what, lengths)})
		}
	}
}

func outOfRangef(format string, args ...any) error {
	return errors.Wrapf(ErrOutOfRange, format, args...)
}
