package pointtrack

import (
	"math/bits"
)

// UserStatusBits is width of user status bitmask: the native unsigned word size of the host
const UserStatusBits = bits.UintSize

// UserStatus is per-snapshot user classification bitmask
type UserStatus uint

// Set returns copy of status with bit i set (on) or cleared (off)
func (us UserStatus) Set(i int, on bool) (UserStatus, error) {
	if i < 0 || i >= UserStatusBits {
		return us, outOfRangef("user status bit %d (width %d)", i, UserStatusBits)
	}
	if on {
		return us | (1 << uint(i)), nil
	}
	return us &^ (1 << uint(i)), nil
}

// Bit reports whether bit i is set
func (us UserStatus) Bit(i int) (bool, error) {
	if i < 0 || i >= UserStatusBits {
		return false, outOfRangef("user status bit %d (width %d)", i, UserStatusBits)
	}
	return us&(1<<uint(i)) != 0, nil
}

// ClassificationRegister is fixed set of toggles mirrored into user status of the active point.
// Toggle i drives bit i.
type ClassificationRegister struct {
	toggles []bool
}

// NewClassificationRegister creates register with given number of toggles, all off
func NewClassificationRegister(count int) (*ClassificationRegister, error) {
	if count < 0 || count > UserStatusBits {
		return nil, outOfRangef("classification toggles %d (width %d)", count, UserStatusBits)
	}
	return &ClassificationRegister{
		toggles: make([]bool, count),
	}, nil
}

// Len returns number of toggles
func (reg *ClassificationRegister) Len() int {
	return len(reg.toggles)
}

// SetToggle switches toggle i
func (reg *ClassificationRegister) SetToggle(i int, on bool) error {
	if i < 0 || i >= len(reg.toggles) {
		return outOfRangef("classification toggle %d (count %d)", i, len(reg.toggles))
	}
	reg.toggles[i] = on
	return nil
}

// Apply writes every toggle into corresponding bit of status. Bits above Len() are left untouched
func (reg *ClassificationRegister) Apply(status UserStatus) (UserStatus, error) {
	var err error
	for i, on := range reg.toggles {
		status, err = status.Set(i, on)
		if err != nil {
			return status, err
		}
	}
	return status, nil
}
