package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint
}

func CheckPow2[T Number](number T, name string) error {
	if number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// CheckAlignment verifies that an alignment reported by the driver can be used with BindToAlignment
func CheckAlignment[T Number](alignment T, name string) error {
	if alignment < 1 {
		return cerrors.Wrapf(ZeroAlignmentError, "%s is %d", name, alignment)
	}
	return nil
}

func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

func AlignDown(value int, alignment uint) int {
	return value & int(^(alignment - 1))
}

// AlignUpAny rounds value up to the next multiple of alignment. Unlike AlignUp, alignment does not
// need to be a power of two.
func AlignUpAny(value int, alignment int) int {
	if alignment <= 1 {
		return value
	}
	remainder := value % alignment
	if remainder == 0 {
		return value
	}
	return value - remainder + alignment
}

// BindToAlignment returns the number of bytes a resource of the provided size occupies when it is
// placed in memory with the provided alignment.
//
// The result always covers at least one full alignment unit past the last aligned boundary below
// size, so a size which is already a multiple of alignment still receives an extra unit:
// BindToAlignment(256, 256) is 512. Block offsets depend on the extra unit.
func BindToAlignment(size int, alignment int) int {
	if size < alignment {
		return alignment
	}
	return size - (size % alignment) + alignment
}
