// Package safeconv provides integer conversions that check their bounds.
package safeconv

import (
	"errors"
	"fmt"
)

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// MinInt is the minimum value for int type (platform-dependent).
const MinInt = -MaxInt - 1

// ErrOverflow indicates a value that does not fit the target type.
var ErrOverflow = errors.New("safeconv: value out of range")

// Int64ToInt converts v to int, failing when int is narrower than v needs.
func Int64ToInt(v int64) (int, error) {
	if v > int64(MaxInt) || v < int64(MinInt) {
		return 0, fmt.Errorf("%w: %d does not fit int", ErrOverflow, v)
	}

	return int(v), nil
}

// MustInt64ToInt converts int64 to int, panics on overflow.
// Use only when overflow is logically impossible.
func MustInt64ToInt(v int64) int {
	n, err := Int64ToInt(v)
	if err != nil {
		panic("safeconv: int64 to int overflow")
	}

	return n
}

// MustUintptrToInt converts uintptr to int, panics on overflow.
// Use only when overflow is logically impossible, as for file descriptors.
func MustUintptrToInt(v uintptr) int {
	if uint64(v) > uint64(MaxInt) {
		panic("safeconv: uintptr to int overflow")
	}

	return int(v)
}
