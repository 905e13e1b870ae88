// Package mathutil provides integer math helpers: checked int64 arithmetic and a
// signed 128-bit accumulator for sums that may exceed int64.
package mathutil

import (
	"errors"
	"math"
	"math/bits"
)

// Sentinel errors.
var (
	// ErrOverflow is returned when a checked operation does not fit the result type.
	ErrOverflow = errors.New("mathutil: integer overflow")
	// ErrInvalidNumber is returned when a decimal string cannot be parsed.
	ErrInvalidNumber = errors.New("mathutil: invalid number")
)

// AddInt64 returns a+b, or ErrOverflow if the result does not fit in int64.
func AddInt64(a, b int64) (int64, error) {
	sum := a + b

	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrOverflow
	}

	return sum, nil
}

// SubInt64 returns a-b, or ErrOverflow if the result does not fit in int64.
func SubInt64(a, b int64) (int64, error) {
	diff := a - b

	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, ErrOverflow
	}

	return diff, nil
}

// MulNonNegative returns a*b for non-negative operands, or ErrOverflow if the
// product does not fit in int64. Negative operands are rejected with ErrOverflow.
func MulNonNegative(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, ErrOverflow
	}

	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, ErrOverflow
	}

	return int64(lo), nil
}

// Min calculates the minimum of two 64-bit integers.
func Min(a, b int64) int64 {
	if a < b {
		return a
	}

	return b
}
