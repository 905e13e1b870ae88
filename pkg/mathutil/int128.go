package mathutil

import (
	"math"
	"math/big"
	"math/bits"
	"strconv"
)

// signBit is the top bit of the low word.
const signBit = uint64(1) << 63

// Int128 is a signed two's-complement 128-bit integer. The zero value is 0.
//
// Only the operations needed to accumulate and compare sums of int64 values
// are provided. Sums of up to 2^64 int64 terms cannot overflow it.
type Int128 struct {
	hi int64
	lo uint64
}

// FromInt64 widens v to 128 bits.
func FromInt64(v int64) Int128 {
	if v < 0 {
		return Int128{hi: -1, lo: uint64(v)}
	}

	return Int128{lo: uint64(v)}
}

// Add returns x+y.
func (x Int128) Add(y Int128) Int128 {
	lo, carry := bits.Add64(x.lo, y.lo, 0)

	return Int128{hi: x.hi + y.hi + int64(carry), lo: lo}
}

// AddInt64 returns x+v.
func (x Int128) AddInt64(v int64) Int128 {
	return x.Add(FromInt64(v))
}

// Sub returns x-y.
func (x Int128) Sub(y Int128) Int128 {
	lo, borrow := bits.Sub64(x.lo, y.lo, 0)

	return Int128{hi: x.hi - y.hi - int64(borrow), lo: lo}
}

// Neg returns -x.
func (x Int128) Neg() Int128 {
	return Int128{}.Sub(x)
}

// Abs returns |x|.
func (x Int128) Abs() Int128 {
	if x.hi < 0 {
		return x.Neg()
	}

	return x
}

// Sign returns -1, 0 or +1.
func (x Int128) Sign() int {
	switch {
	case x.hi < 0:
		return -1
	case x.hi == 0 && x.lo == 0:
		return 0
	default:
		return 1
	}
}

// Cmp returns -1 if x < y, 0 if x == y, +1 if x > y.
func (x Int128) Cmp(y Int128) int {
	switch {
	case x.hi < y.hi:
		return -1
	case x.hi > y.hi:
		return 1
	case x.lo < y.lo:
		return -1
	case x.lo > y.lo:
		return 1
	default:
		return 0
	}
}

// IsInt64 reports whether x can be represented as an int64.
func (x Int128) IsInt64() bool {
	return (x.hi == 0 && x.lo < signBit) || (x.hi == -1 && x.lo >= signBit)
}

// Int64 returns the low 64 bits of x as an int64. The result is only
// meaningful when IsInt64 reports true.
func (x Int128) Int64() int64 {
	return int64(x.lo)
}

// Big returns x as a *big.Int.
func (x Int128) Big() *big.Int {
	v := new(big.Int).SetInt64(x.hi)
	v.Lsh(v, 64)

	return v.Add(v, new(big.Int).SetUint64(x.lo))
}

// String returns the base-10 representation of x.
func (x Int128) String() string {
	if x.IsInt64() {
		return strconv.FormatInt(x.Int64(), 10)
	}

	return x.Big().String()
}

// MarshalJSON encodes x as a JSON number of arbitrary length.
func (x Int128) MarshalJSON() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalJSON decodes a JSON number (or quoted number) into x.
func (x *Int128) UnmarshalJSON(data []byte) error {
	text := string(data)
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = unquoted
	}

	v, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return ErrInvalidNumber
	}

	parsed, err := FromBig(v)
	if err != nil {
		return err
	}

	*x = parsed

	return nil
}

// MarshalYAML encodes x as a YAML integer when it fits in int64 and as a
// decimal string otherwise.
func (x Int128) MarshalYAML() (any, error) {
	if x.IsInt64() {
		return x.Int64(), nil
	}

	return x.String(), nil
}

// Float64 returns the nearest float64 to x.
func (x Int128) Float64() float64 {
	if x.IsInt64() {
		return float64(x.Int64())
	}

	f, _ := new(big.Float).SetInt(x.Big()).Float64()

	return f
}

// FromBig converts v to Int128, returning ErrOverflow when v needs more than 128 bits.
func FromBig(v *big.Int) (Int128, error) {
	if v.BitLen() > 127 {
		return Int128{}, ErrOverflow
	}

	mask := new(big.Int).SetUint64(math.MaxUint64)
	abs := new(big.Int).Abs(v)

	out := Int128{
		hi: int64(new(big.Int).Rsh(abs, 64).Uint64()),
		lo: new(big.Int).And(abs, mask).Uint64(),
	}

	if v.Sign() < 0 {
		out = out.Neg()
	}

	return out, nil
}
