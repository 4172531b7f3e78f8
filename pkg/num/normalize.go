// SPDX-License-Identifier: Apache-2.0

package num

import (
	"fmt"
	"math"
	"math/big"
)

// Normalize returns the canonical form of v: integers are kept, floats must
// be finite and become integers if they are integral and exactly
// representable. None is returned unchanged.
func Normalize(v Number) (Number, error) {
	if v.kind != KindFloat {
		return v, nil
	}
	return FromFloat(v.f)
}

// MustNormalize is Normalize for values known to be finite.
func MustNormalize(v Number) Number {
	n, err := Normalize(v)
	if err != nil {
		panic(err)
	}
	return n
}

// FromFloat converts f to its canonical Number.
func FromFloat(f float64) (Number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return None, fmt.Errorf("%w: %v", ErrDomain, f)
	}
	if f >= -maxExactInt && f <= maxExactInt && f == math.Trunc(f) {
		return Int(int64(f)), nil
	}
	return Float(f), nil
}

// FromBigInt converts an arbitrary precision integer. Values outside the
// int64 range become the nearest float, or ErrOverflow if there is none.
func FromBigInt(v *big.Int) (Number, error) {
	if v.IsInt64() {
		return Int(v.Int64()), nil
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	if math.IsInf(f, 0) {
		return None, fmt.Errorf("%w: integer with %d bits", ErrOverflow, v.BitLen())
	}
	return Float(f), nil
}

// FromRat converts an exact rational to the nearest Number: integral
// rationals go through FromBigInt, the rest are correctly rounded floats.
func FromRat(r *big.Rat) (Number, error) {
	if r.IsInt() {
		return FromBigInt(r.Num())
	}
	f, _ := r.Float64()
	if math.IsInf(f, 0) {
		return None, fmt.Errorf("%w: %s", ErrOverflow, r.FloatString(3))
	}
	return FromFloat(f)
}
