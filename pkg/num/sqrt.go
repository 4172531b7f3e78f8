// SPDX-License-Identifier: Apache-2.0

package num

import (
	"fmt"
	"math/big"
)

// sqrtPrec is the mantissa precision used for inexact roots before the final
// rounding to float64.
const sqrtPrec = 256

// IntSqrt returns the square root of v, exact if v is a perfect square.
func IntSqrt(v *big.Int) (Number, error) {
	if v.Sign() < 0 {
		return None, fmt.Errorf("sqrt(%s): %w", v, ErrDomain)
	}
	root := new(big.Int).Sqrt(v)
	if new(big.Int).Mul(root, root).Cmp(v) == 0 {
		return FromBigInt(root)
	}
	f := new(big.Float).SetPrec(sqrtPrec).SetInt(v)
	return fromBigFloat(f.Sqrt(f))
}

// RatSqrt returns the square root of a non-negative rational. Rationals whose
// numerator and denominator are perfect squares have exact roots.
func RatSqrt(v *big.Rat) (Number, error) {
	if v.Sign() < 0 {
		return None, fmt.Errorf("sqrt(%s): %w", v, ErrDomain)
	}
	if v.IsInt() {
		return IntSqrt(v.Num())
	}
	num, den := new(big.Int).Sqrt(v.Num()), new(big.Int).Sqrt(v.Denom())
	if new(big.Int).Mul(num, num).Cmp(v.Num()) == 0 && new(big.Int).Mul(den, den).Cmp(v.Denom()) == 0 {
		return FromRat(new(big.Rat).SetFrac(num, den))
	}
	f := new(big.Float).SetPrec(sqrtPrec).SetRat(v)
	return fromBigFloat(f.Sqrt(f))
}

func fromBigFloat(f *big.Float) (Number, error) {
	v, _ := f.Float64()
	if f.IsInf() {
		return None, fmt.Errorf("%w: %s", ErrOverflow, f.String())
	}
	n, err := FromFloat(v)
	if err != nil {
		return None, fmt.Errorf("%w: %s", ErrOverflow, f.String())
	}
	return n, nil
}
