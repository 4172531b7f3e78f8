// SPDX-License-Identifier: Apache-2.0

package num

import (
	"fmt"
	"math"
	"math/big"
)

// BestDivide divides two integers. The result is an exact Int when b divides
// a and the correctly rounded float quotient otherwise.
func BestDivide(a, b int64) (Number, error) {
	if b == 0 {
		return None, fmt.Errorf("%d/0: %w", a, ErrDivisionByZero)
	}
	// the only int64 quotient that does not fit int64
	if a == math.MinInt64 && b == -1 {
		return BestDivideBig(big.NewInt(a), big.NewInt(b))
	}
	if a%b == 0 {
		return Int(a / b), nil
	}
	f, _ := new(big.Rat).SetFrac64(a, b).Float64()
	return FromFloat(f)
}

// BestDivideBig is BestDivide for arbitrary precision integers. Quotients
// outside the float64 range fail with ErrOverflow.
func BestDivideBig(a, b *big.Int) (Number, error) {
	if b.Sign() == 0 {
		return None, fmt.Errorf("%s/0: %w", a, ErrDivisionByZero)
	}
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() == 0 {
		return FromBigInt(q)
	}
	f, _ := new(big.Rat).SetFrac(a, b).Float64()
	if math.IsInf(f, 0) {
		return None, fmt.Errorf("%s/%s: %w", a, b, ErrOverflow)
	}
	return FromFloat(f)
}

// BestDivideMixed divides two numbers of any kind. Integer operands, after
// normalization, use BestDivide.
func BestDivideMixed(a, b Number) (Number, error) {
	if a.IsNone() || b.IsNone() {
		return None, fmt.Errorf("dividing %v by %v: %w", a, b, ErrType)
	}
	a, err := Normalize(a)
	if err != nil {
		return None, err
	}
	b, err = Normalize(b)
	if err != nil {
		return None, err
	}
	if a.IsInt() && b.IsInt() {
		return BestDivide(a.i, b.i)
	}
	if b.Sign() == 0 {
		return None, fmt.Errorf("%v/0: %w", a, ErrDivisionByZero)
	}
	return FromFloat(a.Float64() / b.Float64())
}
