// SPDX-License-Identifier: Apache-2.0

package num

import (
	"fmt"
	"math"
	"math/big"
)

// AddIntFloat adds a float to an exact integer. Integral floats are added
// exactly; otherwise the result is the correctly rounded float of the exact
// sum.
func AddIntFloat(a *big.Int, b float64) (Number, error) {
	if math.IsNaN(b) || math.IsInf(b, 0) {
		return None, fmt.Errorf("%s+%v: %w", a, b, ErrDomain)
	}
	if b == math.Trunc(b) {
		bi, _ := new(big.Float).SetFloat64(b).Int(nil)
		return FromBigInt(bi.Add(bi, a))
	}
	sum := new(big.Rat).SetFloat64(b)
	return FromRat(sum.Add(sum, new(big.Rat).SetInt(a)))
}
