// SPDX-License-Identifier: Apache-2.0

package num

import (
	"fmt"
	"math"
)

// MeanOfTwo returns the arithmetic mean of a and b without intermediate
// overflow.
func MeanOfTwo(a, b Number) (Number, error) {
	if a.IsNone() || b.IsNone() {
		return None, fmt.Errorf("mean of %v and %v: %w", a, b, ErrType)
	}
	a, err := Normalize(a)
	if err != nil {
		return None, err
	}
	b, err = Normalize(b)
	if err != nil {
		return None, err
	}
	if a.Equal(b) {
		return a, nil
	}

	if a.IsInt() && b.IsInt() {
		// arithmetic shifts floor, so the low bits carry the remainder for
		// negative values too
		half := (a.i >> 1) + (b.i >> 1)
		switch (a.i & 1) + (b.i & 1) {
		case 2:
			return Int(half + 1), nil
		case 0:
			return Int(half), nil
		default:
			return FromFloat(float64(half) + 0.5)
		}
	}

	x, y := a.Float64(), b.Float64()
	mean := 0.5 * (x + y)
	if math.IsInf(mean, 0) {
		mean = 0.5*x + 0.5*y
	}
	return FromFloat(mean)
}
