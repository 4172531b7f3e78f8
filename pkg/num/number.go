// SPDX-License-Identifier: Apache-2.0

package num

import (
	"fmt"
	"math"
	"math/big"
)

// Kind identifies which payload of a Number is set.
type Kind uint8

const (
	KindNone Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "none"
	}
}

// Number is either an exact 64 bit integer, a finite or infinite float, or
// absent. The zero value is absent.
type Number struct {
	kind Kind
	i    int64
	f    float64
}

// None is the absent number.
var None = Number{}

// maxExactInt is the largest magnitude up to which every integer has an
// exact float64 representation.
const maxExactInt = 1 << 53

func Int(v int64) Number {
	return Number{kind: KindInt, i: v}
}

// Float wraps v as is. Use FromFloat to get the integer preferring form.
func Float(v float64) Number {
	return Number{kind: KindFloat, f: v}
}

func (n Number) Kind() Kind    { return n.kind }
func (n Number) IsNone() bool  { return n.kind == KindNone }
func (n Number) IsInt() bool   { return n.kind == KindInt }
func (n Number) IsFloat() bool { return n.kind == KindFloat }

// Int64 returns the integer payload. Floats are truncated, None is 0.
func (n Number) Int64() int64 {
	switch n.kind {
	case KindInt:
		return n.i
	case KindFloat:
		return int64(n.f)
	default:
		return 0
	}
}

// Float64 returns the value as float64. Large integers are rounded to the
// nearest float, None is NaN.
func (n Number) Float64() float64 {
	switch n.kind {
	case KindInt:
		return float64(n.i)
	case KindFloat:
		return n.f
	default:
		return math.NaN()
	}
}

// Sign returns -1, 0 or +1. None has sign 0.
func (n Number) Sign() int {
	switch n.kind {
	case KindInt:
		switch {
		case n.i < 0:
			return -1
		case n.i > 0:
			return 1
		}
	case KindFloat:
		switch {
		case n.f < 0:
			return -1
		case n.f > 0:
			return 1
		}
	}
	return 0
}

// IsFinite reports whether n is present and not infinite.
func (n Number) IsFinite() bool {
	switch n.kind {
	case KindInt:
		return true
	case KindFloat:
		return !math.IsInf(n.f, 0) && !math.IsNaN(n.f)
	default:
		return false
	}
}

// Cmp compares two numbers exactly, without rounding integers to floats.
// None sorts before any present value. NaN floats compare equal to each
// other and before any other float.
func (n Number) Cmp(o Number) int {
	if n.kind == KindNone || o.kind == KindNone {
		return cmpKinds(n.kind == KindNone, o.kind == KindNone)
	}
	if n.kind == KindInt && o.kind == KindInt {
		return cmpOrdered(n.i, o.i)
	}
	if n.kind == KindFloat && o.kind == KindFloat {
		return cmpFloats(n.f, o.f)
	}
	if math.IsNaN(n.Float64()) || math.IsNaN(o.Float64()) {
		return cmpKinds(!math.IsNaN(n.Float64()), !math.IsNaN(o.Float64()))
	}
	return n.bigFloat().Cmp(o.bigFloat())
}

// Equal reports whether both numbers have the same value.
func (n Number) Equal(o Number) bool {
	return n.Cmp(o) == 0
}

// Less reports whether n sorts before o.
func (n Number) Less(o Number) bool {
	return n.Cmp(o) < 0
}

func (n Number) String() string {
	return FormatOrNone(n)
}

func (n Number) GoString() string {
	switch n.kind {
	case KindInt:
		return fmt.Sprintf("num.Int(%d)", n.i)
	case KindFloat:
		return fmt.Sprintf("num.Float(%v)", n.f)
	default:
		return "num.None"
	}
}

// MarshalJSON encodes None as null and numbers in their canonical text form.
// Infinite values, which JSON cannot represent, are quoted.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.kind == KindNone {
		return []byte("null"), nil
	}
	if !n.IsFinite() {
		return []byte(`"` + Format(n) + `"`), nil
	}
	return []byte(Format(n)), nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*n = None
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// BigInt returns the integral value of n. The second return is false if n
// is None, not finite or has a fractional part.
func (n Number) BigInt() (*big.Int, bool) {
	switch n.kind {
	case KindInt:
		return big.NewInt(n.i), true
	case KindFloat:
		if !n.IsFinite() || n.f != math.Trunc(n.f) {
			return nil, false
		}
		i, _ := new(big.Float).SetFloat64(n.f).Int(nil)
		return i, true
	default:
		return nil, false
	}
}

// Rat returns the exact rational value of a finite number.
func (n Number) Rat() (*big.Rat, bool) {
	switch n.kind {
	case KindInt:
		return new(big.Rat).SetInt64(n.i), true
	case KindFloat:
		if !n.IsFinite() {
			return nil, false
		}
		return new(big.Rat).SetFloat64(n.f), true
	default:
		return nil, false
	}
}

func (n Number) bigFloat() *big.Float {
	if n.kind == KindInt {
		return new(big.Float).SetInt64(n.i)
	}
	return new(big.Float).SetFloat64(n.f)
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloats(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	if aNaN || bNaN {
		return cmpKinds(aNaN, bNaN)
	}
	return cmpOrdered(a, b)
}

// cmpKinds orders the "special" side first.
func cmpKinds(aSpecial, bSpecial bool) int {
	switch {
	case aSpecial && bSpecial:
		return 0
	case aSpecial:
		return -1
	default:
		return 1
	}
}
