// SPDX-License-Identifier: Apache-2.0

package num

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// Parse converts a base 10 integer or a float literal. Integers are
// preferred, NaN is rejected and infinities are returned as floats.
func Parse(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None, fmt.Errorf("%w: empty string", ErrSyntax)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !(errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0)) {
		return None, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	if math.IsNaN(f) {
		return None, fmt.Errorf("%w: NaN is not permitted, got %q", ErrSyntax, s)
	}
	return Float(f), nil
}

// ParseOrNone is Parse, except that blank strings are None.
func ParseOrNone(s string) (Number, error) {
	if strings.TrimSpace(s) == "" {
		return None, nil
	}
	return Parse(s)
}

// Format renders n as its shortest round-tripping text. Floats use an
// exponent below 1e-4 and from 1e16 on, written compactly as in "1e-5" or
// "1.5e20". None is rendered as the empty string.
func Format(n Number) string {
	switch n.kind {
	case KindInt:
		return strconv.FormatInt(n.i, 10)
	case KindFloat:
		return formatFloat(n.f)
	default:
		return ""
	}
}

// FormatOrNone is Format with None rendered as an empty string. It never
// fails, which makes it the form used by writers.
func FormatOrNone(n Number) string {
	if n.IsNone() {
		return ""
	}
	return Format(n)
}

var exponentReplacer = strings.NewReplacer("e-0", "e-", "e+0", "e", "e+", "e")

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	case f == 0:
		return "0"
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	if exp, err := strconv.Atoi(s[strings.IndexByte(s, 'e')+1:]); err == nil && exp >= -4 && exp < 16 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return exponentReplacer.Replace(s)
}

// FromAny converts the Go numeric types, json.Number and Number itself. A nil
// value is None.
func FromAny(v any) (Number, error) {
	switch t := v.(type) {
	case nil:
		return None, nil
	case Number:
		return t, nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint:
		return fromUint(uint64(t))
	case uint64:
		return fromUint(t)
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		return Parse(t.String())
	default:
		return None, fmt.Errorf("%w: %T", ErrType, v)
	}
}

func fromUint(u uint64) (Number, error) {
	if u > math.MaxInt64 {
		return Float(float64(u)), nil
	}
	return Int(int64(u)), nil
}

// FromValues converts and normalizes a slice of Go numbers.
func FromValues[T constraints.Integer | constraints.Float](values ...T) ([]Number, error) {
	half := 0.5
	isFloat := T(half) != 0
	out := make([]Number, 0, len(values))
	for _, v := range values {
		// unsigned values beyond int64 are kept as floats
		if isFloat || (v > 0 && uint64(v) > math.MaxInt64) {
			n, err := FromFloat(float64(v))
			if err != nil {
				return nil, err
			}
			out = append(out, n)
			continue
		}
		out = append(out, Int(int64(v)))
	}
	return out, nil
}
