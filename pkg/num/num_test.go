// SPDX-License-Identifier: Apache-2.0

package num

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   Number
		want    Number
		wantErr error
	}{
		{name: "int unchanged", value: Int(-7), want: Int(-7)},
		{name: "none unchanged", value: None, want: None},
		{name: "integral float", value: Float(3.0), want: Int(3)},
		{name: "negative zero", value: Float(math.Copysign(0, -1)), want: Int(0)},
		{name: "fraction", value: Float(1.5), want: Float(1.5)},
		{name: "limit of exact ints", value: Float(1 << 53), want: Int(1 << 53)},
		{name: "beyond exact ints", value: Float(1 << 54), want: Float(1 << 54)},
		{name: "inf", value: Float(math.Inf(1)), wantErr: ErrDomain},
		{name: "nan", value: Float(math.NaN()), wantErr: ErrDomain},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tc.value)
			require.ErrorIs(t, err, tc.wantErr)
			if tc.wantErr != nil {
				return
			}
			require.Equal(t, tc.want.Kind(), got.Kind())
			require.True(t, tc.want.Equal(got), "want %#v, got %#v", tc.want, got)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		f := rapid.Float64().Draw(t, "f")
		once, err := Normalize(Float(f))
		if err != nil {
			t.Fatalf("normalizing finite %v: %v", f, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("normalizing %v: %v", once, err)
		}
		if once != twice {
			t.Fatalf("%#v != %#v", once, twice)
		}
		if once.Float64() != f {
			t.Fatalf("value changed: %v -> %v", f, once)
		}
	})
}

func TestNumber_Cmp(t *testing.T) {
	t.Parallel()

	big53 := int64(1<<53 + 1)
	require.Equal(t, 0, Int(2).Cmp(Float(2)))
	require.Equal(t, -1, Int(1).Cmp(Float(1.5)))
	require.Equal(t, 1, Float(2.5).Cmp(Int(2)))
	// float64(big53) rounds to 1<<53, the exact comparison must not
	require.Equal(t, 1, Int(big53).Cmp(Float(1<<53)))
	require.Equal(t, -1, Int(math.MaxInt64).Cmp(Float(math.Inf(1))))
	require.Equal(t, -1, None.Cmp(Int(math.MinInt64)))
	require.Equal(t, 0, None.Cmp(None))
}

func TestBestDivide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		a, b    int64
		want    Number
		wantErr error
	}{
		{name: "exact", a: 10, b: 5, want: Int(2)},
		{name: "negative exact", a: -9, b: 3, want: Int(-3)},
		{name: "fraction", a: 1, b: 3, want: Float(1.0 / 3.0)},
		{name: "half", a: 7, b: 2, want: Float(3.5)},
		{name: "min int by minus one", a: math.MinInt64, b: -1, want: Float(9223372036854775808)},
		{name: "large exact", a: math.MaxInt64, b: 7, want: Int(math.MaxInt64 / 7)},
		{name: "by zero", a: 1, b: 0, wantErr: ErrDivisionByZero},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := BestDivide(tc.a, tc.b)
			require.ErrorIs(t, err, tc.wantErr)
			if tc.wantErr == nil {
				require.Equal(t, tc.want, got)
			}
		})
	}
}

func TestBestDivide_Exactness(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Int64Range(-1<<40, 1<<40).Draw(t, "a")
		b := rapid.Int64Range(-1<<20, 1<<20).Filter(func(v int64) bool { return v != 0 }).Draw(t, "b")

		got, err := BestDivide(a*b, b)
		if err != nil {
			t.Fatal(err)
		}
		if got != Int(a) {
			t.Fatalf("%d*%d/%d = %#v", a, b, b, got)
		}
	})
}

func TestBestDivideBig(t *testing.T) {
	t.Parallel()

	huge := new(big.Int).Lsh(big.NewInt(1), 2000)
	_, err := BestDivideBig(huge, big.NewInt(3))
	require.ErrorIs(t, err, ErrOverflow)

	_, err = BestDivideBig(big.NewInt(3), big.NewInt(0))
	require.ErrorIs(t, err, ErrDivisionByZero)

	got, err := BestDivideBig(new(big.Int).Mul(huge, big.NewInt(3)), huge)
	require.NoError(t, err)
	require.Equal(t, Int(3), got)

	// the rounded quotient of huge operands is still exact to the last bit
	got, err = BestDivideBig(new(big.Int).Add(huge, big.NewInt(1)), new(big.Int).Mul(huge, big.NewInt(4)))
	require.NoError(t, err)
	require.Equal(t, Float(0.25), got)
}

func TestBestDivideMixed(t *testing.T) {
	t.Parallel()

	got, err := BestDivideMixed(Float(9), Float(3))
	require.NoError(t, err)
	require.Equal(t, Int(3), got)

	got, err = BestDivideMixed(Float(1.5), Int(2))
	require.NoError(t, err)
	require.Equal(t, Float(0.75), got)

	_, err = BestDivideMixed(Float(1.5), Float(0))
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, err = BestDivideMixed(Float(math.MaxFloat64), Float(0.5))
	require.ErrorIs(t, err, ErrDomain)

	_, err = BestDivideMixed(None, Int(1))
	require.ErrorIs(t, err, ErrType)
}

func TestMeanOfTwo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Number
		want Number
	}{
		{name: "equal", a: Int(4), b: Float(4), want: Int(4)},
		{name: "even sum", a: Int(3), b: Int(5), want: Int(4)},
		{name: "odd sum", a: Int(1), b: Int(2), want: Float(1.5)},
		{name: "negative odd", a: Int(-3), b: Int(0), want: Float(-1.5)},
		{name: "negative both odd", a: Int(-3), b: Int(-5), want: Int(-4)},
		{name: "max ints", a: Int(math.MaxInt64), b: Int(math.MaxInt64 - 2), want: Int(math.MaxInt64 - 1)},
		{name: "min and max ints", a: Int(math.MinInt64), b: Int(math.MaxInt64), want: Float(-0.5)},
		{name: "floats", a: Float(1.5), b: Float(2.5), want: Int(2)},
		{name: "overflowing floats", a: Float(math.MaxFloat64), b: Float(math.MaxFloat64 / 2), want: Float(0.75 * math.MaxFloat64)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := MeanOfTwo(tc.a, tc.b)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestIntSqrt(t *testing.T) {
	t.Parallel()

	got, err := IntSqrt(big.NewInt(144))
	require.NoError(t, err)
	require.Equal(t, Int(12), got)

	got, err = IntSqrt(big.NewInt(2))
	require.NoError(t, err)
	require.Equal(t, Float(math.Sqrt2), got)

	square := new(big.Int).Exp(big.NewInt(10), big.NewInt(40), nil)
	got, err = IntSqrt(square)
	require.NoError(t, err)
	require.Equal(t, Float(1e20), got)

	_, err = IntSqrt(big.NewInt(-1))
	require.ErrorIs(t, err, ErrDomain)

	got, err = RatSqrt(big.NewRat(9, 4))
	require.NoError(t, err)
	require.Equal(t, Float(1.5), got)

	got, err = RatSqrt(big.NewRat(1, 2))
	require.NoError(t, err)
	require.Equal(t, Float(math.Sqrt(0.5)), got)
}

func TestAddIntFloat(t *testing.T) {
	t.Parallel()

	got, err := AddIntFloat(big.NewInt(3), 2)
	require.NoError(t, err)
	require.Equal(t, Int(5), got)

	got, err = AddIntFloat(big.NewInt(1), 0.5)
	require.NoError(t, err)
	require.Equal(t, Float(1.5), got)

	// the integer part beyond float precision is not lost
	got, err = AddIntFloat(new(big.Int).Lsh(big.NewInt(1), 70), 1e21)
	require.NoError(t, err)
	require.Equal(t, Float(1e21+1180591620717411303424), got)

	_, err = AddIntFloat(big.NewInt(1), math.NaN())
	require.ErrorIs(t, err, ErrDomain)
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Number
		wantErr error
	}{
		{name: "int", input: " 12 ", want: Int(12)},
		{name: "negative int", input: "-5", want: Int(-5)},
		{name: "float", input: "1.5", want: Float(1.5)},
		{name: "exponent", input: "1e-5", want: Float(1e-5)},
		{name: "inf", input: "inf", want: Float(math.Inf(1))},
		{name: "negative inf", input: "-inf", want: Float(math.Inf(-1))},
		{name: "out of range", input: "1e400", want: Float(math.Inf(1))},
		{name: "nan", input: "nan", wantErr: ErrSyntax},
		{name: "empty", input: "  ", wantErr: ErrSyntax},
		{name: "garbage", input: "12-3", wantErr: ErrSyntax},
		{name: "boolean", input: "T", wantErr: ErrSyntax},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tc.input)
			require.ErrorIs(t, err, tc.wantErr)
			if tc.wantErr == nil {
				require.Equal(t, tc.want, got)
			}
		})
	}

	n, err := ParseOrNone(" ")
	require.NoError(t, err)
	require.True(t, n.IsNone())
}

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value Number
		want  string
	}{
		{value: Int(-12), want: "-12"},
		{value: Float(1.3), want: "1.3"},
		{value: Float(1e-5), want: "1e-5"},
		{value: Float(0.0001), want: "0.0001"},
		{value: Float(1e20), want: "1e20"},
		{value: Float(1.5e300), want: "1.5e300"},
		{value: Float(-1e-300), want: "-1e-300"},
		{value: Float(1e15), want: "1000000000000000"},
		{value: Float(math.Inf(-1)), want: "-inf"},
		{value: Float(0), want: "0"},
		{value: None, want: ""},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, Format(tc.value))
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n, err := FromFloat(rapid.Float64().Draw(t, "f"))
		if err != nil {
			t.Fatal(err)
		}
		back, err := Parse(Format(n))
		if err != nil {
			t.Fatal(err)
		}
		if !back.Equal(n) {
			t.Fatalf("%#v formatted as %q parsed as %#v", n, Format(n), back)
		}
	})
}

func TestFromValues(t *testing.T) {
	t.Parallel()

	got, err := FromValues(1.0, 2.5, -3.0)
	require.NoError(t, err)
	require.Equal(t, []Number{Int(1), Float(2.5), Int(-3)}, got)

	ints, err := FromValues[uint64](1, math.MaxUint64)
	require.NoError(t, err)
	require.Equal(t, []Number{Int(1), Float(math.MaxUint64)}, ints)

	_, err = FromValues(math.Inf(1))
	require.ErrorIs(t, err, ErrDomain)

	_, err = FromAny("1")
	require.ErrorIs(t, err, ErrType)
}

func TestNumber_JSON(t *testing.T) {
	t.Parallel()

	b, err := Float(2.5).MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, "2.5", string(b))

	b, err = None.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, "null", string(b))

	var n Number
	require.NoError(t, n.UnmarshalJSON([]byte(`"-inf"`)))
	require.Equal(t, Float(math.Inf(-1)), n)
}
