// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"fmt"
	"math"
	"math/big"
	"slices"

	moremath "github.com/aclements/go-moremath/stats"
	"golang.org/x/exp/constraints"

	"github.com/xataio/commons/pkg/num"
)

// maxProductTerms bounds the exact product used for the geometric mean of
// integer samples. Larger samples use the log-sum geometric mean.
const maxProductTerms = 1 << 12

// FromSamples computes the sample record of values. The values are copied,
// the input is not modified.
func FromSamples(values []num.Number) (Record, error) {
	if len(values) == 0 {
		return Record{}, ErrEmptyInput
	}

	data := make([]num.Number, len(values))
	allInts := true
	for i, v := range values {
		if v.IsNone() {
			return Record{}, fmt.Errorf("value %d: %w", i, num.ErrType)
		}
		n, err := num.Normalize(v)
		if err != nil {
			return Record{}, fmt.Errorf("value %d: %w", i, err)
		}
		data[i] = n
		allInts = allInts && n.IsInt()
	}
	slices.SortFunc(data, num.Number.Cmp)

	n := len(data)
	minimum, maximum := data[0], data[n-1]
	if n == 1 || minimum.Equal(maximum) {
		return FromSingleValue(minimum, n)
	}

	var median num.Number
	if n&1 == 1 {
		median = data[n>>1]
	} else {
		var err error
		if median, err = num.MeanOfTwo(data[(n>>1)-1], data[n>>1]); err != nil {
			return Record{}, fmt.Errorf("median: %w", err)
		}
	}

	var (
		mean, stddev num.Number
		err          error
	)
	if allInts {
		mean, stddev, err = intMoments(data)
	} else {
		mean, stddev, err = ratMoments(data)
	}
	if err != nil {
		return Record{}, err
	}
	mean = clamp(mean, minimum, maximum)
	if stddev.Sign() == 0 {
		// the exact variance is positive, only the float root underflowed
		stddev = num.Float(math.SmallestNonzeroFloat64)
	}

	geom := num.None
	if minimum.Sign() > 0 {
		if geom, err = geometricMean(data, allInts, minimum, maximum, mean); err != nil {
			return Record{}, err
		}
	}

	return NewSample(n, minimum, median, mean, geom, maximum, stddev)
}

// FromValues is FromSamples over plain Go numbers.
func FromValues[T constraints.Integer | constraints.Float](values ...T) (Record, error) {
	data, err := num.FromValues(values...)
	if err != nil {
		return Record{}, err
	}
	return FromSamples(data)
}

func FromFloats(values []float64) (Record, error) {
	return FromValues(values...)
}

func FromInts(values []int64) (Record, error) {
	return FromValues(values...)
}

// intMoments computes the mean and the sample standard deviation of integers
// with exact arithmetic. The variance is (n*S2 - S1*S1) / (n*(n-1)).
func intMoments(data []num.Number) (num.Number, num.Number, error) {
	sum, sumSq := new(big.Int), new(big.Int)
	v := new(big.Int)
	for _, d := range data {
		v.SetInt64(d.Int64())
		sum.Add(sum, v)
		sumSq.Add(sumSq, v.Mul(v, v))
	}
	n := big.NewInt(int64(len(data)))

	mean, err := num.BestDivideBig(sum, n)
	if err != nil {
		return num.None, num.None, fmt.Errorf("mean: %w", err)
	}

	numerator := new(big.Int).Mul(n, sumSq)
	numerator.Sub(numerator, new(big.Int).Mul(sum, sum))
	denominator := new(big.Int).Mul(n, new(big.Int).Sub(n, big.NewInt(1)))
	// SetFrac cancels the common factors before any rounding happens
	stddev, err := num.RatSqrt(new(big.Rat).SetFrac(numerator, denominator))
	if err != nil {
		return num.None, num.None, fmt.Errorf("stddev: %w", err)
	}
	return mean, stddev, nil
}

// ratMoments is intMoments over the exact rational values of floats.
func ratMoments(data []num.Number) (num.Number, num.Number, error) {
	sum, sumSq := new(big.Rat), new(big.Rat)
	for _, d := range data {
		v, _ := d.Rat()
		sum.Add(sum, v)
		sumSq.Add(sumSq, v.Mul(v, v))
	}
	n := new(big.Rat).SetInt64(int64(len(data)))

	mean, err := num.FromRat(new(big.Rat).Quo(sum, n))
	if err != nil {
		return num.None, num.None, fmt.Errorf("mean: %w", err)
	}

	variance := new(big.Rat).Mul(n, sumSq)
	variance.Sub(variance, new(big.Rat).Mul(sum, sum))
	variance.Quo(variance, new(big.Rat).Mul(n, new(big.Rat).Sub(n, big.NewRat(1, 1))))
	stddev, err := num.RatSqrt(variance)
	if err != nil {
		return num.None, num.None, fmt.Errorf("stddev: %w", err)
	}
	return mean, stddev, nil
}

// geometricMean of an all positive sample. Integer samples first try
// 2^(log2(product)/n) and keep it only if it lies in [min, max), everything
// else uses the log-sum mean. The result is snapped onto min or mean when
// float noise pushes it just outside [min, mean].
func geometricMean(data []num.Number, allInts bool, minimum, maximum, mean num.Number) (num.Number, error) {
	geom := num.None
	if allInts && len(data) <= maxProductTerms {
		product := big.NewInt(1)
		for _, d := range data {
			product.Mul(product, big.NewInt(d.Int64()))
		}
		if g, err := num.FromFloat(math.Exp2(log2(product) / float64(len(data)))); err == nil &&
			!g.Less(minimum) && g.Less(maximum) {
			geom = g
		}
	}

	if geom.IsNone() {
		xs := make([]float64, len(data))
		for i, d := range data {
			xs[i] = d.Float64()
		}
		g, err := num.FromFloat(moremath.Sample{Xs: xs}.GeoMean())
		if err != nil {
			return num.None, fmt.Errorf("geometric mean: %w", err)
		}
		geom = g
	}

	if geom.Less(minimum) {
		if !almostLE(minimum, geom) {
			return num.None, fmt.Errorf("%w: geometric mean=%v below min=%v", ErrInvariant, geom, minimum)
		}
		geom = minimum
	}
	if mean.Less(geom) {
		if !almostLE(geom, mean) {
			return num.None, fmt.Errorf("%w: geometric mean=%v above mean=%v", ErrInvariant, geom, mean)
		}
		geom = mean
	}
	return geom, nil
}

// log2 of a positive integer of any size.
func log2(v *big.Int) float64 {
	mant := new(big.Float).SetInt(v)
	exp := mant.MantExp(mant)
	m, _ := mant.Float64()
	return float64(exp) + math.Log2(m)
}

// almostLE reports whether a <= b holds up to float round-off: a exceeds b
// by at most three ulps each way, or by a relative 1e-13.
func almostLE(a, b num.Number) bool {
	if a.Cmp(b) <= 0 {
		return true
	}
	x, y := a.Float64(), b.Float64()
	if x < 0 {
		x, y = -y, -x
	} else if y <= 0 {
		return y >= 0 && x <= 1e-300
	}

	for range 3 {
		x = math.Nextafter(x, math.Inf(-1))
		y = math.Nextafter(y, math.Inf(1))
		if x <= y {
			return true
		}
	}
	return y/x > 0.9999999999999
}

func clamp(v, lo, hi num.Number) num.Number {
	switch {
	case v.Less(lo):
		return lo
	case hi.Less(v):
		return hi
	default:
		return v
	}
}
