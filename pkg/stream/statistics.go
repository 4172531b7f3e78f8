// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"fmt"
	"math"

	"github.com/xataio/commons/pkg/num"
	"github.com/xataio/commons/pkg/stats"
)

// maxScaledExp bounds the binary exponent of the values entering the Welford
// update, so that squared deviations summed over up to 2^200 values stay
// finite.
const maxScaledExp = 400

// Statistics computes count, extremes, mean and standard deviation of a
// stream of numbers with Welford's online algorithm, without keeping the
// values.
type Statistics struct {
	n int
	// mean and m2 are kept in units of 2^exp. exp only grows when a value
	// would push the update out of the float64 range, scaling by powers of
	// two is exact otherwise.
	exp  int
	mean float64
	// m2 is the sum of squared deviations from the running mean
	m2  float64
	min num.Number
	max num.Number
}

func NewStatistics() *Statistics {
	return &Statistics{}
}

func (s *Statistics) Reset() {
	*s = Statistics{}
}

func (s *Statistics) Add(value num.Number) error {
	if value.IsNone() {
		return fmt.Errorf("adding to statistics: %w", num.ErrType)
	}
	v, err := num.Normalize(value)
	if err != nil {
		return fmt.Errorf("adding to statistics: %w", err)
	}

	x := v.Float64()
	if _, e := math.Frexp(x); e-s.exp > maxScaledExp {
		s.rescale(e - maxScaledExp)
	}
	x = math.Ldexp(x, -s.exp)

	s.n++
	delta := x - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (x - s.mean)
	if s.n == 1 || v.Less(s.min) {
		s.min = v
	}
	if s.n == 1 || s.max.Less(v) {
		s.max = v
	}
	return nil
}

func (s *Statistics) rescale(exp int) {
	shift := exp - s.exp
	s.mean = math.Ldexp(s.mean, -shift)
	s.m2 = math.Ldexp(s.m2, -2*shift)
	s.exp = exp
}

func (s *Statistics) N() int { return s.n }

// Minimum is None while no value was added.
func (s *Statistics) Minimum() num.Number { return s.min }

// Maximum is None while no value was added.
func (s *Statistics) Maximum() num.Number { return s.max }

// Mean returns the running mean, kept within [min, max] against float drift,
// or None while no value was added.
func (s *Statistics) Mean() num.Number {
	if s.n == 0 {
		return num.None
	}
	m := math.Ldexp(s.mean, s.exp)
	if math.IsInf(m, 0) {
		// round-off past an extreme that is itself close to the float64
		// range, the clamp below brings it back
		m = math.Copysign(math.MaxFloat64, m)
	}
	mean, err := num.FromFloat(m)
	if err != nil {
		return num.None
	}
	switch {
	case mean.Less(s.min):
		return s.min
	case s.max.Less(mean):
		return s.max
	}
	return mean
}

// Stddev is the sample standard deviation, or None with fewer than two
// values or when it is beyond the float64 range (see Result).
func (s *Statistics) Stddev() num.Number {
	sd, err := s.stddev()
	if err != nil {
		return num.None
	}
	return sd
}

func (s *Statistics) stddev() (num.Number, error) {
	if s.n <= 1 {
		return num.None, nil
	}
	if !s.min.Less(s.max) {
		return num.Int(0), nil
	}
	sd := math.Ldexp(math.Sqrt(s.m2/float64(s.n-1)), s.exp)
	switch {
	case math.IsInf(sd, 0) || math.IsNaN(sd):
		return num.None, fmt.Errorf("stddev of values in [%v, %v]: %w", s.min, s.max, num.ErrOverflow)
	case sd == 0:
		// values spread out, but too little to be seen in float
		return num.Float(math.SmallestNonzeroFloat64), nil
	}
	return num.FromFloat(sd)
}

// Result builds the stream record of the values added so far. It does not
// change the accumulator. num.ErrOverflow is returned when the standard
// deviation does not fit a float64.
func (s *Statistics) Result() (stats.Record, error) {
	if s.n == 0 {
		return stats.Record{}, ErrNoData
	}
	sd, err := s.stddev()
	if err != nil {
		return stats.Record{}, err
	}
	return stats.NewStream(s.n, s.min, s.Mean(), s.max, sd)
}

// ResultOrNone is Result, except that an empty accumulator yields false.
func (s *Statistics) ResultOrNone() (stats.Record, bool, error) {
	if s.n == 0 {
		return stats.Record{}, false, nil
	}
	r, err := s.Result()
	return r, err == nil, err
}
