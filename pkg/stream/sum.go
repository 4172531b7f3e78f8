// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"fmt"
	"math"
	"math/big"

	"github.com/xataio/commons/pkg/num"
)

// Sum adds numbers with second order Kahan-Babuska-Neumaier compensation.
// Integral values are summed exactly in a separate integer accumulator.
type Sum struct {
	iSum     big.Int
	sum      float64
	cs       float64
	ccs      float64
	hasValue bool
}

func NewSum() *Sum {
	return &Sum{}
}

func (s *Sum) Reset() {
	s.iSum.SetInt64(0)
	s.sum, s.cs, s.ccs = 0, 0, 0
	s.hasValue = false
}

func (s *Sum) Add(value num.Number) error {
	switch value.Kind() {
	case num.KindInt:
		s.iSum.Add(&s.iSum, big.NewInt(value.Int64()))
	case num.KindFloat:
		f := value.Float64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("adding %v to sum: %w", f, num.ErrDomain)
		}
		s.addFloat(f)
	default:
		return fmt.Errorf("adding to sum: %w", num.ErrType)
	}
	s.hasValue = true
	return nil
}

func (s *Sum) addFloat(v float64) {
	if v >= -1<<53 && v <= 1<<53 && v == math.Trunc(v) {
		s.iSum.Add(&s.iSum, big.NewInt(int64(v)))
		return
	}

	t := s.sum + v
	var c float64
	if math.Abs(s.sum) >= math.Abs(v) {
		c = (s.sum - t) + v
	} else {
		c = (v - t) + s.sum
	}
	s.sum = t

	t = s.cs + c
	var cc float64
	if math.Abs(s.cs) >= math.Abs(c) {
		cc = (s.cs - t) + c
	} else {
		cc = (c - t) + s.cs
	}
	s.cs = t
	s.ccs += cc
}

// AddSum merges the state of another sum into s, which makes partial sums
// computed in parallel combinable.
func (s *Sum) AddSum(other *Sum) {
	if other == nil || !other.hasValue {
		return
	}
	s.iSum.Add(&s.iSum, &other.iSum)
	for _, v := range []float64{other.sum, other.cs, other.ccs} {
		s.addFloat(v)
	}
	s.hasValue = true
}

// Result is None before any value was added.
func (s *Sum) Result() (num.Number, error) {
	if !s.hasValue {
		return num.None, nil
	}
	return num.AddIntFloat(&s.iSum, s.sum+s.cs+s.ccs)
}
