// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/xataio/commons/pkg/num"
)

var (
	ErrEmptyInput       = errors.New("sample is empty")
	ErrInvariant        = errors.New("invalid statistics")
	ErrMissingStddev    = errors.New("standard deviation is missing")
	ErrUnknownDimension = errors.New("unknown statistics dimension")
	ErrInvalidColumns   = errors.New("invalid statistics columns")
)

// Record is an immutable, validated set of descriptive statistics over a
// non-empty sample. Sample records, computed over the whole sample, carry a
// median and, for positive samples, a geometric mean. Stream records only
// know the running moments.
type Record struct {
	n       int
	min     num.Number
	median  num.Number
	mean    num.Number
	geom    num.Number
	max     num.Number
	stddev  num.Number
	sampled bool
}

// NewSample validates and builds a sample record. geom must be None exactly
// when min is not positive, stddev must be None exactly when n is 1.
func NewSample(n int, min, median, mean, geom, max, stddev num.Number) (Record, error) {
	r, err := newRecord(n, min, mean, max, stddev)
	if err != nil {
		return Record{}, err
	}
	r.sampled = true

	if r.median, err = normalize("median", median); err != nil {
		return Record{}, err
	}
	if r.median.IsNone() {
		return Record{}, fmt.Errorf("%w: median is required", ErrInvariant)
	}
	if r.geom, err = num.Normalize(geom); err != nil {
		return Record{}, fmt.Errorf("geometric mean: %w", err)
	}

	if n == 1 {
		if !r.median.Equal(r.min) {
			return Record{}, fmt.Errorf("%w: median=%v but min=%v for n=1", ErrInvariant, r.median, r.min)
		}
	} else if r.median.Less(r.min) || r.max.Less(r.median) {
		return Record{}, fmt.Errorf("%w: median=%v not in [%v, %v]", ErrInvariant, r.median, r.min, r.max)
	}

	if r.min.Sign() > 0 {
		if r.geom.IsNone() {
			return Record{}, fmt.Errorf("%w: geometric mean is required for min=%v", ErrInvariant, r.min)
		}
		if r.geom.Less(r.min) || r.max.Less(r.geom) {
			return Record{}, fmt.Errorf("%w: geometric mean=%v not in [%v, %v]", ErrInvariant, r.geom, r.min, r.max)
		}
		if r.mean.Less(r.geom) {
			return Record{}, fmt.Errorf("%w: geometric mean=%v above mean=%v", ErrInvariant, r.geom, r.mean)
		}
	} else if !r.geom.IsNone() {
		return Record{}, fmt.Errorf("%w: geometric mean=%v undefined for min=%v", ErrInvariant, r.geom, r.min)
	}
	return r, nil
}

// NewStream validates and builds a stream record, which has neither median
// nor geometric mean.
func NewStream(n int, min, mean, max, stddev num.Number) (Record, error) {
	return newRecord(n, min, mean, max, stddev)
}

// FromSingleValue is the sample record of n observations of value.
func FromSingleValue(value num.Number, n int) (Record, error) {
	value, err := normalize("value", value)
	if err != nil {
		return Record{}, err
	}
	geom := num.None
	if value.Sign() > 0 {
		geom = value
	}
	stddev := num.None
	if n > 1 {
		stddev = num.Int(0)
	}
	return NewSample(n, value, value, value, geom, value, stddev)
}

func newRecord(n int, min, mean, max, stddev num.Number) (Record, error) {
	if n < 1 {
		return Record{}, fmt.Errorf("%w: n=%d must be at least 1", ErrInvariant, n)
	}
	r := Record{n: n}
	var err error
	if r.min, err = normalize("min", min); err != nil {
		return Record{}, err
	}
	if r.mean, err = normalize("mean", mean); err != nil {
		return Record{}, err
	}
	if r.max, err = normalize("max", max); err != nil {
		return Record{}, err
	}
	if r.stddev, err = num.Normalize(stddev); err != nil {
		return Record{}, fmt.Errorf("stddev: %w", err)
	}

	if n == 1 {
		if !r.min.Equal(r.max) || !r.mean.Equal(r.min) {
			return Record{}, fmt.Errorf("%w: min=%v, mean=%v and max=%v must be equal for n=1", ErrInvariant, r.min, r.mean, r.max)
		}
		if !r.stddev.IsNone() {
			return Record{}, fmt.Errorf("%w: stddev=%v must be undefined for n=1", ErrInvariant, r.stddev)
		}
		return r, nil
	}

	if r.max.Less(r.min) {
		return Record{}, fmt.Errorf("%w: max=%v below min=%v", ErrInvariant, r.max, r.min)
	}
	if r.mean.Less(r.min) || r.max.Less(r.mean) {
		return Record{}, fmt.Errorf("%w: mean=%v not in [%v, %v]", ErrInvariant, r.mean, r.min, r.max)
	}
	if r.stddev.IsNone() {
		return Record{}, fmt.Errorf("%w: stddev is required for n=%d", ErrInvariant, n)
	}
	if r.stddev.Sign() < 0 {
		return Record{}, fmt.Errorf("%w: stddev=%v is negative", ErrInvariant, r.stddev)
	}
	if (r.stddev.Sign() == 0) != r.min.Equal(r.max) {
		return Record{}, fmt.Errorf("%w: stddev=%v inconsistent with min=%v and max=%v", ErrInvariant, r.stddev, r.min, r.max)
	}
	return r, nil
}

func normalize(name string, v num.Number) (num.Number, error) {
	if v.IsNone() {
		return num.None, fmt.Errorf("%w: %s is required", ErrInvariant, name)
	}
	n, err := num.Normalize(v)
	if err != nil {
		return num.None, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func (r Record) N() int                { return r.n }
func (r Record) Minimum() num.Number   { return r.min }
func (r Record) Median() num.Number    { return r.median }
func (r Record) MeanArith() num.Number { return r.mean }
func (r Record) MeanGeom() num.Number  { return r.geom }
func (r Record) Maximum() num.Number   { return r.max }
func (r Record) Stddev() num.Number    { return r.stddev }

// Compact returns the single value r stands for, if minimum equals maximum.
// With needsN, r must also count a single value.
func (r Record) Compact(needsN bool) (num.Number, bool) {
	if r.IsZero() || !r.min.Equal(r.max) || (needsN && r.n != 1) {
		return num.None, false
	}
	return r.min, true
}

// IsSample reports whether r was computed over a materialised sample.
func (r Record) IsSample() bool { return r.sampled }

// IsZero reports whether r is the zero Record, which no constructor returns.
func (r Record) IsZero() bool { return r.n == 0 }

// MinMean is the smaller of the two means, which is the geometric mean
// whenever it is defined.
func (r Record) MinMean() num.Number {
	if !r.geom.IsNone() {
		return r.geom
	}
	return r.mean
}

func (r Record) MaxMean() num.Number { return r.mean }

// Compare orders records by minimum, median, mean, geometric mean, maximum,
// stddev and n. Absent values sort after all present ones.
func (r Record) Compare(o Record) int {
	pairs := [][2]num.Number{
		{r.min, o.min},
		{orInf(r.median), orInf(o.median)},
		{r.mean, o.mean},
		{orInf(r.geom), orInf(o.geom)},
		{r.max, o.max},
		{orInf(r.stddev), orInf(o.stddev)},
	}
	for _, p := range pairs {
		if c := p[0].Cmp(p[1]); c != 0 {
			return c
		}
	}
	switch {
	case r.n < o.n:
		return -1
	case r.n > o.n:
		return 1
	}
	return 0
}

func (r Record) Equal(o Record) bool {
	return r.Compare(o) == 0
}

// Hash is consistent with Equal.
func (r Record) Hash() uint64 {
	var b strings.Builder
	b.WriteString(strconv.Itoa(r.n))
	for _, v := range []num.Number{r.min, r.median, r.mean, r.geom, r.max, r.stddev} {
		b.WriteByte(';')
		b.WriteString(canonical(v))
	}
	return xxhash.Sum64String(b.String())
}

// canonical renders integral values as integers regardless of their kind, so
// that equal numbers hash alike.
func canonical(v num.Number) string {
	if i, ok := v.BigInt(); ok {
		return i.String()
	}
	return num.Format(v)
}

func (r Record) String() string {
	fields := []string{"n=" + strconv.Itoa(r.n), "min=" + num.Format(r.min)}
	if !r.median.IsNone() {
		fields = append(fields, "med="+num.Format(r.median))
	}
	fields = append(fields, "mean="+num.Format(r.mean))
	if !r.geom.IsNone() {
		fields = append(fields, "geom="+num.Format(r.geom))
	}
	fields = append(fields, "max="+num.Format(r.max))
	if !r.stddev.IsNone() {
		fields = append(fields, "sd="+num.Format(r.stddev))
	}
	return strings.Join(fields, ";")
}

type recordJSON struct {
	N      int         `json:"n"`
	Min    num.Number  `json:"min"`
	Median *num.Number `json:"med,omitempty"`
	Mean   num.Number  `json:"mean"`
	Geom   *num.Number `json:"geom,omitempty"`
	Max    num.Number  `json:"max"`
	Stddev *num.Number `json:"sd,omitempty"`
}

// JSON returns the serialisable form of r, leaving out absent values.
func (r Record) JSON() any {
	return recordJSON{
		N:      r.n,
		Min:    r.min,
		Median: present(r.median),
		Mean:   r.mean,
		Geom:   present(r.geom),
		Max:    r.max,
		Stddev: present(r.stddev),
	}
}

func present(v num.Number) *num.Number {
	if v.IsNone() {
		return nil
	}
	return &v
}

func orInf(v num.Number) num.Number {
	if v.IsNone() {
		return num.Float(math.Inf(1))
	}
	return v
}
