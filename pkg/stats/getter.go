// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"fmt"
	"strings"

	"github.com/xataio/commons/pkg/num"
)

// Getter extracts one dimension of a record.
type Getter func(Record) num.Number

// GetterOrNone is a Getter for records that may be missing. A nil record
// yields None.
type GetterOrNone func(*Record) num.Number

func (g Getter) OrNone() GetterOrNone {
	return func(r *Record) num.Number {
		if r == nil {
			return num.None
		}
		return g(*r)
	}
}

var getters = map[string]Getter{
	KeyN:       func(r Record) num.Number { return num.Int(int64(r.n)) },
	KeyMinimum: Record.Minimum,
	KeyMean:    Record.MeanArith,
	KeyMedian:  Record.Median,
	KeyGeom:    Record.MeanGeom,
	KeyMaximum: Record.Maximum,
	KeyStddev:  Record.Stddev,
	"minmean":  Record.MinMean,
	"maxmean":  Record.MaxMean,
}

var aliases = map[string]string{
	"minimum":            KeyMinimum,
	"mean_arith":         KeyMean,
	"arithmetic mean":    KeyMean,
	"average":            KeyMean,
	"median":             KeyMedian,
	"mean_geom":          KeyGeom,
	"geometric mean":     KeyGeom,
	"gmean":              KeyGeom,
	"maximum":            KeyMaximum,
	"stddev":             KeyStddev,
	"standard deviation": KeyStddev,
}

// GetterFor resolves a dimension name, such as "mean" or "standard
// deviation", to its getter. Names are case insensitive.
func GetterFor(dimension string) (Getter, error) {
	key := strings.ToLower(strings.TrimSpace(dimension))
	if alias, found := aliases[key]; found {
		key = alias
	}
	if g, found := getters[key]; found {
		return g, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, dimension)
}

// GetterOrNoneFor is GetterFor for records that may be missing.
func GetterOrNoneFor(dimension string) (GetterOrNone, error) {
	g, err := GetterFor(dimension)
	if err != nil {
		return nil, err
	}
	return g.OrNone(), nil
}
