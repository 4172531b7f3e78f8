// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/xataio/commons/pkg/csv"
	"github.com/xataio/commons/pkg/num"
)

// Kind selects which records a CSVReader builds.
type Kind uint8

const (
	KindSample Kind = iota
	KindStream
)

func (k Kind) String() string {
	if k == KindStream {
		return "stream"
	}
	return "sample"
}

const absent = -1

// CSVReader parses records from csv rows laid out by a CSVWriter. Missing
// columns are filled in from the ones present, which is what allows reading
// back the collapsed single value layout.
type CSVReader struct {
	kind      Kind
	idxN      int
	idxMin    int
	idxMean   int
	idxMedian int
	idxGeom   int
	idxMax    int
	idxSD     int
	single    bool
}

func NewCSVReader(columns map[string]int, kind Kind) (*CSVReader, error) {
	remaining := maps.Clone(columns)
	take := func(key string) int {
		idx, found := remaining[key]
		if !found {
			return absent
		}
		delete(remaining, key)
		return idx
	}

	r := &CSVReader{
		kind:      kind,
		idxN:      take(KeyN),
		idxMedian: absent,
		idxGeom:   absent,
	}
	values := 0
	last := absent
	valueColumn := func(key string) int {
		idx := take(key)
		if idx != absent {
			values++
			last = idx
		}
		return idx
	}
	r.idxMin = valueColumn(KeyMinimum)
	r.idxMean = valueColumn(KeyMean)
	if kind == KindSample {
		r.idxMedian = valueColumn(KeyMedian)
		r.idxGeom = valueColumn(KeyGeom)
	}
	r.idxMax = valueColumn(KeyMaximum)
	r.idxSD = take(KeyStddev)

	if values == 0 {
		if len(remaining) != 1 {
			return nil, fmt.Errorf("%w: no value columns in %v", ErrInvalidColumns, slices.Sorted(maps.Keys(columns)))
		}
		// a single column of any name, such as "value" or a bare scope
		for key := range remaining {
			r.idxMin = take(key)
		}
		values, last = 1, r.idxMin
	}
	if len(remaining) > 0 {
		return nil, fmt.Errorf("%w: unexpected columns %v", ErrInvalidColumns, slices.Sorted(maps.Keys(remaining)))
	}

	r.single = r.idxSD == absent && values == 1
	if r.single {
		r.idxMin, r.idxMax, r.idxMean = last, last, last
		if kind == KindSample {
			r.idxMedian = last
		}
	}
	return r, nil
}

// ParseRow parses one row. The row must have a value in at least one of the
// value columns.
func (r *CSVReader) ParseRow(row []string) (Record, error) {
	n := 1
	if r.idxN != absent {
		var err error
		if n, err = strconv.Atoi(row[r.idxN]); err != nil {
			return Record{}, fmt.Errorf("%w: n=%q", ErrInvalidColumns, row[r.idxN])
		}
	}

	var err error
	field := func(idx int) num.Number {
		if idx == absent || err != nil {
			return num.None
		}
		var v num.Number
		if v, err = num.ParseOrNone(row[idx]); err != nil {
			err = fmt.Errorf("column %d: %w", idx, err)
		}
		return v
	}
	mi := field(r.idxMin)
	if err != nil {
		return Record{}, err
	}

	if r.single {
		if mi.IsNone() {
			return Record{}, fmt.Errorf("%w: no value in %q", ErrInvalidColumns, row)
		}
		sd := num.None
		if n > 1 {
			sd = num.Int(0)
		}
		if r.kind == KindStream {
			return NewStream(n, mi, mi, mi, sd)
		}
		geom := num.None
		if mi.Sign() > 0 || r.idxGeom != absent {
			geom = mi
		}
		return NewSample(n, mi, mi, mi, geom, mi, sd)
	}

	mean, median, geom, ma, sd := field(r.idxMean), field(r.idxMedian), field(r.idxGeom), field(r.idxMax), field(r.idxSD)
	if err != nil {
		return Record{}, err
	}
	if mi.IsNone() {
		for _, v := range []num.Number{mean, median, geom, ma} {
			if !v.IsNone() {
				mi = v
				break
			}
		}
		if mi.IsNone() {
			return Record{}, fmt.Errorf("%w: no value in %q", ErrInvalidColumns, row)
		}
	}
	mean, median, ma = orDefault(mean, mi), orDefault(median, mi), orDefault(ma, mi)
	if geom.IsNone() && mi.Sign() > 0 {
		geom = mi
	}
	if sd.IsNone() && n > 1 {
		if !mi.Equal(ma) {
			return Record{}, fmt.Errorf("%w: n=%d, min=%v, max=%v", ErrMissingStddev, n, mi, ma)
		}
		sd = num.Int(0)
	}

	if r.kind == KindStream {
		return NewStream(n, mi, mean, ma, sd)
	}
	return NewSample(n, mi, median, mean, geom, ma, sd)
}

// ParseOptionalRow is ParseRow, except that a row without any value yields
// false instead of an error.
func (r *CSVReader) ParseOptionalRow(row []string) (Record, bool, error) {
	for _, idx := range []int{r.idxMin, r.idxMean, r.idxMedian, r.idxGeom, r.idxMax} {
		if idx != absent && row[idx] != "" {
			rec, err := r.ParseRow(row)
			return rec, err == nil, err
		}
	}
	return Record{}, false, nil
}

// ReadCSV reads all records of the given scope from a csv document. An empty
// scope reads unscoped columns. The n column may be shared between scopes.
func ReadCSV(in io.Reader, format csv.Format, kind Kind, scope string) ([]Record, error) {
	return csv.ReadAll(in, format, func(columns map[string]int) (func([]string) (Record, error), error) {
		reader, err := NewCSVReader(csv.SelectScope(columns, scope, KeyN), kind)
		if err != nil {
			return nil, err
		}
		return reader.ParseRow, nil
	})
}

func orDefault(v, def num.Number) num.Number {
	if v.IsNone() {
		return def
	}
	return v
}
