// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xataio/commons/pkg/csv"
	"github.com/xataio/commons/pkg/num"
)

const (
	KeyN       = "n"
	KeyMinimum = "min"
	KeyMean    = "mean"
	KeyMedian  = "med"
	KeyGeom    = "geom"
	KeyMaximum = "max"
	KeyStddev  = "sd"
	KeyValue   = "value"
)

// CSVWriter lays out records as csv rows. The columns are chosen from the
// records it is built for: n is left out if every record has n=1 and the
// caller does not need it, records that all have min=max collapse into a
// single value column, and med and geom only appear if some record has them.
type CSVWriter struct {
	scope     string
	longName  string
	shortName string

	keyN      string
	keyAll    string
	keyMin    string
	keyMean   string
	keyMedian string
	keyGeom   string
	keyMax    string
	keySD     string
}

type CSVWriterOption func(*csvWriterConfig)

type csvWriterConfig struct {
	scope     string
	nOptional bool
	longName  string
	shortName string
}

// WithScope prefixes all columns with scope.
func WithScope(scope string) CSVWriterOption {
	return func(c *csvWriterConfig) {
		c.scope = scope
	}
}

// WithoutN allows leaving out the n column if all records have n=1.
func WithoutN() CSVWriterOption {
	return func(c *csvWriterConfig) {
		c.nOptional = true
	}
}

// WithDescription names what the statistics are about, for the comments.
func WithDescription(long, short string) CSVWriterOption {
	return func(c *csvWriterConfig) {
		c.longName = strings.TrimSpace(long)
		c.shortName = strings.TrimSpace(short)
	}
}

func NewCSVWriter(records []Record, opts ...CSVWriterOption) (*CSVWriter, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records to write", ErrEmptyInput)
	}
	cfg := &csvWriterConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	nNeeded := !cfg.nOptional
	allSame, hasGeom, hasMedian := true, false, false
	for _, r := range records {
		if r.IsZero() {
			return nil, fmt.Errorf("%w: zero record", ErrInvariant)
		}
		nNeeded = nNeeded || r.n != 1
		_, single := r.Compact(false)
		allSame = allSame && single
		hasGeom = hasGeom || !r.geom.IsNone()
		hasMedian = hasMedian || !r.median.IsNone()
	}

	w := &CSVWriter{scope: cfg.scope}
	if nNeeded {
		w.keyN = csv.Scope(cfg.scope, KeyN)
	}
	switch {
	case allSame && (cfg.scope == "" || nNeeded):
		w.keyAll = csv.Scope(cfg.scope, KeyValue)
	case allSame:
		w.keyAll = cfg.scope
	default:
		w.keyMin = csv.Scope(cfg.scope, KeyMinimum)
		w.keyMean = csv.Scope(cfg.scope, KeyMean)
		if hasMedian {
			w.keyMedian = csv.Scope(cfg.scope, KeyMedian)
		}
		if hasGeom {
			w.keyGeom = csv.Scope(cfg.scope, KeyGeom)
		}
		w.keyMax = csv.Scope(cfg.scope, KeyMaximum)
		w.keySD = csv.Scope(cfg.scope, KeyStddev)
	}

	w.longName, w.shortName = cfg.longName, cfg.shortName
	switch {
	case w.longName == "":
		w.longName = w.shortName
	case w.shortName == "":
		w.shortName = w.longName
	default:
		w.longName = fmt.Sprintf("%s (%s)", w.longName, w.shortName)
	}
	return w, nil
}

func (w *CSVWriter) ColumnTitles() []string {
	var titles []string
	if w.keyN != "" {
		titles = append(titles, w.keyN)
	}
	if w.keyAll != "" {
		return append(titles, w.keyAll)
	}
	titles = append(titles, w.keyMin, w.keyMean)
	if w.keyMedian != "" {
		titles = append(titles, w.keyMedian)
	}
	if w.keyGeom != "" {
		titles = append(titles, w.keyGeom)
	}
	return append(titles, w.keyMax, w.keySD)
}

// Row renders r in the column order of ColumnTitles.
func (w *CSVWriter) Row(r Record) ([]string, error) {
	var row []string
	if w.keyN != "" {
		row = append(row, strconv.Itoa(r.n))
	} else if r.n != 1 {
		return nil, fmt.Errorf("%w: n=%d but the n column is omitted", ErrInvalidColumns, r.n)
	}
	if w.keyAll != "" {
		v, ok := r.Compact(false)
		if !ok {
			return nil, fmt.Errorf("%w: %v does not have a single value", ErrInvalidColumns, r)
		}
		return append(row, num.Format(v)), nil
	}
	row = append(row, num.Format(r.min), num.Format(r.mean))
	if w.keyMedian != "" {
		row = append(row, num.FormatOrNone(r.median))
	}
	if w.keyGeom != "" {
		row = append(row, num.FormatOrNone(r.geom))
	}
	return append(row, num.Format(r.max), num.FormatOrNone(r.stddev)), nil
}

// EmptyRow is the row of a missing record, used when several scoped blocks
// share one line and one of them has no data.
func (w *CSVWriter) EmptyRow() []string {
	return make([]string, len(w.ColumnTitles()))
}

// OptionalRow renders r, or an empty row if r is the zero Record.
func (w *CSVWriter) OptionalRow(r Record) ([]string, error) {
	if r.IsZero() {
		return w.EmptyRow(), nil
	}
	return w.Row(r)
}

func (w *CSVWriter) HeaderComments() []string {
	if w.scope == "" || w.longName == "" {
		return nil
	}
	return []string{fmt.Sprintf("Statistics about %s.", w.longName)}
}

// FooterComments document every column.
func (w *CSVWriter) FooterComments() []string {
	name, short := "", ""
	if w.longName != "" {
		name = " " + w.longName
	}
	if w.shortName != "" {
		short = " " + w.shortName
	}
	comments := []string{""}
	if w.scope != "" && (w.keyN != "" || w.keyAll != "") {
		comments = append(comments, fmt.Sprintf("All%s statistics start with %q.", name, w.scope+csv.ScopeSeparator))
		name = short
	}
	if w.keyN != "" {
		comments = append(comments, fmt.Sprintf("%s: the number of%s samples", w.keyN, name))
		name = short
	}
	if w.keyAll != "" {
		return append(comments, fmt.Sprintf("%s: all%s samples have this value", w.keyAll, name))
	}

	n := w.keyN
	if n == "" {
		n = KeyN
	}
	comments = append(comments,
		fmt.Sprintf("%s: the smallest encountered%s value", w.keyMin, name),
		fmt.Sprintf("%s: the arithmetic mean of all the%s values, i.e., the sum of the values divided by their number %s", w.keyMean, short, n))
	if w.keyMedian != "" {
		comments = append(comments, fmt.Sprintf("%s: the median of all the%s values, i.e., the middle value of the sorted values, or the mean of the two middle values if %s is even", w.keyMedian, short, n))
	}
	if w.keyGeom != "" {
		comments = append(comments, fmt.Sprintf("%s: the geometric mean of all the%s values, i.e., the %s-th root of their product, only defined if all values are > 0", w.keyGeom, short, n))
	}
	return append(comments,
		fmt.Sprintf("%s: the largest encountered%s value", w.keyMax, short),
		fmt.Sprintf("%s: the standard deviation of the%s values, i.e., the square root of ((sum of squares) - (square of the sum) / %s) / (%s - 1)", w.keySD, short, n, n))
}

// WriteCSV writes records as a complete csv document.
func WriteCSV(w io.Writer, format csv.Format, records []Record, opts ...CSVWriterOption) error {
	cw, err := NewCSVWriter(records, opts...)
	if err != nil {
		return err
	}
	return csv.Write(w, format, records, cw)
}
