// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xataio/commons/internal/backoff"
	"github.com/xataio/commons/pkg/csv"
	loglib "github.com/xataio/commons/pkg/log"
	"github.com/xataio/commons/pkg/num"
)

// Source produces numbers one at a time. Read calls fn for every value, in
// order, and stops at the first error fn returns. Values are normalized and
// finite, gaps in the input are not reported.
type Source interface {
	Read(ctx context.Context, fn func(num.Number) error) error
	Close() error
}

// SkipCounter is implemented by sources that can skip invalid values.
type SkipCounter interface {
	Skipped() int
}

var (
	ErrNoSource        = errors.New("no source configured")
	ErrMultipleSources = errors.New("more than one source configured")
	ErrInvalidValue    = errors.New("invalid value")
	ErrColumnNotFound  = errors.New("column not found")
	ErrInvalidQuery    = errors.New("query must return a single column")
)

type options struct {
	logger      loglib.Logger
	skipInvalid bool
	progress    io.Writer
	// commitBackoff retries failed kafka offset commits
	commitBackoff backoff.Provider
}

type Option func(*options)

func WithLogger(l loglib.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSkipInvalid makes sources log and count invalid values instead of
// failing on them.
func WithSkipInvalid() Option {
	return func(o *options) {
		o.skipInvalid = true
	}
}

// WithProgress renders the read progress of regular files to w.
func WithProgress(w io.Writer) Option {
	return func(o *options) {
		o.progress = w
	}
}

func WithCommitBackoff(p backoff.Provider) Option {
	return func(o *options) {
		o.commitBackoff = p
	}
}

func newOptions(name string, opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = loglib.NewLogger(o.logger).WithFields(loglib.Fields{
		loglib.ModuleField: "source",
		loglib.SourceField: name,
	})
	return o
}

// values holds what all sources share: validation of the raw values and the
// invalid value policy.
type values struct {
	options
	skipped int
}

func (v *values) Skipped() int {
	return v.skipped
}

// emitText parses text and hands the value to fn. Blank text is a gap.
func (v *values) emitText(fn func(num.Number) error, text string, fields loglib.Fields) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	n, err := num.Parse(text)
	if err != nil {
		return v.invalid(err, fields)
	}
	return v.emit(fn, n, fields)
}

// emit normalizes n before handing it to fn. None is a gap.
func (v *values) emit(fn func(num.Number) error, n num.Number, fields loglib.Fields) error {
	if n.IsNone() {
		return nil
	}
	n, err := num.Normalize(n)
	if err != nil {
		return v.invalid(err, fields)
	}
	return fn(n)
}

func (v *values) invalid(err error, fields loglib.Fields) error {
	err = fmt.Errorf("%w: %w", ErrInvalidValue, err)
	if !v.skipInvalid {
		return err
	}
	v.skipped++
	v.logger.Warn(err, "skipping invalid value", fields)
	return nil
}

func (c *Config) format() csv.Format {
	f := csv.DefaultFormat()
	if c.File.Separator != "" {
		f.Separator = c.File.Separator
	}
	if c.File.CommentStart != "" {
		f.CommentStart = c.File.CommentStart
	}
	return f
}
