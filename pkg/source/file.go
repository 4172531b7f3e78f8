// SPDX-License-Identifier: Apache-2.0

package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xataio/commons/pkg/csv"
	loglib "github.com/xataio/commons/pkg/log"
	"github.com/xataio/commons/pkg/num"
)

const maxLineSize = 1024 * 1024

// LinesSource reads one number per line. Blank lines are gaps and anything
// after a '#' is a comment.
type LinesSource struct {
	values
	reader io.Reader
}

func NewLinesSource(r io.Reader, opts ...Option) *LinesSource {
	return &LinesSource{
		values: values{options: newOptions("lines", opts)},
		reader: r,
	}
}

func (s *LinesSource) Read(ctx context.Context, fn func(num.Number) error) error {
	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++
		line, _, _ := strings.Cut(scanner.Text(), csv.DefaultCommentStart)
		if err := s.emitText(fn, line, loglib.Fields{"line": lineNo}); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading lines: %w", err)
	}
	return nil
}

func (s *LinesSource) Close() error {
	return closeReader(s.reader)
}

// CSVColumnSource reads the values of one column of a csv file. Empty cells
// are gaps.
type CSVColumnSource struct {
	values
	reader io.Reader
	column string
	format csv.Format
}

// NewCSVColumnSource reads column, which may be omitted when the file has a
// single column.
func NewCSVColumnSource(r io.Reader, column string, format csv.Format, opts ...Option) *CSVColumnSource {
	return &CSVColumnSource{
		values: values{options: newOptions("csv", opts)},
		reader: r,
		column: column,
		format: format,
	}
}

func (s *CSVColumnSource) Read(ctx context.Context, fn func(num.Number) error) error {
	row := 0
	return csv.Read(s.reader, s.format, func(columns map[string]int) (csv.RowHandler, error) {
		idx, err := s.columnIndex(columns)
		if err != nil {
			return nil, err
		}
		return func(cols []string) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row++
			return s.emitText(fn, cols[idx], loglib.Fields{"row": row, "column": s.column})
		}, nil
	})
}

func (s *CSVColumnSource) columnIndex(columns map[string]int) (int, error) {
	if s.column == "" {
		if len(columns) != 1 {
			return 0, fmt.Errorf("%w: no column selected among %d", ErrColumnNotFound, len(columns))
		}
		return 0, nil
	}
	idx, found := columns[s.column]
	if !found {
		return 0, fmt.Errorf("%w: %q", ErrColumnNotFound, s.column)
	}
	return idx, nil
}

func (s *CSVColumnSource) Close() error {
	return closeReader(s.reader)
}

func closeReader(r io.Reader) error {
	if c, ok := r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
