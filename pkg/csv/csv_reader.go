// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const maxLineSize = 1024 * 1024

// RowHandler processes one data row. The row always has as many fields as
// the header.
type RowHandler func(row []string) error

// HandlerFactory builds the row handler from the header, which maps each
// column title to its index.
type HandlerFactory func(columns map[string]int) (RowHandler, error)

// Read parses the csv text in r. Anything after the comment start is
// ignored, as are blank lines. The first remaining line is the header.
func Read(r io.Reader, format Format, factory HandlerFactory) error {
	if err := format.Validate(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	trim := strings.TrimSpace
	if strings.TrimSpace(format.Separator) != format.Separator {
		// whitespace separators must survive at the line start
		trim = func(s string) string { return strings.TrimRight(s, " \t\r\n") }
	}

	var handler RowHandler
	colCount := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if format.CommentStart != "" {
			if idx := strings.Index(line, format.CommentStart); idx >= 0 {
				line = line[:idx]
			}
		}
		line = trim(line)
		if line == "" {
			continue
		}

		cols := strings.Split(line, format.Separator)
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}

		if handler == nil {
			columns, err := parseHeader(cols)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			colCount = len(cols)
			if handler, err = factory(columns); err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			continue
		}

		if len(cols) > colCount {
			return fmt.Errorf("%w: line %d has %d columns, header has %d", ErrInvalidRow, lineNo, len(cols), colCount)
		}
		for len(cols) < colCount {
			cols = append(cols, "")
		}
		if err := handler(cols); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading csv: %w", err)
	}
	return nil
}

// ReadAll parses all rows of r into values.
func ReadAll[T any](r io.Reader, format Format, newParser func(columns map[string]int) (func([]string) (T, error), error)) ([]T, error) {
	var values []T
	err := Read(r, format, func(columns map[string]int) (RowHandler, error) {
		parse, err := newParser(columns)
		if err != nil {
			return nil, err
		}
		return func(row []string) error {
			v, err := parse(row)
			if err != nil {
				return err
			}
			values = append(values, v)
			return nil
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

func parseHeader(cols []string) (map[string]int, error) {
	columns := make(map[string]int, len(cols))
	for i, c := range cols {
		if c == "" {
			return nil, fmt.Errorf("%w: empty title in %q", ErrInvalidHeader, cols)
		}
		if _, found := columns[c]; found {
			return nil, fmt.Errorf("%w: duplicated title %q", ErrInvalidHeader, c)
		}
		columns[c] = i
	}
	return columns, nil
}
