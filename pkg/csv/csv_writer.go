// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// RowWriter describes how values of type T are laid out as csv rows.
type RowWriter[T any] interface {
	HeaderComments() []string
	ColumnTitles() []string
	Row(v T) ([]string, error)
	FooterComments() []string
}

// Write renders the header comments, the column titles, one row per value
// and the footer comments. Trailing empty fields of a row are dropped.
func Write[T any](w io.Writer, format Format, data []T, rw RowWriter[T]) error {
	if err := format.Validate(); err != nil {
		return err
	}

	forbidden := []string{"\n", "\r", format.Separator}
	if format.CommentStart != "" {
		forbidden = append(forbidden, format.CommentStart)
	}
	isValid := func(s string) bool {
		for _, f := range forbidden {
			if strings.Contains(s, f) {
				return false
			}
		}
		return true
	}

	bw := bufio.NewWriter(w)
	line := func(s string) error {
		_, err := bw.WriteString(s + "\n")
		return err
	}

	if err := writeComments(line, format, rw.HeaderComments()); err != nil {
		return err
	}

	titles := rw.ColumnTitles()
	if len(titles) == 0 {
		return fmt.Errorf("%w: no columns", ErrInvalidHeader)
	}
	seen := make(map[string]struct{}, len(titles))
	for i, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" || !isValid(t) {
			return fmt.Errorf("%w: invalid title %q", ErrInvalidHeader, titles[i])
		}
		if _, found := seen[t]; found {
			return fmt.Errorf("%w: duplicated title %q", ErrInvalidHeader, t)
		}
		seen[t] = struct{}{}
		titles[i] = t
	}
	if err := line(strings.Join(titles, format.Separator)); err != nil {
		return err
	}

	for _, v := range data {
		row, err := rw.Row(v)
		if err != nil {
			return err
		}
		if len(row) > len(titles) {
			return fmt.Errorf("%w: %d fields for %d columns", ErrInvalidRow, len(row), len(titles))
		}
		last := 0
		for i, f := range row {
			f = strings.TrimSpace(f)
			if !isValid(f) {
				return fmt.Errorf("%w: invalid field %q", ErrInvalidRow, row[i])
			}
			if f != "" {
				last = i + 1
			}
			row[i] = f
		}
		if last == 0 {
			if len(titles) <= 1 {
				return fmt.Errorf("%w: empty row in single column format", ErrInvalidRow)
			}
			if err := line(format.Separator); err != nil {
				return err
			}
			continue
		}
		if err := line(strings.Join(row[:last], format.Separator)); err != nil {
			return err
		}
	}

	if err := writeComments(line, format, rw.FooterComments()); err != nil {
		return err
	}
	return bw.Flush()
}

func writeComments(line func(string) error, format Format, comments []string) error {
	if len(comments) == 0 || format.CommentStart == "" {
		return nil
	}
	for _, c := range comments {
		c = strings.TrimSpace(c)
		if strings.ContainsAny(c, "\r\n") {
			return fmt.Errorf("%w: comment %q contains a newline", ErrInvalidFormat, c)
		}
		out := format.CommentStart
		if c != "" {
			out += " " + c
		}
		if err := line(out); err != nil {
			return err
		}
	}
	return nil
}
