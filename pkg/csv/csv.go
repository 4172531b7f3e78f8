// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultSeparator    = ";"
	DefaultCommentStart = "#"
	ScopeSeparator      = "."
)

var (
	ErrInvalidFormat = errors.New("invalid csv format")
	ErrInvalidHeader = errors.New("invalid csv header")
	ErrInvalidRow    = errors.New("invalid csv row")
)

// Format describes the text layout of a csv file. An empty CommentStart
// disables comments.
type Format struct {
	Separator    string
	CommentStart string
}

func DefaultFormat() Format {
	return Format{
		Separator:    DefaultSeparator,
		CommentStart: DefaultCommentStart,
	}
}

func (f Format) Validate() error {
	if f.Separator == "" || strings.ContainsAny(f.Separator, "\r\n") {
		return fmt.Errorf("%w: separator %q", ErrInvalidFormat, f.Separator)
	}
	if f.CommentStart == "" {
		return nil
	}
	if strings.TrimSpace(f.CommentStart) != f.CommentStart ||
		strings.Contains(f.Separator, f.CommentStart) ||
		strings.Contains(f.CommentStart, f.Separator) ||
		strings.ContainsAny(f.CommentStart, "\r\n") {
		return fmt.Errorf("%w: comment start %q with separator %q", ErrInvalidFormat, f.CommentStart, f.Separator)
	}
	return nil
}

// Scope prefixes key with scope. Either of them may be empty.
func Scope(scope, key string) string {
	switch {
	case scope == "":
		return key
	case key == "":
		return scope
	default:
		return scope + ScopeSeparator + key
	}
}

// SelectScope returns the columns that belong to scope, with the scope prefix
// removed. The shared keys are taken from the unscoped columns when the scope
// does not define them itself, which allows several scoped blocks to share
// a single column such as the sample count.
func SelectScope(columns map[string]int, scope string, shared ...string) map[string]int {
	if scope == "" {
		selected := make(map[string]int, len(columns))
		for k, v := range columns {
			selected[k] = v
		}
		return selected
	}

	prefix := scope + ScopeSeparator
	selected := map[string]int{}
	for k, v := range columns {
		if key, found := strings.CutPrefix(k, prefix); found && key != "" {
			selected[key] = v
		} else if k == scope {
			// a scope with a single unnamed value column
			selected[k] = v
		}
	}
	for _, key := range shared {
		if _, found := selected[key]; found {
			continue
		}
		if idx, found := columns[key]; found {
			selected[key] = idx
		}
	}
	return selected
}
