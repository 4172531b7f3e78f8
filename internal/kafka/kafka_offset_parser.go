// SPDX-License-Identifier: Apache-2.0

package kafka

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Offset is the position of a message, rendered as
// "<topic>/<partition>/<offset>".
type Offset struct {
	Topic     string
	Partition int
	Offset    int64
}

type OffsetParser interface {
	ToString(o *Offset) string
	FromString(s string) (*Offset, error)
}

type Parser struct{}

var ErrInvalidOffsetFormat = errors.New("invalid format for kafka offset")

func NewOffsetParser() *Parser {
	return &Parser{}
}

func (p *Parser) ToString(o *Offset) string {
	return fmt.Sprintf("%s/%d/%d", o.Topic, o.Partition, o.Offset)
}

// FromString splits on the last two separators, so topic names containing a
// slash are accepted.
func (p *Parser) FromString(s string) (*Offset, error) {
	last := strings.LastIndex(s, "/")
	if last < 0 {
		return nil, ErrInvalidOffsetFormat
	}
	middle := strings.LastIndex(s[:last], "/")
	if middle <= 0 {
		return nil, ErrInvalidOffsetFormat
	}

	partition, err := strconv.Atoi(s[middle+1 : last])
	if err != nil {
		return nil, fmt.Errorf("parsing partition from string: %w: %w", ErrInvalidOffsetFormat, err)
	}
	offset, err := strconv.ParseInt(s[last+1:], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing offset from string: %w: %w", ErrInvalidOffsetFormat, err)
	}
	if partition < 0 || offset < 0 {
		return nil, fmt.Errorf("negative position in %q: %w", s, ErrInvalidOffsetFormat)
	}

	return &Offset{
		Topic:     s[:middle],
		Partition: partition,
		Offset:    offset,
	}, nil
}
