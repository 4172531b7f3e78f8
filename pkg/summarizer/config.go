// SPDX-License-Identifier: Apache-2.0

package summarizer

import (
	"errors"
	"fmt"

	"github.com/xataio/commons/pkg/csv"
	"github.com/xataio/commons/pkg/source"
)

type Mode string

const (
	// ModeSample computes the batch statistics of all the values, which are
	// kept in memory.
	ModeSample Mode = "sample"
	// ModeStream computes the statistics without keeping the values.
	ModeStream Mode = "stream"
	// ModeSum adds all the values.
	ModeSum Mode = "sum"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var (
	ErrNoModes       = errors.New("no summary mode requested")
	ErrUnknownMode   = errors.New("unknown summary mode")
	ErrInvalidOutput = errors.New("invalid output format")
)

type Config struct {
	Source source.Config
	Modes  []Mode
	// SumWorkers is the number of partial sums computed in parallel.
	// Defaults to 1.
	SumWorkers uint
	Output     OutputConfig
}

type OutputConfig struct {
	// Format is csv (default) or json.
	Format       string
	Separator    string
	CommentStart string
}

func (c *Config) Validate() error {
	if len(c.Modes) == 0 {
		return ErrNoModes
	}
	for _, m := range c.Modes {
		switch m {
		case ModeSample, ModeStream, ModeSum:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownMode, m)
		}
	}
	return c.Output.Validate()
}

func (c *Config) sumWorkers() uint {
	if c.SumWorkers == 0 {
		return 1
	}
	return c.SumWorkers
}

func (c OutputConfig) Validate() error {
	switch c.Format {
	case "", FormatCSV:
		if err := c.CSVFormat().Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOutput, err)
		}
		return nil
	case FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutput, c.Format)
	}
}

// CSVFormat is the default csv format with the configured overrides.
func (c OutputConfig) CSVFormat() csv.Format {
	f := csv.DefaultFormat()
	if c.Separator != "" {
		f.Separator = c.Separator
	}
	if c.CommentStart != "" {
		f.CommentStart = c.CommentStart
	}
	return f
}

// ParseModes converts mode names, as found in flags and configuration
// files.
func ParseModes(names []string) ([]Mode, error) {
	modes := make([]Mode, 0, len(names))
	for _, name := range names {
		m := Mode(name)
		switch m {
		case ModeSample, ModeStream, ModeSum:
			modes = append(modes, m)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownMode, name)
		}
	}
	return modes, nil
}
