// SPDX-License-Identifier: Apache-2.0

package summarizer

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/xataio/commons/internal/json"
	"github.com/xataio/commons/pkg/csv"
	"github.com/xataio/commons/pkg/num"
	"github.com/xataio/commons/pkg/stats"
)

const KeySum = "sum"

// Write renders the summary as a single csv row, in which every statistics
// mode has its own scoped block and all blocks share the n column, or as a
// json document.
func Write(w io.Writer, summary *Summary, output OutputConfig) error {
	if err := output.Validate(); err != nil {
		return err
	}
	if output.Format == FormatJSON {
		return json.Write(w, summary.JSON())
	}

	sw, err := newSummaryWriter(summary)
	if err != nil {
		return err
	}
	return csv.Write(w, output.CSVFormat(), []*Summary{summary}, sw)
}

type summaryJSON struct {
	N       int         `json:"n"`
	Skipped int         `json:"skipped,omitempty"`
	Sample  any         `json:"sample,omitempty"`
	Stream  any         `json:"stream,omitempty"`
	Sum     *num.Number `json:"sum,omitempty"`
}

// JSON returns the serialisable form of the summary. The sum is null when
// requested for an empty source.
func (s *Summary) JSON() any {
	out := summaryJSON{N: s.Count, Skipped: s.Skipped}
	if s.Sample != nil {
		out.Sample = s.Sample.JSON()
	}
	if s.Stream != nil {
		out.Stream = s.Stream.JSON()
	}
	if slices.Contains(s.Modes, ModeSum) {
		sum := s.Sum
		out.Sum = &sum
	}
	return out
}

// block is the scoped part of the row written for one statistics mode.
type block struct {
	writer *stats.CSVWriter
	record stats.Record
	// keyN is the scoped n column of the writer, replaced by the shared one
	keyN string
}

type summaryWriter struct {
	blocks []block
	sum    bool
}

func newSummaryWriter(summary *Summary) (*summaryWriter, error) {
	sw := &summaryWriter{sum: slices.Contains(summary.Modes, ModeSum)}
	for _, scoped := range []struct {
		mode   Mode
		record *stats.Record
	}{
		{mode: ModeSample, record: summary.Sample},
		{mode: ModeStream, record: summary.Stream},
	} {
		if scoped.record == nil {
			continue
		}
		scope := string(scoped.mode)
		w, err := stats.NewCSVWriter([]stats.Record{*scoped.record},
			stats.WithScope(scope),
			stats.WithDescription(scope+" values", scope))
		if err != nil {
			return nil, fmt.Errorf("%s block: %w", scope, err)
		}
		sw.blocks = append(sw.blocks, block{
			writer: w,
			record: *scoped.record,
			keyN:   csv.Scope(scope, stats.KeyN),
		})
	}
	if len(sw.blocks) == 0 && !sw.sum {
		return nil, ErrNoModes
	}
	return sw, nil
}

func (sw *summaryWriter) HeaderComments() []string {
	var comments []string
	for _, b := range sw.blocks {
		comments = append(comments, b.writer.HeaderComments()...)
	}
	return comments
}

func (sw *summaryWriter) ColumnTitles() []string {
	titles := []string{stats.KeyN}
	for _, b := range sw.blocks {
		for _, t := range b.writer.ColumnTitles() {
			if t != b.keyN {
				titles = append(titles, t)
			}
		}
	}
	if sw.sum {
		titles = append(titles, KeySum)
	}
	return titles
}

func (sw *summaryWriter) Row(s *Summary) ([]string, error) {
	row := []string{strconv.Itoa(s.Count)}
	for _, b := range sw.blocks {
		fields, err := b.writer.Row(b.record)
		if err != nil {
			return nil, err
		}
		titles := b.writer.ColumnTitles()
		for i, f := range fields {
			if titles[i] != b.keyN {
				row = append(row, f)
			}
		}
	}
	if sw.sum {
		row = append(row, num.FormatOrNone(s.Sum))
	}
	return row, nil
}

func (sw *summaryWriter) FooterComments() []string {
	comments := []string{"", fmt.Sprintf("%s: the number of values", stats.KeyN)}
	for _, b := range sw.blocks {
		for _, c := range b.writer.FooterComments() {
			if c == "" || strings.HasPrefix(c, b.keyN+":") {
				continue
			}
			comments = append(comments, strings.ReplaceAll(c, b.keyN, stats.KeyN))
		}
	}
	if sw.sum {
		comments = append(comments, fmt.Sprintf("%s: the sum of all the values, empty if there are none", KeySum))
	}
	return comments
}
