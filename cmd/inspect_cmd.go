// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xataio/commons/internal/json"
	"github.com/xataio/commons/pkg/csv"
	"github.com/xataio/commons/pkg/num"
	"github.com/xataio/commons/pkg/stats"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Reads back the statistics of a csv file written by commons",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(cmd.Flags().Lookup("kind").Value.String())
		if err != nil {
			return err
		}
		format := csv.DefaultFormat()
		if sep := cmd.Flags().Lookup("separator").Value.String(); sep != "" {
			format.Separator = sep
		}
		if cs := cmd.Flags().Lookup("comment-start").Value.String(); cs != "" {
			format.CommentStart = cs
		}

		var in io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		records, err := stats.ReadCSV(in, format, kind, cmd.Flags().Lookup("scope").Value.String())
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		return print(cmd, inspection(records))
	},
	Example: `
	commons inspect summary.csv
	commons inspect summary.csv --scope stream --kind stream
	commons summarize --file latencies.txt | commons inspect - --scope sample --json=false`,
}

func parseKind(s string) (stats.Kind, error) {
	switch s {
	case stats.KindSample.String():
		return stats.KindSample, nil
	case stats.KindStream.String():
		return stats.KindStream, nil
	default:
		return 0, fmt.Errorf("unsupported statistics kind %q", s)
	}
}

type inspection []stats.Record

func (i inspection) PrettyPrint() string {
	lines := make([]string, 0, len(i))
	for _, r := range i {
		if v, ok := r.Compact(true); ok {
			lines = append(lines, num.Format(v))
			continue
		}
		lines = append(lines, r.String())
	}
	return strings.Join(lines, "\n")
}

func (i inspection) MarshalJSON() ([]byte, error) {
	records := make([]any, 0, len(i))
	for _, r := range i {
		records = append(records, r.JSON())
	}
	return json.Marshal(records)
}

type printer interface {
	PrettyPrint() string
}

func print(cmd *cobra.Command, p printer) error {
	str := p.PrettyPrint()
	if cmd.Flags().Lookup("json").Value.String() == "true" {
		jsonData, err := json.MarshalIndent(p, "", "\t")
		if err != nil {
			return err
		}
		str = string(jsonData)
	}

	fmt.Println(str) //nolint:forbidigo
	return nil
}
