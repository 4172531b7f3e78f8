// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xataio/commons/cmd/config"
	"github.com/xataio/commons/pkg/source"
	"github.com/xataio/commons/pkg/summarizer"
)

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "summarize",
		Short:  "Computes the statistics of all the values read from the configured source",
		PreRun: summarizeFlagBinding,
		RunE:   withProfiling(withSignalWatcher(summarize(nil))),
		Example: `
	commons summarize --file latencies.txt
	commons summarize --file requests.csv --column duration --separator ,
	commons summarize --postgres-url <postgres-url> --query "SELECT duration FROM requests" --modes sample,sum
	commons summarize -c config.yaml --format json`,
	}
}

func newStreamCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "stream",
		Short:  "Computes the statistics of the values read from the configured source without keeping them in memory",
		PreRun: summarizeFlagBinding,
		RunE:   withProfiling(withSignalWatcher(summarize([]summarizer.Mode{summarizer.ModeStream}))),
		Example: `
	commons stream --kafka-servers localhost:9092 --kafka-topic latencies --max-messages 10000
	commons stream -c config.env`,
	}
}

func newSumCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "sum",
		Short:  "Adds all the values read from the configured source",
		PreRun: summarizeFlagBinding,
		RunE:   withProfiling(withSignalWatcher(summarize([]summarizer.Mode{summarizer.ModeSum}))),
		Example: `
	commons sum --file amounts.txt --workers 4
	commons sum -c config.yaml`,
	}
}

// summarize runs the summarizer with the given modes, or with the configured
// ones if none are given.
func summarize(modes []summarizer.Mode) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		logger, err := newLogger()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}

		cfg, err := config.ParseSummarizerConfig()
		if err != nil {
			return fmt.Errorf("parsing summarizer config: %w", err)
		}
		switch {
		case modes != nil:
			cfg.Modes = modes
		case len(cfg.Modes) == 0:
			cfg.Modes = []summarizer.Mode{summarizer.ModeSample}
		}

		provider, err := newInstrumentationProvider()
		if err != nil {
			return err
		}
		defer provider.Close()

		s, err := summarizer.New(cfg,
			summarizer.WithLogger(logger),
			summarizer.WithInstrumentation(provider.NewInstrumentation("summarizer")),
			summarizer.WithSourceOptions(source.WithProgress(os.Stderr)))
		if err != nil {
			return err
		}

		sp, _ := pterm.DefaultSpinner.WithWriter(os.Stderr).WithRemoveWhenDone().WithText("reading values...").Start()
		summary, err := s.Summarize(ctx)
		if err != nil {
			sp.Fail(err.Error())
			return err
		}
		sp.Success(fmt.Sprintf("read %d values", summary.Count))

		return summarizer.Write(os.Stdout, summary, cfg.Output)
	}
}

func sourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("file", "", "File to read one number per line from, or a csv file with --column. Defaults to stdin")
	cmd.Flags().String("column", "", "Column of the csv file to read")
	cmd.Flags().Bool("progress", false, "Whether to show the progress of reading the file")
	cmd.Flags().StringSlice("kafka-servers", nil, "Kafka servers to read values from")
	cmd.Flags().String("kafka-topic", "", "Kafka topic to read values from")
	cmd.Flags().String("kafka-group", "", "Kafka consumer group. Offsets are committed when set")
	cmd.Flags().String("kafka-start-offset", "", "Where to start reading the kafka topic. One of earliest, latest, or <topic>/<partition>/<offset>")
	cmd.Flags().Int("max-messages", 0, "Number of kafka messages to read. Reads until interrupted when 0")
	cmd.Flags().String("postgres-url", "", "Postgres URL to query values from")
	cmd.Flags().String("query", "", "Query returning a single numeric column")
	cmd.Flags().Bool("skip-invalid", false, "Whether to skip invalid values instead of failing")
}

func outputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "", "Output format. One of csv, json. Defaults to csv")
	cmd.Flags().String("separator", "", "Field separator of the csv output. Defaults to ;")
	cmd.Flags().String("comment-start", "", "Comment start of the csv output. Defaults to #")
}

// flagKeys maps flags to the yaml and the env configuration keys they
// override.
var flagKeys = []struct {
	flag    string
	yamlKey string
	envKey  string
}{
	{flag: "file", yamlKey: "source.file.path", envKey: "COMMONS_SOURCE_FILE_PATH"},
	{flag: "column", yamlKey: "source.file.column", envKey: "COMMONS_SOURCE_FILE_COLUMN"},
	{flag: "progress", yamlKey: "source.file.progress", envKey: "COMMONS_SOURCE_FILE_PROGRESS"},
	{flag: "kafka-servers", yamlKey: "source.kafka.servers", envKey: "COMMONS_SOURCE_KAFKA_SERVERS"},
	{flag: "kafka-topic", yamlKey: "source.kafka.topic", envKey: "COMMONS_SOURCE_KAFKA_TOPIC"},
	{flag: "kafka-group", yamlKey: "source.kafka.consumer_group_id", envKey: "COMMONS_SOURCE_KAFKA_CONSUMER_GROUP_ID"},
	{flag: "kafka-start-offset", yamlKey: "source.kafka.start_offset", envKey: "COMMONS_SOURCE_KAFKA_START_OFFSET"},
	{flag: "max-messages", yamlKey: "source.kafka.max_messages", envKey: "COMMONS_SOURCE_KAFKA_MAX_MESSAGES"},
	{flag: "postgres-url", yamlKey: "source.postgres.url", envKey: "COMMONS_SOURCE_POSTGRES_URL"},
	{flag: "query", yamlKey: "source.postgres.query", envKey: "COMMONS_SOURCE_POSTGRES_QUERY"},
	{flag: "skip-invalid", yamlKey: "source.skip_invalid", envKey: "COMMONS_SOURCE_SKIP_INVALID"},
	{flag: "modes", yamlKey: "modes", envKey: "COMMONS_MODES"},
	{flag: "workers", yamlKey: "sum_workers", envKey: "COMMONS_SUM_WORKERS"},
	{flag: "format", yamlKey: "output.format", envKey: "COMMONS_OUTPUT_FORMAT"},
	{flag: "separator", yamlKey: "output.separator", envKey: "COMMONS_OUTPUT_SEPARATOR"},
	{flag: "comment-start", yamlKey: "output.comment_start", envKey: "COMMONS_OUTPUT_COMMENT_START"},
}

func summarizeFlagBinding(cmd *cobra.Command, _ []string) {
	for _, k := range flagKeys {
		flag := cmd.Flags().Lookup(k.flag)
		// only flags set explicitly, a default value would configure a
		// source of its own
		if flag == nil || !flag.Changed {
			continue
		}
		// to be able to overwrite configuration with flags when yaml config
		// file is provided
		viper.BindPFlag(k.yamlKey, flag)
		// to be able to overwrite configuration with flags when env config
		// file is provided or when no configuration is provided
		viper.BindPFlag(k.envKey, flag)
	}
}
