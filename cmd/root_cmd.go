// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xataio/commons/cmd/config"
	"github.com/xataio/commons/internal/log/zerolog"
	"github.com/xataio/commons/internal/profiling"
	loglib "github.com/xataio/commons/pkg/log"
	"github.com/xataio/commons/pkg/otel"
)

// Version is the commons version
var (
	Version = "development"
	Env     string
)

func Prepare() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "commons",
		Short:        "Summary statistics of numbers read from files, kafka topics or postgres queries",
		SilenceUsage: true,
		Version:      version(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			return nil
		},
	}

	viper.AutomaticEnv()

	// Flag definition

	// root cmd
	rootCmd.PersistentFlags().StringP("config", "c", "", ".env or .yaml config file to use with commons if any")
	rootCmd.PersistentFlags().String("log-level", "", "log level for the application. One of trace, debug, info, warn, error, fatal, panic. Defaults to info")

	summarizeCmd := newSummarizeCmd()
	streamCmd := newStreamCmd()
	sumCmd := newSumCmd()

	for _, cmd := range []*cobra.Command{summarizeCmd, streamCmd, sumCmd} {
		sourceFlags(cmd)
		outputFlags(cmd)
		cmd.Flags().Bool("profile", false, "Whether to produce CPU and memory profile files, as well as exposing a /debug/pprof endpoint on localhost:6060")
	}
	summarizeCmd.Flags().StringSlice("modes", nil, "Summaries to compute. Any of sample, stream, sum. Defaults to sample")
	summarizeCmd.Flags().Uint("workers", 0, "Number of partial sums computed in parallel")
	sumCmd.Flags().Uint("workers", 0, "Number of partial sums computed in parallel")

	// inspect cmd
	inspectCmd.Flags().String("kind", "sample", "Kind of statistics in the file. One of sample, stream")
	inspectCmd.Flags().String("scope", "", "Column scope of the statistics to read, such as sample or stream")
	inspectCmd.Flags().String("separator", "", "Field separator of the csv file")
	inspectCmd.Flags().String("comment-start", "", "Comment start of the csv file")
	inspectCmd.Flags().Bool("json", true, "Output the statistics in JSON format, one record per line otherwise")

	// Flag binding for root cmd
	rootFlagBinding(rootCmd)

	// register subcommands
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(sumCmd)
	rootCmd.AddCommand(inspectCmd)
	return rootCmd
}

// Execute executes the root command.
func Execute() error {
	cmd := Prepare()
	return cmd.Execute()
}

func withSignalWatcher(fn func(ctx context.Context) error) func(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	go func() {
		<-sigc
		cancel()
	}()

	return func(cmd *cobra.Command, args []string) error {
		defer cancel()
		return fn(ctx)
	}
}

func withProfiling(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if flag := cmd.Flags().Lookup("profile"); flag == nil || flag.Value.String() == "false" {
			return fn(cmd, args)
		}

		stop, err := profiling.Start(profiling.Config{
			ServerAddress: "localhost:6060",
			CPUFile:       "cpu.prof",
			MemoryFile:    "mem.prof",
		})
		if err != nil {
			return err
		}
		defer stop() //nolint:errcheck

		return fn(cmd, args)
	}
}

func rootFlagBinding(cmd *cobra.Command) {
	viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("COMMONS_LOG_LEVEL", cmd.PersistentFlags().Lookup("log-level"))
}

func version() string {
	if Env != "" {
		return Env + " (" + Version + ")"
	}
	return Version
}

func newLogger() (loglib.Logger, error) {
	logger, err := zerolog.NewLogger(&zerolog.Config{
		LogLevel: config.LogLevel(),
	})
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLogger(logger)
	return zerolog.NewStdLogger(logger), nil
}

func newInstrumentationProvider() (otel.InstrumentationProvider, error) {
	cfg, err := config.ParseInstrumentationConfig()
	if err != nil {
		return nil, fmt.Errorf("parsing instrumentation config: %w", err)
	}

	p, err := otel.NewInstrumentationProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialisating instrumentation provider: %w", err)
	}
	return p, nil
}
