// SPDX-License-Identifier: Apache-2.0

package zerolog

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	loglib "github.com/xataio/commons/pkg/log"
	zerologlib "github.com/xataio/commons/pkg/log/zerolog"
)

type Config struct {
	LogLevel string
	// Format is either "console" (default) or "json".
	Format string
	// Out defaults to stderr, leaving stdout to the command output.
	Out io.Writer
}

const (
	ConsoleFormat = "console"
	JSONFormat    = "json"
)

// init sets some zerolog global defaults we want to keep throughout the project.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "timestamp"
	zerolog.ErrorFieldName = "error.message"
	zerolog.ErrorStackFieldName = "error.stack"
	// the v-level is redundant with the level emitted by zerolog
	zerologr.VerbosityFieldName = ""

	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return path.Base(file) + ":" + strconv.Itoa(line)
	}
}

// SetGlobalLogger sets the log output in the stdlib log package and the
// zerolog global loggers.
func SetGlobalLogger(logger *zerolog.Logger) {
	// dependencies logging through log.Default() end up in our logger
	stdlog.SetFlags(0)
	stdlog.SetOutput(logger)

	log.Logger = *logger

	// used when a context.Context carries no logger
	zerolog.DefaultContextLogger = logger
}

func NewStdLogger(l *zerolog.Logger) loglib.Logger {
	return zerologlib.NewLogger(l)
}

// NewLogger creates a logger emitting a timestamp and the caller's filename.
// Trace logs are limited to 100 per minute. Once 1000 debug logs were written
// in a minute, only every 5th one is kept.
func NewLogger(config *Config) (*zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		var err error
		level, err = zerolog.ParseLevel(config.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
	}

	out := config.Out
	if out == nil {
		out = os.Stderr
	}

	switch config.Format {
	case "", ConsoleFormat:
		out = zerolog.NewConsoleWriter(
			withTimeFormat(time.RFC3339Nano),
			withOut(out),
		)
	case JSONFormat:
	default:
		return nil, fmt.Errorf("unsupported log format [%s], must be one of [%s, %s]", config.Format, ConsoleFormat, JSONFormat)
	}

	logger := zerolog.New(out).
		Sample(zerolog.LevelSampler{
			TraceSampler: &zerolog.BurstSampler{
				Burst:  100,
				Period: 1 * time.Minute,
			},
			DebugSampler: &zerolog.BurstSampler{
				Burst:       1000,
				Period:      1 * time.Minute,
				NextSampler: &zerolog.BasicSampler{N: 5},
			},
		}).
		With().
		Timestamp().
		Caller().
		Stack().
		Logger().
		Level(level)

	return &logger, nil
}

func withTimeFormat(format string) func(*zerolog.ConsoleWriter) {
	return func(w *zerolog.ConsoleWriter) {
		w.TimeFormat = format
	}
}

func withOut(out io.Writer) func(*zerolog.ConsoleWriter) {
	return func(w *zerolog.ConsoleWriter) {
		w.Out = out
	}
}
