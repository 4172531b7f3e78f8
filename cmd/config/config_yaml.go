// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/xataio/commons/pkg/otel"
	"github.com/xataio/commons/pkg/source"
	"github.com/xataio/commons/pkg/summarizer"
)

type YAMLConfig struct {
	// Source is decoded by the source package, which knows the options of
	// every source type.
	Source          map[string]any        `mapstructure:"source" yaml:"source"`
	Modes           []string              `mapstructure:"modes" yaml:"modes"`
	SumWorkers      uint                  `mapstructure:"sum_workers" yaml:"sum_workers"`
	Output          OutputConfig          `mapstructure:"output" yaml:"output"`
	LogLevel        string                `mapstructure:"log_level" yaml:"log_level"`
	Instrumentation InstrumentationConfig `mapstructure:"instrumentation" yaml:"instrumentation"`
}

type OutputConfig struct {
	Format       string `mapstructure:"format" yaml:"format"`
	Separator    string `mapstructure:"separator" yaml:"separator"`
	CommentStart string `mapstructure:"comment_start" yaml:"comment_start"`
}

type InstrumentationConfig struct {
	Metrics *MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Traces  *TracesConfig  `mapstructure:"traces" yaml:"traces"`
}

type MetricsConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	// CollectionInterval in seconds
	CollectionInterval int `mapstructure:"collection_interval" yaml:"collection_interval"`
}

type TracesConfig struct {
	Endpoint    string  `mapstructure:"endpoint" yaml:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio" yaml:"sample_ratio"`
}

var (
	errInvalidSampleRatio = errors.New("sample_ratio must be between 0 and 1")
	errNoSourceConfig     = errors.New("missing source configuration")
)

func (c *YAMLConfig) toSummarizerConfig() (*summarizer.Config, error) {
	if len(c.Source) == 0 {
		return nil, errNoSourceConfig
	}
	sourceCfg, err := source.DecodeConfig(c.Source)
	if err != nil {
		return nil, err
	}

	modes, err := summarizer.ParseModes(splitList(c.Modes))
	if err != nil {
		return nil, err
	}

	return &summarizer.Config{
		Source:     *sourceCfg,
		Modes:      modes,
		SumWorkers: c.SumWorkers,
		Output: summarizer.OutputConfig{
			Format:       c.Output.Format,
			Separator:    c.Output.Separator,
			CommentStart: c.Output.CommentStart,
		},
	}, nil
}

func (c InstrumentationConfig) toOtelConfig() (*otel.Config, error) {
	cfg := &otel.Config{}
	if c.Metrics != nil {
		cfg.Metrics = &otel.MetricsConfig{
			Endpoint:           c.Metrics.Endpoint,
			CollectionInterval: time.Duration(c.Metrics.CollectionInterval) * time.Second,
		}
	}
	if c.Traces != nil {
		if c.Traces.SampleRatio < 0 || c.Traces.SampleRatio > 1 {
			return nil, fmt.Errorf("%w: %v", errInvalidSampleRatio, c.Traces.SampleRatio)
		}
		cfg.Traces = &otel.TracesConfig{
			Endpoint:    c.Traces.Endpoint,
			SampleRatio: c.Traces.SampleRatio,
		}
	}
	return cfg, nil
}
