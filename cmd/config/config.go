// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/xataio/commons/pkg/otel"
	"github.com/xataio/commons/pkg/summarizer"
)

func Load() error {
	return LoadFile(viper.GetString("config"))
}

func LoadFile(file string) error {
	if file == "" {
		return nil
	}
	viper.SetConfigFile(file)
	viper.SetConfigType(filepath.Ext(file)[1:])
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func isYAML() bool {
	switch filepath.Ext(viper.GetViper().ConfigFileUsed()) {
	case ".yml", ".yaml":
		return true
	default:
		return false
	}
}

// ParseSummarizerConfig builds the summarizer configuration from the yaml
// configuration file if one was loaded, or from the environment otherwise.
func ParseSummarizerConfig() (*summarizer.Config, error) {
	if isYAML() {
		yamlCfg := YAMLConfig{}
		if err := viper.Unmarshal(&yamlCfg); err != nil {
			return nil, err
		}
		return yamlCfg.toSummarizerConfig()
	}
	return envConfigToSummarizerConfig()
}

func ParseInstrumentationConfig() (*otel.Config, error) {
	if isYAML() {
		yamlCfg := YAMLConfig{}
		if err := viper.Unmarshal(&yamlCfg); err != nil {
			return nil, err
		}
		return yamlCfg.Instrumentation.toOtelConfig()
	}
	return envToOtelConfig()
}

// LogLevel is the level set by flag, yaml or env configuration, in that
// order.
func LogLevel() string {
	switch {
	case viper.GetString("log_level") != "":
		return viper.GetString("log_level")
	default:
		return viper.GetString("COMMONS_LOG_LEVEL")
	}
}

// splitList accepts lists given as slices as well as comma or space
// separated strings.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' '
		})...)
	}
	return out
}
