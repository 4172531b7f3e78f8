// SPDX-License-Identifier: Apache-2.0

package otel

import (
	"errors"
	"time"
)

type Config struct {
	// ServiceName overrides the service name reported in the resource.
	ServiceName string
	Metrics     *MetricsConfig
	Traces      *TracesConfig
}

type MetricsConfig struct {
	Endpoint           string
	CollectionInterval time.Duration
}

type TracesConfig struct {
	Endpoint    string
	SampleRatio float64
}

const (
	defaultServiceName        = "commons"
	defaultCollectionInterval = 60 * time.Second
)

var ErrInvalidSampleRatio = errors.New("trace sample ratio must be between 0 and 1")

func (c *Config) IsEnabled() bool {
	return c != nil && (c.Metrics != nil || c.Traces != nil)
}

func (c *Config) Validate() error {
	if c == nil || c.Traces == nil {
		return nil
	}
	if c.Traces.SampleRatio < 0 || c.Traces.SampleRatio > 1 {
		return ErrInvalidSampleRatio
	}
	return nil
}

func (c *Config) serviceName() string {
	if c.ServiceName != "" {
		return c.ServiceName
	}
	return defaultServiceName
}

func (c *MetricsConfig) collectionInterval() time.Duration {
	if c.CollectionInterval != 0 {
		return c.CollectionInterval
	}
	return defaultCollectionInterval
}
