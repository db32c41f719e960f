package observability

import (
	"fmt"
	"time"
)

// Config configures tracing and metrics export.
type Config struct {
	TracingEnabled bool          `yaml:"tracing_enabled" mapstructure:"tracing_enabled"`
	MetricsEnabled bool          `yaml:"metrics_enabled" mapstructure:"metrics_enabled"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	Interval       time.Duration `yaml:"interval" mapstructure:"interval"`

	// Filled from the service config, not from yaml.
	ServiceName    string `yaml:"-" mapstructure:"-"`
	ServiceVersion string `yaml:"-" mapstructure:"-"`
	Environment    string `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults sets the OTLP endpoint, sampling and export interval.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval <= 0 {
		c.Interval = 15 * time.Second
	}
}

// Validate checks the sampling rate range.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability.sample_rate must be within [0, 1] (got: %v)", c.SampleRate)
	}
	return nil
}
