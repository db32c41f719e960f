package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/scribe/config"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/server"
	"github.com/kbukum/scribe/storage"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/version"
)

// PipelineConfig controls uploads and vendor transport.
type PipelineConfig struct {
	UploadDir       string        `yaml:"upload_dir" mapstructure:"upload_dir"`
	ProxyURL        string        `yaml:"proxy_url" mapstructure:"proxy_url"`
	UploadTimeout   time.Duration `yaml:"upload_timeout" mapstructure:"upload_timeout"`
	ControlTimeout  time.Duration `yaml:"control_timeout" mapstructure:"control_timeout"`
	SummaryTimeout  time.Duration `yaml:"summary_timeout" mapstructure:"summary_timeout"`
	PollInterval    time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	MaxPollAttempts int           `yaml:"max_poll_attempts" mapstructure:"max_poll_attempts"`
	KeepAlive       time.Duration `yaml:"keep_alive" mapstructure:"keep_alive"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

func (c *PipelineConfig) ApplyDefaults() {
	if c.UploadDir == "" {
		c.UploadDir = "./uploads"
	}
	if c.UploadTimeout <= 0 {
		c.UploadTimeout = transcription.DefaultUploadTimeout
	}
	if c.ControlTimeout <= 0 {
		c.ControlTimeout = transcription.DefaultControlTimeout
	}
	if c.SummaryTimeout <= 0 {
		c.SummaryTimeout = 120 * time.Second
	}
	if c.MaxPollAttempts <= 0 {
		c.MaxPollAttempts = transcription.DefaultMaxPollAttempts
	}
	if c.KeepAlive <= 0 {
		c.KeepAlive = 15 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
}

func (c *PipelineConfig) Validate() error {
	if c.PollInterval < 0 {
		return errors.New("pipeline.poll_interval must be non-negative")
	}
	return nil
}

// AppConfig is the scribe configuration file.
type AppConfig struct {
	config.ServiceConfig `mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Pipeline      PipelineConfig       `yaml:"pipeline" mapstructure:"pipeline"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Get().Version
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Observability.ServiceName = c.Name
	c.Observability.ServiceVersion = c.Version
	c.Observability.Environment = c.Environment
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"service", c.ServiceConfig.Validate},
		{"server", c.Server.Validate},
		{"storage", c.Storage.Validate},
		{"pipeline", c.Pipeline.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("%s: %w", ch.name, err)
		}
	}
	return nil
}

// adapterOptions is the transport every transcription adapter receives.
func (c *AppConfig) adapterOptions() transcription.Options {
	return transcription.Options{
		ProxyURL:        c.Pipeline.ProxyURL,
		UploadTimeout:   c.Pipeline.UploadTimeout,
		ControlTimeout:  c.Pipeline.ControlTimeout,
		PollInterval:    c.Pipeline.PollInterval,
		MaxPollAttempts: c.Pipeline.MaxPollAttempts,
	}
}
