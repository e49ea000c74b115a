package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvPipelineEnabled       = "OUTREACH_PIPELINE_ENABLED"
	EnvPipelineConcurrency   = "OUTREACH_PIPELINE_CONCURRENCY"
	EnvPipelinePollInterval  = "OUTREACH_PIPELINE_POLL_INTERVAL"
	EnvPipelineStaleAfter    = "OUTREACH_PIPELINE_STALE_AFTER"
	EnvPipelineSweepInterval = "OUTREACH_PIPELINE_SWEEP_INTERVAL"
	EnvPipelineWriteTimeout  = "OUTREACH_PIPELINE_WRITE_TIMEOUT"
	EnvPipelineMessageLimit  = "OUTREACH_PIPELINE_MESSAGE_LIMIT"
)

// PipelineConfig controls the batch worker pool and the stale-batch sweep.
// Enabled is a pointer so an overlay can explicitly disable the worker.
type PipelineConfig struct {
	Enabled       *bool  `toml:"enabled"`
	Concurrency   int    `toml:"concurrency"`
	PollInterval  string `toml:"poll_interval"`
	StaleAfter    string `toml:"stale_after"`
	SweepInterval string `toml:"sweep_interval"`
	WriteTimeout  string `toml:"write_timeout"`
	MessageLimit  int    `toml:"message_limit"`
}

// IsEnabled reports whether the worker pool should run.
func (c *PipelineConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *PipelineConfig) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// StaleAfterDuration returns StaleAfter as a time.Duration.
func (c *PipelineConfig) StaleAfterDuration() time.Duration {
	d, _ := time.ParseDuration(c.StaleAfter)
	return d
}

// SweepIntervalDuration returns SweepInterval as a time.Duration.
func (c *PipelineConfig) SweepIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.SweepInterval)
	return d
}

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (c *PipelineConfig) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.Enabled != nil {
		c.Enabled = overlay.Enabled
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.StaleAfter != "" {
		c.StaleAfter = overlay.StaleAfter
	}
	if overlay.SweepInterval != "" {
		c.SweepInterval = overlay.SweepInterval
	}
	if overlay.WriteTimeout != "" {
		c.WriteTimeout = overlay.WriteTimeout
	}
	if overlay.MessageLimit != 0 {
		c.MessageLimit = overlay.MessageLimit
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 2
	}
	if c.PollInterval == "" {
		c.PollInterval = "5s"
	}
	if c.StaleAfter == "" {
		c.StaleAfter = "15m"
	}
	if c.SweepInterval == "" {
		c.SweepInterval = "1m"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "10s"
	}
	if c.MessageLimit <= 0 {
		c.MessageLimit = 50
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = &enabled
		}
	}
	if v := os.Getenv(EnvPipelineConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
	if v := os.Getenv(EnvPipelinePollInterval); v != "" {
		c.PollInterval = v
	}
	if v := os.Getenv(EnvPipelineStaleAfter); v != "" {
		c.StaleAfter = v
	}
	if v := os.Getenv(EnvPipelineSweepInterval); v != "" {
		c.SweepInterval = v
	}
	if v := os.Getenv(EnvPipelineWriteTimeout); v != "" {
		c.WriteTimeout = v
	}
	if v := os.Getenv(EnvPipelineMessageLimit); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MessageLimit = n
		}
	}
}

func (c *PipelineConfig) validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive")
	}
	durations := map[string]string{
		"poll_interval":  c.PollInterval,
		"stale_after":    c.StaleAfter,
		"sweep_interval": c.SweepInterval,
		"write_timeout":  c.WriteTimeout,
	}
	for name, raw := range durations {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.MessageLimit < 1 {
		return fmt.Errorf("message_limit must be positive")
	}
	return nil
}
