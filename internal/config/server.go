package config

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvServerHost            = "OUTREACH_SERVER_HOST"
	EnvServerPort            = "OUTREACH_SERVER_PORT"
	EnvServerReadTimeout     = "OUTREACH_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "OUTREACH_SERVER_WRITE_TIMEOUT"
	EnvServerShutdownTimeout = "OUTREACH_SERVER_SHUTDOWN_TIMEOUT"
	EnvServerLogLevel        = "OUTREACH_LOG_LEVEL"
	EnvServerLogFormat       = "OUTREACH_LOG_FORMAT"
)

// ServerConfig holds the HTTP listener settings and the process log output.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	LogLevel        string `toml:"log_level"`
	LogFormat       string `toml:"log_format"`
}

func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	return d
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// NewLogger builds the root logger. LogFormat "json" selects the JSON handler;
// anything else writes text.
func (c *ServerConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	level.UnmarshalText([]byte(c.LogLevel))

	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Finalize applies defaults, then OUTREACH_* overrides, then validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites fields that are set in overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	mergeString(&c.Host, overlay.Host)
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	mergeString(&c.ReadTimeout, overlay.ReadTimeout)
	mergeString(&c.WriteTimeout, overlay.WriteTimeout)
	mergeString(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	mergeString(&c.LogLevel, overlay.LogLevel)
	mergeString(&c.LogFormat, overlay.LogFormat)
}

func (c *ServerConfig) loadDefaults() {
	defaultString(&c.Host, "0.0.0.0")
	if c.Port == 0 {
		c.Port = 8080
	}
	defaultString(&c.ReadTimeout, "1m")
	defaultString(&c.WriteTimeout, "2m")
	defaultString(&c.ShutdownTimeout, "30s")
	defaultString(&c.LogLevel, "info")
	defaultString(&c.LogFormat, "text")
}

func (c *ServerConfig) loadEnv() {
	envString(&c.Host, EnvServerHost)
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	envString(&c.ReadTimeout, EnvServerReadTimeout)
	envString(&c.WriteTimeout, EnvServerWriteTimeout)
	envString(&c.ShutdownTimeout, EnvServerShutdownTimeout)
	envString(&c.LogLevel, EnvServerLogLevel)
	envString(&c.LogFormat, EnvServerLogFormat)
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for name, v := range map[string]string{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: want text or json", c.LogFormat)
	}
	return nil
}
