// Package config loads the service configuration from TOML files and
// OUTREACH_* environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/outreach/pkg/database"
	"github.com/JaimeStill/outreach/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvOutreachEnv             = "OUTREACH_ENV"
	EnvOutreachShutdownTimeout = "OUTREACH_SHUTDOWN_TIMEOUT"
	EnvOutreachVersion         = "OUTREACH_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "OUTREACH_DB_HOST",
	Port:            "OUTREACH_DB_PORT",
	Name:            "OUTREACH_DB_NAME",
	User:            "OUTREACH_DB_USER",
	Password:        "OUTREACH_DB_PASSWORD",
	SSLMode:         "OUTREACH_DB_SSL_MODE",
	ApplicationName: "OUTREACH_DB_APPLICATION_NAME",
	MaxOpenConns:    "OUTREACH_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "OUTREACH_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "OUTREACH_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "OUTREACH_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "OUTREACH_STORAGE_CONTAINER_NAME",
	ConnectionString: "OUTREACH_STORAGE_CONNECTION_STRING",
	MaxListSize:      "OUTREACH_STORAGE_MAX_LIST_SIZE",
}

// Config is the root configuration for the Outreach service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	Storage         storage.Config       `toml:"storage"`
	API             APIConfig            `toml:"api"`
	Agent           gaconfig.AgentConfig `toml:"-"`
	Messages        MessagesConfig       `toml:"messages"`
	Pipeline        PipelineConfig       `toml:"pipeline"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the OUTREACH_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvOutreachEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	mergeString(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	mergeString(&c.Version, overlay.Version)
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
	c.Messages.Merge(&overlay.Messages)
	c.Pipeline.Merge(&overlay.Pipeline)
}

// finalize settles the root fields first, then each section in turn. The
// first failing section is named in the error.
func (c *Config) finalize() error {
	defaultString(&c.ShutdownTimeout, "30s")
	defaultString(&c.Version, "0.1.0")
	envString(&c.ShutdownTimeout, EnvOutreachShutdownTimeout)
	envString(&c.Version, EnvOutreachVersion)

	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"agent", func() error { return FinalizeAgent(&c.Agent) }},
		{"messages", c.Messages.Finalize},
		{"pipeline", c.Pipeline.Finalize},
	}
	for _, sec := range sections {
		if err := sec.finalize(); err != nil {
			return fmt.Errorf("%s: %w", sec.name, err)
		}
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := decodeAgent(data, &cfg.Agent); err != nil {
		return nil, fmt.Errorf("parse agent: %w", err)
	}

	return &cfg, nil
}

// decodeAgent reads the [agent] table into the go-agents config. Those types
// only carry json tags, so the table is re-encoded as JSON to honor keys such
// as base_url.
func decodeAgent(data []byte, dst *gaconfig.AgentConfig) error {
	var raw struct {
		Agent map[string]any `toml:"agent"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Agent == nil {
		return nil
	}

	b, err := json.Marshal(raw.Agent)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func overlayPath() string {
	if env := os.Getenv(EnvOutreachEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
