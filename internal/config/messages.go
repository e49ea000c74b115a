package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvMessagesPath         = "OUTREACH_MESSAGES_PATH"
	EnvMessagesSnapshotKey  = "OUTREACH_MESSAGES_SNAPSHOT_KEY"
	EnvMessagesDefaultLimit = "OUTREACH_MESSAGES_DEFAULT_LIMIT"
	EnvMessagesMaxLimit     = "OUTREACH_MESSAGES_MAX_LIMIT"
)

// MessagesConfig locates the read-only SQLite message store and bounds lookups.
// When SnapshotKey is set the store is synced from blob storage at startup.
type MessagesConfig struct {
	Path         string `toml:"path"`
	SnapshotKey  string `toml:"snapshot_key"`
	DefaultLimit int    `toml:"default_limit"`
	MaxLimit     int    `toml:"max_limit"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *MessagesConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *MessagesConfig) Merge(overlay *MessagesConfig) {
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
	if overlay.SnapshotKey != "" {
		c.SnapshotKey = overlay.SnapshotKey
	}
	if overlay.DefaultLimit != 0 {
		c.DefaultLimit = overlay.DefaultLimit
	}
	if overlay.MaxLimit != 0 {
		c.MaxLimit = overlay.MaxLimit
	}
}

func (c *MessagesConfig) loadDefaults() {
	if c.Path == "" {
		c.Path = "iMessage-Data.sqlite"
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 50
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = 500
	}
}

func (c *MessagesConfig) loadEnv() {
	if v := os.Getenv(EnvMessagesPath); v != "" {
		c.Path = v
	}
	if v := os.Getenv(EnvMessagesSnapshotKey); v != "" {
		c.SnapshotKey = v
	}
	if v := os.Getenv(EnvMessagesDefaultLimit); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DefaultLimit = n
		}
	}
	if v := os.Getenv(EnvMessagesMaxLimit); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxLimit = n
		}
	}
}

func (c *MessagesConfig) validate() error {
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default_limit must be positive")
	}
	if c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("default_limit cannot exceed max_limit")
	}
	return nil
}
