package pagination

import (
	"fmt"
	"os"
	"strconv"
)

// Config bounds the page sizes list endpoints accept.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// ConfigEnv names the variables that override Config. Empty names are skipped.
type ConfigEnv struct {
	DefaultPageSize string
	MaxPageSize     string
}

// Finalize applies defaults, then env overrides, then validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.DefaultPageSize = positiveOr(c.DefaultPageSize, 20)
	c.MaxPageSize = positiveOr(c.MaxPageSize, 100)

	if env != nil {
		envInt(&c.DefaultPageSize, env.DefaultPageSize)
		envInt(&c.MaxPageSize, env.MaxPageSize)
	}

	switch {
	case c.DefaultPageSize < 1, c.MaxPageSize < 1:
		return fmt.Errorf("page sizes must be positive (default %d, max %d)", c.DefaultPageSize, c.MaxPageSize)
	case c.DefaultPageSize > c.MaxPageSize:
		return fmt.Errorf("default_page_size %d exceeds max_page_size %d", c.DefaultPageSize, c.MaxPageSize)
	}
	return nil
}

// Merge overwrites fields that are set in overlay.
func (c *Config) Merge(overlay *Config) {
	c.DefaultPageSize = positiveOr(overlay.DefaultPageSize, c.DefaultPageSize)
	c.MaxPageSize = positiveOr(overlay.MaxPageSize, c.MaxPageSize)
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func envInt(dst *int, key string) {
	if key == "" {
		return
	}
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = n
	}
}
