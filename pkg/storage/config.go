package storage

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Blob container names: 3-63 lowercase letters, digits and single hyphens,
// starting and ending with a letter or digit.
var containerName = regexp.MustCompile(`^[a-z0-9]([a-z0-9]|-[a-z0-9]){2,62}$`)

// Config locates the blob container that holds message store snapshots.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	MaxListSize      int32  `toml:"max_list_size"`
}

// Env names the variables that override Config. Empty names are skipped.
type Env struct {
	ContainerName    string
	ConnectionString string
	MaxListSize      string
}

// Finalize applies defaults, then env overrides, then validation.
// MaxListSize is clamped to MaxListCap rather than rejected.
func (c *Config) Finalize(env *Env) error {
	if c.ContainerName == "" {
		c.ContainerName = "outreach"
	}
	if c.MaxListSize <= 0 {
		c.MaxListSize = 50
	}

	if env != nil {
		c.loadEnv(env)
	}
	c.MaxListSize = min(c.MaxListSize, MaxListCap)

	return c.validate()
}

// Merge overwrites fields that are set in overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.MaxListSize > 0 {
		c.MaxListSize = overlay.MaxListSize
	}
}

func (c *Config) loadEnv(env *Env) {
	getenv := func(key string) string {
		if key == "" {
			return ""
		}
		return os.Getenv(key)
	}

	if v := getenv(env.ContainerName); v != "" {
		c.ContainerName = v
	}
	if v := getenv(env.ConnectionString); v != "" {
		c.ConnectionString = v
	}
	if n, err := strconv.ParseInt(getenv(env.MaxListSize), 10, 32); err == nil && n > 0 {
		c.MaxListSize = int32(n)
	}
}

func (c *Config) validate() error {
	if c.ConnectionString == "" {
		return fmt.Errorf("connection_string required")
	}
	if !strings.Contains(c.ConnectionString, "=") {
		return fmt.Errorf("connection_string must be a key=value list")
	}
	if !containerName.MatchString(c.ContainerName) {
		return fmt.Errorf("invalid container_name %q", c.ContainerName)
	}
	return nil
}
