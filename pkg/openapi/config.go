package openapi

import "os"

const (
	defaultTitle       = "Outreach API"
	defaultDescription = "Message analysis pipeline and admin surface for the Outreach CRM."
)

// Config holds the document metadata published at /openapi.json.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// ConfigEnv names the variables that override Config. Empty names are skipped.
type ConfigEnv struct {
	Title       string
	Description string
}

// Finalize fills defaults and applies env overrides. Any title or description
// is acceptable, so it only returns an error to match the other sections.
func (c *Config) Finalize(env *ConfigEnv) error {
	var names ConfigEnv
	if env != nil {
		names = *env
	}

	for _, f := range []struct {
		dst      *string
		def, key string
	}{
		{&c.Title, defaultTitle, names.Title},
		{&c.Description, defaultDescription, names.Description},
	} {
		if *f.dst == "" {
			*f.dst = f.def
		}
		if f.key == "" {
			continue
		}
		if v := os.Getenv(f.key); v != "" {
			*f.dst = v
		}
	}
	return nil
}

// Merge overwrites fields that are set in overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
}
