package middleware

import (
	"os"
	"strconv"
	"strings"
)

// CORSConfig controls which browser origins may call the API. Nil booleans
// mean unset, so an overlay file can leave them alone.
type CORSConfig struct {
	Enabled          *bool    `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials *bool    `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv names the variables that override CORSConfig. Empty names are skipped.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials string
	MaxAge           string
}

var (
	defaultMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}
	defaultHeaders = []string{"Content-Type", "Authorization"}
)

const defaultMaxAge = 3600

// IsEnabled reports whether CORS headers should be written. Listing no
// origins also disables it.
func (c *CORSConfig) IsEnabled() bool {
	return c.Enabled != nil && *c.Enabled && len(c.Origins) > 0
}

func (c *CORSConfig) Credentials() bool {
	return c.AllowCredentials != nil && *c.AllowCredentials
}

// Finalize reads env over the file values, then fills what is still unset.
// Malformed booleans and numbers in the environment are ignored.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	if env != nil {
		envBool(&c.Enabled, env.Enabled)
		envBool(&c.AllowCredentials, env.AllowCredentials)
		envList(&c.Origins, env.Origins)
		envList(&c.AllowedMethods, env.AllowedMethods)
		envList(&c.AllowedHeaders, env.AllowedHeaders)
		if n, err := strconv.Atoi(getenv(env.MaxAge)); err == nil {
			c.MaxAge = n
		}
	}

	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = defaultMethods
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = defaultHeaders
	}
	if c.MaxAge <= 0 {
		c.MaxAge = defaultMaxAge
	}
	return nil
}

// Merge copies every field the overlay sets.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	if overlay.Enabled != nil {
		c.Enabled = overlay.Enabled
	}
	if overlay.AllowCredentials != nil {
		c.AllowCredentials = overlay.AllowCredentials
	}
	for _, f := range []struct{ dst, src *[]string }{
		{&c.Origins, &overlay.Origins},
		{&c.AllowedMethods, &overlay.AllowedMethods},
		{&c.AllowedHeaders, &overlay.AllowedHeaders},
	} {
		if *f.src != nil {
			*f.dst = *f.src
		}
	}
	if overlay.MaxAge > 0 {
		c.MaxAge = overlay.MaxAge
	}
}

func getenv(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}

func envBool(dst **bool, key string) {
	if b, err := strconv.ParseBool(getenv(key)); err == nil {
		*dst = &b
	}
}

// envList splits a comma separated variable, dropping blank entries.
func envList(dst *[]string, key string) {
	v := getenv(key)
	if v == "" {
		return
	}
	out := []string{}
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}
