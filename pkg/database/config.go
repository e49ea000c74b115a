package database

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds PostgreSQL connection and pool settings.
type Config struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	ApplicationName string `toml:"application_name"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
}

// Env names the environment variables that override each Config field.
// Empty names are skipped.
type Env struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	ApplicationName string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
}

func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// Dsn returns a postgres:// URL. Credentials are escaped, so passwords may
// contain any character.
func (c *Config) Dsn() string {
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	if c.ApplicationName != "" {
		q.Set("application_name", c.ApplicationName)
	}
	if secs := int(c.ConnTimeoutDuration().Seconds()); secs > 0 {
		q.Set("connect_timeout", strconv.Itoa(secs))
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Finalize applies defaults, then environment overrides, then validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields that are set in overlay.
func (c *Config) Merge(overlay *Config) {
	for dst, v := range map[*string]string{
		&c.Host:            overlay.Host,
		&c.Name:            overlay.Name,
		&c.User:            overlay.User,
		&c.Password:        overlay.Password,
		&c.SSLMode:         overlay.SSLMode,
		&c.ApplicationName: overlay.ApplicationName,
		&c.ConnMaxLifetime: overlay.ConnMaxLifetime,
		&c.ConnTimeout:     overlay.ConnTimeout,
	} {
		if v != "" {
			*dst = v
		}
	}
	for dst, v := range map[*int]int{
		&c.Port:         overlay.Port,
		&c.MaxOpenConns: overlay.MaxOpenConns,
		&c.MaxIdleConns: overlay.MaxIdleConns,
	} {
		if v != 0 {
			*dst = v
		}
	}
}

func (c *Config) loadDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.ApplicationName == "" {
		c.ApplicationName = "outreach"
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "15m"
	}
	if c.ConnTimeout == "" {
		c.ConnTimeout = "5s"
	}
}

func (c *Config) loadEnv(env *Env) {
	strs := map[string]*string{
		env.Host:            &c.Host,
		env.Name:            &c.Name,
		env.User:            &c.User,
		env.Password:        &c.Password,
		env.SSLMode:         &c.SSLMode,
		env.ApplicationName: &c.ApplicationName,
		env.ConnMaxLifetime: &c.ConnMaxLifetime,
		env.ConnTimeout:     &c.ConnTimeout,
	}
	for key, dst := range strs {
		if key == "" {
			continue
		}
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		env.Port:         &c.Port,
		env.MaxOpenConns: &c.MaxOpenConns,
		env.MaxIdleConns: &c.MaxIdleConns,
	}
	for key, dst := range ints {
		if key == "" {
			continue
		}
		if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
			*dst = n
		}
	}
}

func (c *Config) validate() error {
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if c.User == "" {
		return fmt.Errorf("user required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns (%d) exceeds max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	}
	if _, err := time.ParseDuration(c.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid conn_max_lifetime: %w", err)
	}
	if _, err := time.ParseDuration(c.ConnTimeout); err != nil {
		return fmt.Errorf("invalid conn_timeout: %w", err)
	}
	return nil
}
