// Package config loads server configuration from an optional YAML file
// with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"leadsearch/internal/observability"
	"leadsearch/internal/pagination"
)

// Defaults.
const (
	DefaultAddr                   = ":8080"
	DefaultSQLiteDSN              = "file:leadsearch.db?cache=shared&_fk=1"
	DefaultRateLimitRPS           = 100.0
	DefaultRateLimitBurst         = 200
	DefaultSessionCleanupInterval = 15 * time.Minute
	DefaultShutdownTimeout        = 15 * time.Second
)

// RateLimit configures the per-client token bucket.
// A zero rate or burst disables limiting.
type RateLimit struct {
	RequestsPerSecond float64 `yaml:"rps"`
	Burst             int     `yaml:"burst"`
}

// Sentry configures error reporting. An empty DSN disables it.
type Sentry struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

// Config holds the server configuration.
type Config struct {
	Addr        string `yaml:"addr"`
	SQLiteDSN   string `yaml:"sqlite_dsn"`
	DatabaseURL string `yaml:"database_url"`

	Pagination pagination.Config           `yaml:"pagination"`
	Log        observability.Config        `yaml:"log"`
	Metrics    observability.MetricsConfig `yaml:"metrics"`
	RateLimit  RateLimit                   `yaml:"rate_limit"`
	Sentry     Sentry                      `yaml:"sentry"`

	// TrustedProxies is a comma separated CIDR list whose X-Forwarded-For
	// header is honored for rate limiting.
	TrustedProxies string `yaml:"trusted_proxies"`

	SessionCleanupInterval time.Duration `yaml:"session_cleanup_interval"`
	ShutdownTimeout        time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Addr:       DefaultAddr,
		SQLiteDSN:  DefaultSQLiteDSN,
		Pagination: pagination.DefaultConfig(),
		Log:        observability.DefaultConfig(),
		Metrics:    observability.DefaultMetricsConfig(),
		RateLimit: RateLimit{
			RequestsPerSecond: DefaultRateLimitRPS,
			Burst:             DefaultRateLimitBurst,
		},
		Sentry:                 Sentry{Environment: "production"},
		SessionCleanupInterval: DefaultSessionCleanupInterval,
		ShutdownTimeout:        DefaultShutdownTimeout,
	}
}

// Load reads the YAML file at path, if any, then applies environment
// overrides and validates the result. Environment variables win over YAML.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LEADSEARCH_ADDR"); v != "" {
		c.Addr = v
	}
	if p := os.Getenv("PORT"); p != "" { // Heroku-style
		c.Addr = ":" + p
	}
	if v := os.Getenv("SQLITE_DSN"); v != "" {
		c.SQLiteDSN = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("LEADSEARCH_TRUSTED_PROXIES"); v != "" {
		c.TrustedProxies = v
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" {
		c.Sentry.DSN = v
	}
	if v := os.Getenv("SENTRY_ENVIRONMENT"); v != "" {
		c.Sentry.Environment = v
	}

	c.Log = c.Log.ApplyEnv()
	c.Metrics = c.Metrics.ApplyEnv()

	ints := []struct {
		env string
		dst *int
	}{
		{"LEADSEARCH_PAGE_SIZE", &c.Pagination.PageSize},
		{"LEADSEARCH_LINK_DISPLAY_SIZE", &c.Pagination.LinkDisplaySize},
		{"LEADSEARCH_LINK_GAP_SIZE", &c.Pagination.LinkGapSize},
		{"RATE_LIMIT_BURST", &c.RateLimit.Burst},
	}
	for _, e := range ints {
		v := strings.TrimSpace(os.Getenv(e.env))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
		*e.dst = n
	}

	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimit.RequestsPerSecond = rps
	}
	if v := strings.TrimSpace(os.Getenv("LEADSEARCH_SESSION_CLEANUP_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LEADSEARCH_SESSION_CLEANUP_INTERVAL: %w", err)
		}
		c.SessionCleanupInterval = d
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required (set LEADSEARCH_ADDR, PORT or yaml)"))
	}
	if err := c.Pagination.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("pagination: %w", err))
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate_limit values must not be negative"))
	}
	if c.SessionCleanupInterval < time.Second {
		errs = append(errs, errors.New("session_cleanup_interval must be at least 1s"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	return errors.Join(errs...)
}

// RateLimitEnabled reports whether requests are rate limited.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst > 0
}
