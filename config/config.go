// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const minSecretLen = 32

// Config holds every knob the auth core and its server need.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	Port        int    `env:"PORT" envDefault:"8080"`
	BasePath    string `env:"BASE_PATH" envDefault:"/api"`

	DatabaseURL string `env:"DATABASE_URL"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h"`

	FrontendOrigin string `env:"FRONTEND_ORIGIN" envDefault:"http://localhost:5173"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL"`

	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	GitHubCallbackURL  string `env:"GITHUB_CALLBACK_URL"`
}

// Load parses configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface as runtime faults.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if len(c.SessionSecret) < minSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", minSecretLen)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// IsProduction reports whether the process runs in a production-classified
// environment. Cookie security attributes key off this.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CookieDomain derives the session cookie domain from the frontend origin.
// The rule: parse the origin as a URL (assuming https when schemeless), take
// the hostname, drop a leading "www.", and prefix "." so the cookie covers
// sibling subdomains. Outside production the domain is left unset so the
// cookie stays host-only on localhost.
func (c *Config) CookieDomain() string {
	if !c.IsProduction() {
		return ""
	}
	origin := c.FrontendOrigin
	if !strings.Contains(origin, "://") {
		origin = "https://" + origin
	}
	u, err := url.Parse(origin)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	return "." + host
}
