// Package config loads aoclb settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colthorp/aoclb/internal/core"
)

// Config holds everything the process needs at startup. It is treated as
// immutable once loaded.
type Config struct {
	SessionCookie  string        `yaml:"session_cookie"`
	Year           string        `yaml:"year"`
	LeaderboardIDs []string      `yaml:"leaderboard_ids"`
	CacheDuration  time.Duration `yaml:"cache_duration"`
	BaseURL        string        `yaml:"base_url"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`
	Server         ServerConfig  `yaml:"server"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		Year:          core.DefaultYear,
		CacheDuration: core.DefaultCacheDuration,
		BaseURL:       core.DefaultBaseURL,
		HTTPTimeout:   core.DefaultHTTPTimeout,
		Server: ServerConfig{
			Port: core.DefaultPort,
		},
	}
}

// Load reads filename (if it exists), then applies environment overrides and
// fills defaults. A missing file is not an error.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	cfg.fillDefaults()

	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(core.SessionCookieEnvVar); v != "" {
		c.SessionCookie = v
	}
	if v := getenv(core.YearEnvVar); v != "" {
		c.Year = v
	}
	if v := getenv(core.LeaderboardIDsEnvVar); v != "" {
		c.LeaderboardIDs = core.ParseIDList(v)
	}
	if v := getenv(core.CacheDurationEnvVar); v != "" {
		d, err := core.ParseCacheDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", core.CacheDurationEnvVar, err)
		}
		c.CacheDuration = d
	}
	if v := getenv(core.PortEnvVar); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid port '%s'", core.PortEnvVar, v)
		}
		c.Server.Port = port
	}
	if v := getenv(core.BaseURLEnvVar); v != "" {
		c.BaseURL = v
	}
	if v := getenv(core.CORSOriginsEnvVar); v != "" {
		c.Server.CORSOrigins = core.ParseIDList(v)
	}
	return nil
}

func (c *Config) fillDefaults() {
	if c.Year == "" {
		c.Year = core.DefaultYear
	}
	if c.BaseURL == "" {
		c.BaseURL = core.DefaultBaseURL
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = core.DefaultHTTPTimeout
	}
	if c.Server.Port == 0 {
		c.Server.Port = core.DefaultPort
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{
			fmt.Sprintf("http://localhost:%d", c.Server.Port),
			fmt.Sprintf("http://127.0.0.1:%d", c.Server.Port),
		}
	}
}

// Validate reports configuration that cannot serve requests.
func (c *Config) Validate() error {
	var errs []error
	if c.SessionCookie == "" {
		errs = append(errs, fmt.Errorf("session cookie was not provided (set %s)", core.SessionCookieEnvVar))
	}
	if len(c.LeaderboardIDs) == 0 {
		errs = append(errs, fmt.Errorf("no leaderboard ids configured (set %s)", core.LeaderboardIDsEnvVar))
	}
	if c.CacheDuration <= 0 {
		errs = append(errs, errors.New("cache duration must be positive"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Server.Port))
	}
	return errors.Join(errs...)
}
