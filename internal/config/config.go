// Package config contains everything related to configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MemoryDatabase keeps the session store in memory only.
const MemoryDatabase = ":memory:"

const appDirName = "leap-dashboard"

// Config holds the application configuration.
type Config struct {
	DatabasePath         string        `env:"DATABASE_PATH" envDefault:":memory:"`
	SettingsPath         string        `env:"SETTINGS_PATH"`
	LogFile              string        `env:"LOG_FILE"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	RosterSize           int           `env:"ROSTER_SIZE" envDefault:"45"`
	CurrentWeek          int           `env:"CURRENT_WEEK" envDefault:"8"`
	RosterSeed           int64         `env:"ROSTER_SEED" envDefault:"0"`
	CohortID             string        `env:"COHORT_ID" envDefault:"c-101"`
	AdminID              string        `env:"ADMIN_ID" envDefault:"u-1"`
	ReminderPollInterval time.Duration `env:"REMINDER_POLL_INTERVAL" envDefault:"30s"`
	DesktopNotifications bool          `env:"DESKTOP_NOTIFICATIONS" envDefault:"true"`
}

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	if !cfg.InMemoryDatabase() {
		if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
			return nil, err
		}
	}
	if err := ensureDir(filepath.Dir(cfg.SettingsPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse builds a Config from the process environment alone.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.SettingsPath == "" {
		cfg.SettingsPath = defaultPath("settings.json")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = defaultPath("leap.log")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks values that would make the dashboard unusable.
func (c *Config) Validate() error {
	var errs []error
	if c.RosterSize <= 0 {
		errs = append(errs, fmt.Errorf("ROSTER_SIZE must be positive, got %d", c.RosterSize))
	}
	if c.CurrentWeek < 1 || c.CurrentWeek > 12 {
		errs = append(errs, fmt.Errorf("CURRENT_WEEK must be within 1..12, got %d", c.CurrentWeek))
	}
	if c.ReminderPollInterval <= 0 {
		errs = append(errs, fmt.Errorf("REMINDER_POLL_INTERVAL must be positive, got %s", c.ReminderPollInterval))
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		errs = append(errs, errors.New("DATABASE_PATH must not be empty"))
	}
	return errors.Join(errs...)
}

// InMemoryDatabase reports whether the session store lives only in memory.
func (c *Config) InMemoryDatabase() bool {
	return c.DatabasePath == MemoryDatabase || strings.HasPrefix(c.DatabasePath, "file::memory:")
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", appDirName, ".env"),
			filepath.Join(home, ".leap", ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
	}

	return paths
}

// defaultPath returns name inside the application config directory.
func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".config", appDirName, name)
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
