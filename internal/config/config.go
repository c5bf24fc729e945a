// Package config loads ~/.todoc/config.toml and resolves the backend URL.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/idilsaglam/todoc/internal/auth"
)

// EnvBackend names the env var consulted when no -backend flag is given.
const EnvBackend = "TODOC_BACKEND"

const fileName = "config.toml"

// Defaults.
const (
	DefaultTheme    = "classic"
	DefaultLogLevel = "warn"
)

// Config holds the persisted client settings.
type Config struct {
	Backend  string `toml:"backend"`
	Theme    string `toml:"theme"`
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := auth.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the default config file. A missing file yields defaults, not
// an error.
func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(p)
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{
		Theme:    DefaultTheme,
		LogLevel: DefaultLogLevel,
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Theme == "" {
		cfg.Theme = DefaultTheme
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return cfg, nil
}

// Save writes the config to the default location, creating ~/.todoc if
// needed.
func (c *Config) Save() error {
	p, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(p)
}

// SaveTo writes the config to an explicit path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ResolveBackend applies the precedence flag > env > config file. An empty
// result means the configuration gate should take over; it is not an
// error here.
func ResolveBackend(flagValue string, cfg *Config) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackend)); v != "" {
		return v
	}
	if cfg != nil {
		return strings.TrimSpace(cfg.Backend)
	}
	return ""
}
