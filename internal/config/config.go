// Package config loads the canvasdoc YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"canvasdoc/internal/domain"
)

type Page struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type Store struct {
	// Driver is sqlite, postgres, mysql, redis, mongodb or file.
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	// PasswordKeychainKey names a keychain entry holding the password.
	PasswordKeychainKey string `yaml:"password_keychain_key"`
	DB                  int    `yaml:"db"`
	Database            string `yaml:"database"`
}

type Log struct {
	Verbose bool `yaml:"verbose"`
}

type Config struct {
	DataDir    string `yaml:"data_dir"`
	ProjectKey string `yaml:"project_key"`
	Page       Page   `yaml:"page"`
	Store      Store  `yaml:"store"`
	// Autosave is a cron schedule ("@every 30s"); empty disables autosave.
	Autosave      string `yaml:"autosave"`
	WatchExternal bool   `yaml:"watch_external"`
	History       bool   `yaml:"history"`
	Log           Log    `yaml:"log"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		DataDir:    filepath.Join(homeDir, ".local", "share", "canvasdoc"),
		ProjectKey: domain.DefaultProjectKey,
		Page:       Page{Width: domain.PageWidth, Height: domain.PageHeight},
		Store:      Store{Driver: "sqlite"},
		Autosave:   "@every 30s",
		History:    true,
	}
}

// DefaultPath is ~/.config/canvasdoc/config.yaml.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "canvasdoc", "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values the defaults cannot repair.
func (c *Config) Validate() error {
	if c.ProjectKey == "" {
		c.ProjectKey = domain.DefaultProjectKey
	}
	if c.Page.Width <= 0 || c.Page.Height <= 0 {
		return fmt.Errorf("page size must be positive, got %gx%g", c.Page.Width, c.Page.Height)
	}
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	switch c.Store.Driver {
	case "", "sqlite", "postgres", "mysql", "redis", "mongodb", "file":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}
