package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"calculator/internal/calc"
)

// Config holds user settings for the calculator.
type Config struct {
	// MaxHistory caps the history length; 0 keeps everything.
	MaxHistory int `yaml:"max_history"`
	// StatusTimeout is how long the UI shows a status message.
	StatusTimeout time.Duration `yaml:"status_timeout"`
	// Precision is the number of fractional digits kept in results.
	Precision int    `yaml:"precision"`
	LogLevel  string `yaml:"log_level"` // debug, info, warn, error, none
	LogFile   string `yaml:"log_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxHistory:    0,
		StatusTimeout: 2 * time.Second,
		Precision:     calc.DefaultPrecision,
		LogLevel:      "none",
		LogFile:       filepath.Join(Dir(), "calculator.log"),
	}
}

// Dir returns the configuration directory.
func Dir() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "calculator")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".config", "calculator")
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the YAML file at path on top of the defaults. A missing file
// is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the session cannot honour.
func (c Config) Validate() error {
	if c.MaxHistory < 0 {
		return fmt.Errorf("max_history must not be negative, got %d", c.MaxHistory)
	}
	if c.StatusTimeout < 0 {
		return fmt.Errorf("status_timeout must not be negative, got %s", c.StatusTimeout)
	}
	if c.Precision < 0 || c.Precision > 17 {
		return fmt.Errorf("precision must be between 0 and 17, got %d", c.Precision)
	}
	return nil
}
