// Package config loads tftpd's configuration from defaults, an optional
// YAML file, environment variables, and CLI flags, in that ascending order
// of precedence — the same layering the teacher repo's config package used
// for its multi-protocol server, trimmed to the single TFTP service this
// repo implements.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete tftpd configuration.
type Config struct {
	Root       string        `yaml:"root"`
	Bind       string        `yaml:"bind"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	Logging    LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls the leveled logger (internal/tftplog).
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns a configuration with the defaults named in §6 of the
// spec (TIMEOUT=3s, MAX_RETRIES=5, bind :69).
func DefaultConfig() *Config {
	return &Config{
		Root:       DefaultRoot,
		Bind:       DefaultBind,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// LoadFromFile loads configuration from a YAML file, starting from
// DefaultConfig. A missing file is not an error — the defaults stand, same
// as the teacher's LoadFromFile.
func LoadFromFile(filename string) (*Config, error) {
	cfg := DefaultConfig()

	if filename == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", filename, err)
	}

	return cfg, nil
}

// ApplyEnvironmentVariables overlays TFTPD_* environment variables onto c.
func (c *Config) ApplyEnvironmentVariables() {
	if val := os.Getenv("TFTPD_ROOT"); val != "" {
		c.Root = val
	}
	if val := os.Getenv("TFTPD_BIND"); val != "" {
		c.Bind = val
	}
	if val := os.Getenv("TFTPD_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Timeout = d
		}
	}
	if val := os.Getenv("TFTPD_MAX_RETRIES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.MaxRetries = n
		}
	}
	if val := os.Getenv("TFTPD_LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}
	if val := os.Getenv("TFTPD_LOG_FORMAT"); val != "" {
		c.Logging.Format = val
	}
}

// Validate rejects impossible configurations and ensures the root directory
// exists before the server binds a socket.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("config: root directory cannot be empty")
	}
	if err := os.MkdirAll(c.Root, 0755); err != nil {
		return fmt.Errorf("config: create root directory %s: %w", c.Root, err)
	}
	if c.Bind == "" {
		return fmt.Errorf("config: bind address cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config: max_retries cannot be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("config: invalid log level %q, must be one of: debug, info, warn, error", c.Logging.Level)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("config: invalid log format %q, must be one of: text, json", c.Logging.Format)
	}

	return nil
}
