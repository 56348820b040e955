package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Bind != DefaultBind {
		t.Errorf("Bind = %q, want %q", cfg.Bind, DefaultBind)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", cfg.MaxRetries, DefaultMaxRetries)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	os.RemoveAll(cfg.Root)
}

func TestLoadFromFileMissingIsNotError(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Bind != DefaultBind {
		t.Fatalf("Bind = %q, want default %q", cfg.Bind, DefaultBind)
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tftpd.yml")
	yaml := "root: ./custom\nbind: \":6969\"\ntimeout: 5s\nmax_retries: 2\nlogging:\n  level: debug\n  format: json\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Bind != ":6969" {
		t.Errorf("Bind = %q, want :6969", cfg.Bind)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", cfg.MaxRetries)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
}

func TestApplyEnvironmentVariables(t *testing.T) {
	t.Setenv("TFTPD_ROOT", "./env-root")
	t.Setenv("TFTPD_BIND", ":7000")
	t.Setenv("TFTPD_TIMEOUT", "7s")
	t.Setenv("TFTPD_MAX_RETRIES", "9")
	t.Setenv("TFTPD_LOG_LEVEL", "warn")
	t.Setenv("TFTPD_LOG_FORMAT", "json")

	cfg := DefaultConfig()
	cfg.ApplyEnvironmentVariables()

	if cfg.Root != "./env-root" {
		t.Errorf("Root = %q", cfg.Root)
	}
	if cfg.Bind != ":7000" {
		t.Errorf("Bind = %q", cfg.Bind)
	}
	if cfg.Timeout != 7*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.MaxRetries != 9 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		cfg := DefaultConfig()
		cfg.Root = t.TempDir()
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty bind", func(c *Config) { c.Bind = "" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := base()
			c.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("Validate() = nil, want error for %s", c.name)
			}
		})
	}
}
