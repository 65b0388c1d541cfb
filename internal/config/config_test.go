package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		ControllerURL: "https://192.168.1.1:8443",
		APIKey:        "test-key",
		Site:          "default",
		Port:          9897,
		PollInterval:  30,
		HTTPTimeout:   10,
		VerifySSL:     true,
		LogLevel:      "info",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Site != "default" {
		t.Errorf("Expected default site, got %s", cfg.Site)
	}
	if cfg.Port != 9897 {
		t.Errorf("Expected default port 9897, got %d", cfg.Port)
	}
	if cfg.PollInterval != 30 {
		t.Errorf("Expected default poll interval 30, got %d", cfg.PollInterval)
	}
	if cfg.HTTPTimeout != 10 {
		t.Errorf("Expected default HTTP timeout 10, got %d", cfg.HTTPTimeout)
	}
	if !cfg.VerifySSL {
		t.Error("Expected SSL verification on by default")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("UNIFI_CONTROLLER_URL", "https://unifi.example.com")
	t.Setenv("UNIFI_USERNAME", "admin")
	t.Setenv("UNIFI_PASSWORD", "secret")
	t.Setenv("UNIFI_SITE", "branch-office")
	t.Setenv("METRICS_PORT", "9100")
	t.Setenv("POLL_INTERVAL", "60")
	t.Setenv("VERIFY_SSL", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ControllerURL != "https://unifi.example.com" {
		t.Errorf("Unexpected controller URL: %s", cfg.ControllerURL)
	}
	if cfg.Username != "admin" || cfg.Password != "secret" {
		t.Error("Credentials not loaded from environment")
	}
	if cfg.Site != "branch-office" {
		t.Errorf("Unexpected site: %s", cfg.Site)
	}
	if cfg.Port != 9100 {
		t.Errorf("Unexpected port: %d", cfg.Port)
	}
	if cfg.PollInterval != 60 {
		t.Errorf("Unexpected poll interval: %d", cfg.PollInterval)
	}
	if cfg.VerifySSL {
		t.Error("Expected SSL verification disabled")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Unexpected log level: %s", cfg.LogLevel)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `controller_url: https://unifi.local:8443
api_key: file-key
site: warehouse
poll_interval: 15
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Run("File values loaded", func(t *testing.T) {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.ControllerURL != "https://unifi.local:8443" {
			t.Errorf("Unexpected controller URL: %s", cfg.ControllerURL)
		}
		if cfg.APIKey != "file-key" {
			t.Errorf("Unexpected API key: %s", cfg.APIKey)
		}
		if cfg.Site != "warehouse" {
			t.Errorf("Unexpected site: %s", cfg.Site)
		}
		if cfg.PollInterval != 15 {
			t.Errorf("Unexpected poll interval: %d", cfg.PollInterval)
		}
		// Untouched keys keep their defaults
		if cfg.Port != 9897 {
			t.Errorf("Expected default port, got %d", cfg.Port)
		}
	})

	t.Run("Environment overrides file", func(t *testing.T) {
		t.Setenv("UNIFI_SITE", "env-site")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Site != "env-site" {
			t.Errorf("Expected env to win over file, got %s", cfg.Site)
		}
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "does-not-exist.yaml"))
		if err == nil {
			t.Fatal("Load should fail for a missing config file")
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("Valid with API key", func(t *testing.T) {
		if err := validConfig().Validate(); err != nil {
			t.Errorf("Validate failed: %v", err)
		}
	})

	t.Run("Valid with username and password", func(t *testing.T) {
		cfg := validConfig()
		cfg.APIKey = ""
		cfg.Username = "admin"
		cfg.Password = "secret"
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate failed: %v", err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "No credentials",
			mutate:  func(c *Config) { c.APIKey = "" },
			wantErr: "either UNIFI_API_KEY or both UNIFI_USERNAME and UNIFI_PASSWORD must be provided",
		},
		{
			name: "Username without password",
			mutate: func(c *Config) {
				c.APIKey = ""
				c.Username = "admin"
			},
			wantErr: "either UNIFI_API_KEY or both UNIFI_USERNAME and UNIFI_PASSWORD must be provided",
		},
		{
			name:    "Empty controller URL",
			mutate:  func(c *Config) { c.ControllerURL = "" },
			wantErr: "controller URL cannot be empty",
		},
		{
			name:    "Controller URL without scheme",
			mutate:  func(c *Config) { c.ControllerURL = "unifi.example.com" },
			wantErr: "controller URL must start with http:// or https://",
		},
		{
			name:    "Zero poll interval",
			mutate:  func(c *Config) { c.PollInterval = 0 },
			wantErr: "poll interval must be greater than 0",
		},
		{
			name:    "Negative HTTP timeout",
			mutate:  func(c *Config) { c.HTTPTimeout = -1 },
			wantErr: "HTTP timeout must be greater than 0",
		},
		{
			name:    "Port too high",
			mutate:  func(c *Config) { c.Port = 70000 },
			wantErr: "metrics port must be between 1 and 65535",
		},
		{
			name:    "Zero port",
			mutate:  func(c *Config) { c.Port = 0 },
			wantErr: "metrics port must be between 1 and 65535",
		},
		{
			name:    "Bogus log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "log level must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}

	t.Run("Log level is case insensitive", func(t *testing.T) {
		cfg := validConfig()
		cfg.LogLevel = "DEBUG"
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate failed: %v", err)
		}
	})
}

func TestDurationHelpers(t *testing.T) {
	cfg := &Config{PollInterval: 45, HTTPTimeout: 5}

	if got := cfg.PollIntervalDuration(); got != 45*time.Second {
		t.Errorf("Expected 45s, got %v", got)
	}
	if got := cfg.HTTPTimeoutDuration(); got != 5*time.Second {
		t.Errorf("Expected 5s, got %v", got)
	}
}
