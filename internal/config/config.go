package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// Config holds everything the exporter needs, loaded once at startup.
// Exactly one of APIKey or Username+Password selects the auth method.
type Config struct {
	ControllerURL string `mapstructure:"controller_url"`
	APIKey        string `mapstructure:"api_key"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	Site          string `mapstructure:"site"`
	Port          int    `mapstructure:"port"`
	PollInterval  int    `mapstructure:"poll_interval"` // seconds
	HTTPTimeout   int    `mapstructure:"http_timeout"`  // seconds
	VerifySSL     bool   `mapstructure:"verify_ssl"`
	LogLevel      string `mapstructure:"log_level"`
}

// Load reads configuration from the environment and, when configPath is
// non-empty, a YAML file. File values override defaults, env values
// override the file.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("site", "default")
	v.SetDefault("port", 9897)
	v.SetDefault("poll_interval", 30)
	v.SetDefault("http_timeout", 10)
	v.SetDefault("verify_ssl", true)
	v.SetDefault("log_level", "info")

	for key, env := range map[string]string{
		"controller_url": "UNIFI_CONTROLLER_URL",
		"api_key":        "UNIFI_API_KEY",
		"username":       "UNIFI_USERNAME",
		"password":       "UNIFI_PASSWORD",
		"site":           "UNIFI_SITE",
		"port":           "METRICS_PORT",
		"poll_interval":  "POLL_INTERVAL",
		"http_timeout":   "HTTP_TIMEOUT",
		"verify_ssl":     "VERIFY_SSL",
		"log_level":      "LOG_LEVEL",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate enforces the startup contract. Any violation aborts the
// process before tasks are spawned.
func (c *Config) Validate() error {
	if c.APIKey == "" && (c.Username == "" || c.Password == "") {
		return errors.New("either UNIFI_API_KEY or both UNIFI_USERNAME and UNIFI_PASSWORD must be provided")
	}

	if c.ControllerURL == "" {
		return errors.New("controller URL cannot be empty")
	}
	if !strings.HasPrefix(c.ControllerURL, "http://") && !strings.HasPrefix(c.ControllerURL, "https://") {
		return errors.New("controller URL must start with http:// or https://")
	}

	if c.PollInterval <= 0 {
		return errors.New("poll interval must be greater than 0")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP timeout must be greater than 0")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("metrics port must be between 1 and 65535")
	}

	level := strings.ToLower(c.LogLevel)
	for _, valid := range validLogLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("log level must be one of: %s", strings.Join(validLogLevels, ", "))
}

// PollIntervalDuration returns the poll interval as a time.Duration
func (c *Config) PollIntervalDuration() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

// HTTPTimeoutDuration returns the HTTP timeout as a time.Duration
func (c *Config) HTTPTimeoutDuration() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}
