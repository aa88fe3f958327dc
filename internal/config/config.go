// Package config handles TOML-based configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"vodgrep/internal/httputil"
)

// Config holds all application configuration.
type Config struct {
	ClientID          string  `toml:"client_id"`
	ClientSecret      string  `toml:"client_secret"`
	APIBase           string  `toml:"api_base"`
	IDBase            string  `toml:"id_base"`
	LegacyClientID    string  `toml:"legacy_client_id"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	MaxRetries        int     `toml:"max_retries"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Concurrency       int     `toml:"concurrency"`
	Format            string  `toml:"format"`
	Color             string  `toml:"color"`
	Debug             bool    `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		APIBase:           "https://api.twitch.tv",
		IDBase:            "https://id.twitch.tv",
		LegacyClientID:    "kimne78kx3ncx6brgo4mv6wki5h1ko",
		TimeoutSeconds:    30,
		MaxRetries:        3,
		RequestsPerSecond: 10,
		Concurrency:       4,
		Format:            "text",
		Color:             "auto",
		Debug:             false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vodgrep"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vodgrep"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file, merges it over the defaults and applies
// environment overrides. If the config file doesn't exist, defaults are used.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// applyEnv lets TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET override the file.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("TWITCH_CLIENT_ID")); v != "" {
		c.ClientID = v
	}
	if v := strings.TrimSpace(os.Getenv("TWITCH_CLIENT_SECRET")); v != "" {
		c.ClientSecret = v
	}
}

// Validate checks config values are within acceptable bounds.
// Credentials are not required here; see RequireCredentials.
func (c *Config) Validate() error {
	if err := httputil.ValidateURL(c.APIBase); err != nil {
		return fmt.Errorf("api_base: %w", err)
	}
	if err := httputil.ValidateURL(c.IDBase); err != nil {
		return fmt.Errorf("id_base: %w", err)
	}

	if c.LegacyClientID == "" {
		return fmt.Errorf("legacy_client_id cannot be empty")
	}

	if c.TimeoutSeconds < 1 || c.TimeoutSeconds > 600 {
		return fmt.Errorf("timeout_seconds must be between 1 and 600, got %d", c.TimeoutSeconds)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("max_retries must be between 0 and 10, got %d", c.MaxRetries)
	}
	if c.RequestsPerSecond < 0 || c.RequestsPerSecond > 800 {
		return fmt.Errorf("requests_per_second must be between 0 and 800, got %g", c.RequestsPerSecond)
	}
	if c.Concurrency < 1 || c.Concurrency > 32 {
		return fmt.Errorf("concurrency must be between 1 and 32, got %d", c.Concurrency)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Format)] {
		return fmt.Errorf("unsupported format %q (valid: text, json)", c.Format)
	}

	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[strings.ToLower(c.Color)] {
		return fmt.Errorf("unsupported color mode %q (valid: auto, always, never)", c.Color)
	}

	return nil
}

// RequireCredentials reports whether a client id and secret are configured.
func (c *Config) RequireCredentials() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		path, _ := ConfigPath()
		return fmt.Errorf("client id and secret are required: set TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET, pass --client-id/--client-secret, or add them to %s", path)
	}
	return nil
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
