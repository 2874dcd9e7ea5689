package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMarketplaceURL = "https://marketplace.visualstudio.com/_apis/public/gallery/extensionquery"
	DefaultSemgrepTimeout = 300 * time.Second
	DefaultLookupTimeout  = 10 * time.Second
	DefaultAssistantModel = "gemini-1.5-flash"
)

type SemgrepConfig struct {
	Path    string        `yaml:"path"`
	Rules   string        `yaml:"rules,omitempty"`
	Timeout time.Duration `yaml:"timeout"`
}

type MarketplaceConfig struct {
	URL      string        `yaml:"url"`
	Timeout  time.Duration `yaml:"timeout"`
	Disabled bool          `yaml:"disabled"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

type AssistantConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	Model  string `yaml:"model"`
}

type Config struct {
	Semgrep     SemgrepConfig     `yaml:"semgrep"`
	Marketplace MarketplaceConfig `yaml:"marketplace"`
	History     HistoryConfig     `yaml:"history"`
	Assistant   AssistantConfig   `yaml:"assistant"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Semgrep: SemgrepConfig{
			Path:    "semgrep",
			Timeout: DefaultSemgrepTimeout,
		},
		Marketplace: MarketplaceConfig{
			URL:     DefaultMarketplaceURL,
			Timeout: DefaultLookupTimeout,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Assistant: AssistantConfig{
			Model: DefaultAssistantModel,
		},
	}
}

// Dir returns ~/.vsce-audit, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".vsce-audit")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// HistoryPath resolves the sqlite file, defaulting to ~/.vsce-audit/history.db.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// LoadConfig reads the config at path, or the default location when path is empty.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// 0600, the file may hold an API key
	return os.WriteFile(path, data, 0600)
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Semgrep.Path == "" {
		c.Semgrep.Path = d.Semgrep.Path
	}
	if c.Semgrep.Timeout <= 0 {
		c.Semgrep.Timeout = d.Semgrep.Timeout
	}
	if c.Marketplace.URL == "" {
		c.Marketplace.URL = d.Marketplace.URL
	}
	if c.Marketplace.Timeout <= 0 {
		c.Marketplace.Timeout = d.Marketplace.Timeout
	}
	if c.Assistant.Model == "" {
		c.Assistant.Model = d.Assistant.Model
	}
}

// Set updates a single dotted key such as "semgrep.timeout".
func (c *Config) Set(key, value string) error {
	switch key {
	case "semgrep.path":
		c.Semgrep.Path = value
	case "semgrep.rules":
		c.Semgrep.Rules = value
	case "semgrep.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		c.Semgrep.Timeout = d
	case "marketplace.url":
		c.Marketplace.URL = value
	case "marketplace.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		c.Marketplace.Timeout = d
	case "marketplace.disabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid bool %q: %w", value, err)
		}
		c.Marketplace.Disabled = b
	case "history.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid bool %q: %w", value, err)
		}
		c.History.Enabled = b
	case "history.path":
		c.History.Path = value
	case "assistant.model":
		c.Assistant.Model = value
	case "assistant.api_key":
		c.Assistant.APIKey = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func (c *Config) GetAPIKey() string {
	if c.Assistant.APIKey != "" {
		return c.Assistant.APIKey
	}
	return os.Getenv("GOOGLE_API_KEY")
}
