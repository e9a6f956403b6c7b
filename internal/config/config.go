package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Food Explorer configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Catalog service configuration
	Catalog CatalogConfig `yaml:"catalog"`

	// Local storage
	Storage StorageConfig `yaml:"storage"`

	// Proxy server
	Server ServerConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// CatalogConfig configures the upstream catalog service.
type CatalogConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
	PageSize  int    `yaml:"page_size"`
	Timeout   string `yaml:"timeout"`
}

// StorageConfig configures the local key-value store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ServerConfig configures the proxy server.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// LoggingConfig configures categorized debug logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "Food Explorer",
		Version: "1.0.0",

		Catalog: CatalogConfig{
			BaseURL:   "https://world.openfoodfacts.org",
			UserAgent: "FoodExplorer/1.0 (food-explorer@example.com)",
			PageSize:  24,
			Timeout:   "30s",
		},

		Storage: StorageConfig{
			DatabasePath: "", // resolved relative to the data dir when empty
		},

		Server: ServerConfig{
			ListenAddr: ":8080",
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// DataDir returns the application data directory (~/.foodexplorer),
// creating it if needed.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".foodexplorer")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("FOODEXPLORER_CATALOG_URL"); url != "" {
		c.Catalog.BaseURL = url
	}
	if path := os.Getenv("FOODEXPLORER_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
	if addr := os.Getenv("FOODEXPLORER_LISTEN"); addr != "" {
		c.Server.ListenAddr = addr
	}
	if os.Getenv("FOODEXPLORER_DEBUG") == "1" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// GetCatalogTimeout returns the catalog request timeout as a duration.
func (c *Config) GetCatalogTimeout() time.Duration {
	d, err := time.ParseDuration(c.Catalog.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url must not be empty")
	}
	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("catalog.page_size must be positive, got %d", c.Catalog.PageSize)
	}
	return nil
}
