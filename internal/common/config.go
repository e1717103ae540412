// Package common provides shared utilities for Piefolio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Piefolio
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Refresh     RefreshConfig `toml:"refresh"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	Path          string `toml:"path"`           // SQLite database file
	CredentialKey string `toml:"credential_key"` // hex-encoded 32-byte key sealing stored broker API keys
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Trading212 Trading212Config `toml:"trading212"`
	Yahoo      YahooConfig      `toml:"yahoo"`
}

// Trading212Config holds brokerage API configuration
type Trading212Config struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"` // fallback when no per-user key is stored
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *Trading212Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// YahooConfig holds market-data API configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// RefreshConfig controls the portfolio refresh cycle.
type RefreshConfig struct {
	Deadline         string `toml:"deadline"`          // overall budget for one refresh, duration string
	PieConcurrency   int    `toml:"pie_concurrency"`   // max pies fetched in parallel
	MaxRetries       int    `toml:"max_retries"`       // extra HTTP attempts after the first
	InitialBackoff   string `toml:"initial_backoff"`   // first retry delay, doubles per attempt
	CacheTTL         string `toml:"cache_ttl"`         // response cache TTL
	CatalogueRefresh string `toml:"catalogue_refresh"` // cron spec for instrument catalogue reload
}

// GetDeadline parses and returns the refresh deadline duration
func (c *RefreshConfig) GetDeadline() time.Duration {
	d, err := time.ParseDuration(c.Deadline)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// GetInitialBackoff parses and returns the first retry delay
func (c *RefreshConfig) GetInitialBackoff() time.Duration {
	d, err := time.ParseDuration(c.InitialBackoff)
	if err != nil {
		return time.Second
	}
	return d
}

// GetCacheTTL parses and returns the response cache TTL
func (c *RefreshConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return FreshnessResponse
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/piefolio.db",
		},
		Clients: ClientsConfig{
			Trading212: Trading212Config{
				BaseURL:   "https://live.trading212.com/api/v0",
				RateLimit: 2,
				Timeout:   "10s",
			},
			Yahoo: YahooConfig{
				BaseURL:   "https://query2.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "10s",
			},
		},
		Refresh: RefreshConfig{
			Deadline:         "5m",
			PieConcurrency:   3,
			MaxRetries:       3,
			InitialBackoff:   "1s",
			CacheTTL:         "5m",
			CatalogueRefresh: "0 */6 * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PIEFOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("PIEFOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("PIEFOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("PIEFOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("PIEFOLIO_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if key := os.Getenv("PIEFOLIO_CREDENTIAL_KEY"); key != "" {
		config.Storage.CredentialKey = key
	}

	if key := os.Getenv("PIEFOLIO_T212_API_KEY"); key != "" {
		config.Clients.Trading212.APIKey = key
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
