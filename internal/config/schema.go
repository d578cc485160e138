// Package config defines pazarbot's configuration schema and the loader
// for ~/.pazarbot/config.json.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func defaultServerConfig() ServerConfig {
	return ServerConfig{Host: "0.0.0.0", Port: 8090}
}

// ProviderConfig holds credentials and defaults for the text generation
// backend.
type ProviderConfig struct {
	Name           string  `json:"name"` // "gemini" or "openai"
	APIKey         string  `json:"apiKey"`
	APIBase        string  `json:"apiBase,omitempty"`
	Model          string  `json:"model"`
	Temperature    float64 `json:"temperature"`
	MaxTokens      int     `json:"maxTokens"`
	TimeoutSeconds int     `json:"timeoutSeconds"`
}

func defaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Name:           "gemini",
		Model:          "gemini-2.0-flash",
		Temperature:    0.4,
		MaxTokens:      1024,
		TimeoutSeconds: 30,
	}
}

// SearchConfig configures the semantic search backend client.
type SearchConfig struct {
	BaseURL        string `json:"baseUrl"`
	Collection     string `json:"collection"`
	Limit          int    `json:"limit"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

func defaultSearchConfig() SearchConfig {
	return SearchConfig{
		BaseURL:        "http://127.0.0.1:8001",
		Collection:     "SupermarketProducts3",
		Limit:          20,
		TimeoutSeconds: 30,
	}
}

// CatalogConfig configures the optional SQL product-catalog path. When
// enabled, price questions are answered from the database instead of the
// search backend.
type CatalogConfig struct {
	Enabled    bool   `json:"enabled"`
	Driver     string `json:"driver"`
	DSN        string `json:"dsn"`
	MaxRetries int    `json:"maxRetries"`
}

func defaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		Driver:     "sqlite3",
		DSN:        filepath.Join(DataDir(), "products.db"),
		MaxRetries: 2,
	}
}

// MemoryConfig configures conversational memory: the verbatim window, the
// compaction trigger, the degraded-mode hard cap, and idle eviction.
type MemoryConfig struct {
	WindowSize               int    `json:"windowSize"`
	CompactThreshold         int    `json:"compactThreshold"`
	HardCap                  int    `json:"hardCap"`
	SummarizerTimeoutSeconds int    `json:"summarizerTimeoutSeconds"`
	IdleTTLMinutes           int    `json:"idleTtlMinutes"`
	SweepSchedule            string `json:"sweepSchedule"`
}

func defaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		WindowSize:               5,
		CompactThreshold:         15,
		HardCap:                  20,
		SummarizerTimeoutSeconds: 30,
		IdleTTLMinutes:           60,
		SweepSchedule:            "@every 10m",
	}
}

// Config is the root configuration.
type Config struct {
	Server      ServerConfig   `json:"server"`
	Provider    ProviderConfig `json:"provider"`
	Search      SearchConfig   `json:"search"`
	Catalog     CatalogConfig  `json:"catalog"`
	Memory      MemoryConfig   `json:"memory"`
	PromptsPath string         `json:"promptsPath,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Server:   defaultServerConfig(),
		Provider: defaultProviderConfig(),
		Search:   defaultSearchConfig(),
		Catalog:  defaultCatalogConfig(),
		Memory:   defaultMemoryConfig(),
	}
}

// ProviderTimeout returns the provider timeout as a duration.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}

// SearchTimeout returns the search backend timeout as a duration.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

// SummarizerTimeout returns the summarizer call timeout as a duration.
func (c *Config) SummarizerTimeout() time.Duration {
	return time.Duration(c.Memory.SummarizerTimeoutSeconds) * time.Second
}

// IdleTTL returns the idle eviction TTL as a duration.
func (c *Config) IdleTTL() time.Duration {
	return time.Duration(c.Memory.IdleTTLMinutes) * time.Minute
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// DataDir returns the pazarbot data directory: ~/.pazarbot.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pazarbot"
	}
	return filepath.Join(home, ".pazarbot")
}
