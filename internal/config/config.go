// Package config provides configuration loading and structs for the Omoide server.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Enrich    EnrichConfig    `yaml:"enrichment"`
	Narrative NarrativeConfig `yaml:"narrative"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RateLimitConfig holds request admission settings.
type RateLimitConfig struct {
	WindowSeconds int  `yaml:"window_seconds"`
	Limit         int  `yaml:"limit"`
	SweepSeconds  int  `yaml:"sweep_seconds"`
	Bypass        bool `yaml:"bypass"` // ops/test override; disables enforcement
}

// Window returns the admission window as a duration.
func (r *RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// SweepInterval returns the background sweep interval as a duration.
func (r *RateLimitConfig) SweepInterval() time.Duration {
	return time.Duration(r.SweepSeconds) * time.Second
}

// CacheConfig holds venue cache settings.
type CacheConfig struct {
	VenueTTLHours int `yaml:"venue_ttl_hours"`
	SweepSeconds  int `yaml:"sweep_seconds"`
}

// VenueTTL returns the venue enrichment TTL as a duration.
func (c *CacheConfig) VenueTTL() time.Duration {
	return time.Duration(c.VenueTTLHours) * time.Hour
}

// SweepInterval returns the cache sweep interval as a duration.
func (c *CacheConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepSeconds) * time.Second
}

// EnrichConfig holds external enrichment source settings.
type EnrichConfig struct {
	WikipediaBaseURL      string `yaml:"wikipedia_base_url"`
	WeatherBaseURL        string `yaml:"weather_base_url"`
	WeatherAPIKey         string `yaml:"weather_api_key"`
	SearchTimeoutSeconds  int    `yaml:"search_timeout_seconds"`
	WeatherTimeoutSeconds int    `yaml:"weather_timeout_seconds"`
}

// SearchTimeout returns the per-call venue search timeout.
func (e *EnrichConfig) SearchTimeout() time.Duration {
	return time.Duration(e.SearchTimeoutSeconds) * time.Second
}

// WeatherTimeout returns the weather call timeout.
func (e *EnrichConfig) WeatherTimeout() time.Duration {
	return time.Duration(e.WeatherTimeoutSeconds) * time.Second
}

// NarrativeConfig holds narrative-model settings.
type NarrativeConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        *bool  `yaml:"enabled"`
}

// Timeout returns the narrative-model call timeout.
func (n *NarrativeConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// EnabledOrDefault returns whether the narrative model is enabled; defaults to true when unset.
func (n *NarrativeConfig) EnabledOrDefault() bool {
	if n.Enabled != nil {
		return *n.Enabled
	}
	return true
}

// Load reads and parses the config file at path and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
