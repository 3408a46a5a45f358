// Trendora - Trending Ranking and Cache Invalidation for Video Platforms
// Copyright 2026 Trendora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/trendora/trendora

// Package config loads the application configuration from layered sources
// using Koanf v2: built-in defaults, an optional YAML file, then environment
// variables. Precedence is ENV > File > Defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order for a config file.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/trendora/config.yaml",
	"/etc/trendora/config.yml",
}

// ConfigPathEnvVar overrides the config file search when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Auth      AuthConfig      `koanf:"auth"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	NATS      NATSConfig      `koanf:"nats"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// DatabaseConfig points at the DuckDB database file. An empty path opens an
// in-memory database, which is only useful for tests.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// CacheConfig controls the Badger cache store. An empty Dir runs Badger
// in-memory; cached rankings then do not survive a restart.
type CacheConfig struct {
	Dir string `koanf:"dir"`
}

// AuthConfig holds the credentials accepted on the invalidation webhook.
// SigningKeyNext allows zero-downtime key rotation: requests signed with
// either key verify until the old key is retired.
type AuthConfig struct {
	InternalAPIKey    string `koanf:"internal_api_key"`
	SigningKeyCurrent string `koanf:"signing_key_current"`
	SigningKeyNext    string `koanf:"signing_key_next"`
}

// SchedulerConfig configures the external scheduling service that delivers
// recurring invalidation webhooks.
type SchedulerConfig struct {
	BaseURL    string `koanf:"base_url"`
	Token      string `koanf:"token"`
	WebhookURL string `koanf:"webhook_url"`
}

// NATSConfig configures real-time event distribution. When Embedded is true
// the server runs its own NATS instance instead of connecting to URL.
type NATSConfig struct {
	Enabled  bool   `koanf:"enabled"`
	URL      string `koanf:"url"`
	Embedded bool   `koanf:"embedded"`
}

// RateLimitConfig bounds the invalidation webhook. All callers share one
// bucket; the limit protects the cache from invalidation storms, not from
// any particular client.
type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults applied before any file or
// environment overrides.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			Path: "/data/trendora.db",
		},
		Cache: CacheConfig{
			Dir: "/data/cache",
		},
		Scheduler: SchedulerConfig{
			BaseURL: "https://qstash.upstash.io",
		},
		NATS: NATSConfig{
			Enabled:  false,
			URL:      "nats://127.0.0.1:4222",
			Embedded: false,
		},
		RateLimit: RateLimitConfig{
			Requests: 5,
			Window:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("TRENDORA_", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, checking the
// CONFIG_PATH environment variable before the default search paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - TRENDORA_SERVER_PORT -> server.port
//   - TRENDORA_AUTH_INTERNAL_API_KEY -> auth.internal_api_key
//   - TRENDORA_RATE_LIMIT_REQUESTS -> rate_limit.requests
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "TRENDORA_"))

	// Multi-word sections and fields cannot be split on every underscore;
	// map them explicitly.
	mappings := map[string]string{
		"server_read_timeout":      "server.read_timeout",
		"server_write_timeout":     "server.write_timeout",
		"server_shutdown_timeout":  "server.shutdown_timeout",
		"server_cors_origins":      "server.cors_origins",
		"auth_internal_api_key":    "auth.internal_api_key",
		"auth_signing_key_current": "auth.signing_key_current",
		"auth_signing_key_next":    "auth.signing_key_next",
		"scheduler_base_url":       "scheduler.base_url",
		"scheduler_webhook_url":    "scheduler.webhook_url",
		"rate_limit_requests":      "rate_limit.requests",
		"rate_limit_window":        "rate_limit.window",
	}
	if mapped, ok := mappings[key]; ok {
		return mapped
	}

	// Single-word fields: first segment is the section, rest is the field.
	parts := strings.SplitN(key, "_", 2)
	if len(parts) == 2 {
		return parts[0] + "." + parts[1]
	}
	return key
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// set from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values into slices for
// known slice fields. Environment variables arrive as strings while the
// config struct expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// Validate checks invariants the rest of the application relies on.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.RateLimit.Requests < 1 {
		return fmt.Errorf("rate_limit.requests must be at least 1, got %d", c.RateLimit.Requests)
	}
	if c.RateLimit.Window < time.Second {
		return fmt.Errorf("rate_limit.window must be at least 1s, got %s", c.RateLimit.Window)
	}
	if c.Auth.InternalAPIKey == "" && c.Auth.SigningKeyCurrent == "" {
		return fmt.Errorf("at least one of auth.internal_api_key or auth.signing_key_current must be set")
	}
	if c.NATS.Enabled && !c.NATS.Embedded && c.NATS.URL == "" {
		return fmt.Errorf("nats.url must be set when nats.enabled is true and nats.embedded is false")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
