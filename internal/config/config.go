// Package config provides configuration loading and validation for the
// keyword mapper. Values come from the environment (optionally seeded from a
// .env file by the CLI entry point); operational knobs carry defaults.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Defaults for operational knobs. The timeout and batch numbers were tuned
// empirically against the primary provider, so they stay configurable.
const (
	DefaultBatchSize      = 10
	DefaultPollInterval   = 5 * time.Second
	DefaultCollectTimeout = 420 * time.Second
	DefaultPort           = 8080
)

// Config holds everything the pipeline and the HTTP server read at startup.
type Config struct {
	// LLM credentials. At least one is required for extraction.
	GeminiAPIKey string `mapstructure:"gemini-api-key"`
	GroqAPIKey   string `mapstructure:"groq-api-key"`

	// Job-board provider credentials.
	ApifyToken   string `mapstructure:"apify-api-token"`
	AdzunaAppID  string `mapstructure:"adzuna-app-id"`
	AdzunaAppKey string `mapstructure:"adzuna-app-key"`

	// Optional Postgres persistence of completed runs.
	DatabaseURL string `mapstructure:"database-url"`

	// Operational knobs.
	BatchSize      int           `mapstructure:"batch-size"`
	PollInterval   time.Duration `mapstructure:"poll-interval"`
	CollectTimeout time.Duration `mapstructure:"collect-timeout"`
	Port           int           `mapstructure:"port"`
}

// envBindings maps config keys to their environment variables.
var envBindings = map[string]string{
	"gemini-api-key":  "GEMINI_API_KEY",
	"groq-api-key":    "GROQ_API_KEY",
	"apify-api-token": "APIFY_API_TOKEN",
	"adzuna-app-id":   "ADZUNA_APP_ID",
	"adzuna-app-key":  "ADZUNA_APP_KEY",
	"database-url":    "DATABASE_URL",
	"batch-size":      "KM_BATCH_SIZE",
	"poll-interval":   "KM_POLL_INTERVAL",
	"collect-timeout": "KM_COLLECT_TIMEOUT",
	"port":            "PORT",
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	v.SetDefault("batch-size", DefaultBatchSize)
	v.SetDefault("poll-interval", DefaultPollInterval)
	v.SetDefault("collect-timeout", DefaultCollectTimeout)
	v.SetDefault("port", DefaultPort)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks ranges on the operational knobs. Credential presence is
// checked by the components that need them, so a key-less config is still
// valid (the health endpoint reports what is missing).
func (c *Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("config error: batch size must be at least 1, got %d", c.BatchSize)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("config error: poll interval must be positive, got %s", c.PollInterval)
	}
	if c.CollectTimeout <= 0 {
		return fmt.Errorf("config error: collect timeout must be positive, got %s", c.CollectTimeout)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: invalid port %d", c.Port)
	}
	return nil
}

// HasLLM reports whether at least one LLM credential is configured.
func (c *Config) HasLLM() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

// HasJobSource reports whether at least one job-board credential is set.
func (c *Config) HasJobSource() bool {
	return c.ApifyToken != "" || (c.AdzunaAppID != "" && c.AdzunaAppKey != "")
}
