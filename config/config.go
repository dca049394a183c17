// Package config manages application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"ytnotes/retry"
)

// Config holds all application configuration for note generation.
type Config struct {
	// YouTubeAPIKey authenticates YouTube Data API v3 requests.
	YouTubeAPIKey string
	// VaultPath is the directory notes are written into.
	VaultPath string
	// DefaultAuthor is used when a video has no channel title.
	DefaultAuthor string

	// APIEndpoint is the base URL of the OpenAI-compatible model endpoint.
	APIEndpoint string
	// APIKey authenticates model requests (may be empty for local endpoints).
	APIKey string
	// Model is the model name sent with every completion request.
	Model string

	// MaxKeywords bounds the keyword list attached to each note.
	MaxKeywords int
	// ChunkOverlap is the character overlap between consecutive transcript chunks.
	ChunkOverlap int

	// RequestTimeout bounds metadata and transcript HTTP requests.
	RequestTimeout time.Duration

	// Retry configures backoff for all outbound model and API calls.
	Retry retry.Config
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		VaultPath:      "./vault",
		DefaultAuthor:  "Unknown Channel",
		APIEndpoint:    "http://localhost:11434/v1",
		Model:          "gemma:3b",
		MaxKeywords:    20,
		ChunkOverlap:   500,
		RequestTimeout: 30 * time.Second,
		Retry:          retry.DefaultConfig(),
	}
}

// Load builds configuration from defaults, an optional .env file, and
// process environment variables, in increasing precedence. The result is
// validated and then immutable: callers inject it once at construction and
// never re-read the environment per request.
func Load() (*Config, error) {
	// .env is optional; real env vars win over file values.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.YouTubeAPIKey = v
	}
	if v := os.Getenv("VAULT_PATH"); v != "" {
		c.VaultPath = v
	}
	if v := os.Getenv("DEFAULT_AUTHOR"); v != "" {
		c.DefaultAuthor = v
	}
	if v := os.Getenv("API_ENDPOINT"); v != "" {
		c.APIEndpoint = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("MAX_KEYWORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxKeywords = n
		}
	}
	if v := os.Getenv("CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ChunkOverlap = n
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RequestTimeout = d
		}
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retry.MaxRetries = n
		}
	}
	if v := os.Getenv("INITIAL_RETRY_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Retry.InitialDelay = d
		}
	}
	if v := os.Getenv("MAX_RETRY_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Retry.MaxDelay = d
		}
	}
	if v := os.Getenv("RETRY_EXPONENTIAL_BASE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Retry.Base = f
		}
	}
}

// Validate checks that configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.YouTubeAPIKey == "" {
		return fmt.Errorf("youtube api key is required (set YOUTUBE_API_KEY)")
	}
	if c.VaultPath == "" {
		return fmt.Errorf("vault path must not be empty")
	}
	if c.APIEndpoint == "" {
		return fmt.Errorf("api endpoint must not be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.MaxKeywords <= 0 {
		return fmt.Errorf("max_keywords must be positive")
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must be non-negative")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.Retry.InitialDelay <= 0 {
		return fmt.Errorf("initial_retry_delay must be positive")
	}
	if c.Retry.MaxDelay < c.Retry.InitialDelay {
		return fmt.Errorf("max_retry_delay must be >= initial_retry_delay")
	}
	if c.Retry.Base <= 1 {
		return fmt.Errorf("retry_exponential_base must be > 1")
	}
	return nil
}
