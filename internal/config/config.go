package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the Resemble client and the stream CLI
type Config struct {
	// Resemble API configuration
	APIKey       string `envconfig:"RESEMBLE_API_KEY" required:"true"`
	BaseURL      string `envconfig:"RESEMBLE_BASE_URL" default:"https://app.resemble.ai/api/"`
	SynthesisURL string `envconfig:"RESEMBLE_SYNTHESIS_URL" default:"https://f.cluster.resemble.ai/"`
	HTTPTimeout  int    `envconfig:"RESEMBLE_HTTP_TIMEOUT" default:"60"` // seconds

	// Stream defaults
	StreamBufferSize      int    `envconfig:"STREAM_BUFFER_SIZE" default:"4096"` // Bytes per emitted audio buffer, even and >= 2
	StreamIgnoreWavHeader bool   `envconfig:"STREAM_IGNORE_WAV_HEADER" default:"false"`
	StreamTimestamps      bool   `envconfig:"STREAM_TIMESTAMPS" default:"false"`
	StreamSampleRate      int    `envconfig:"STREAM_SAMPLE_RATE" default:"22050"`
	StreamPrecision       string `envconfig:"STREAM_PRECISION" default:"PCM_16"` // PCM_16, PCM_24, PCM_32, MULAW

	// Resilience configuration
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`   // Failures before opening circuit
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // Seconds before attempting recovery
	RetryMaxAttempts           int `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`             // Maximum retry attempts
	RetryInitialBackoff        int `envconfig:"RETRY_INITIAL_BACKOFF" default:"100"`        // Initial backoff in milliseconds
	RetryMaxBackoff            int `envconfig:"RETRY_MAX_BACKOFF" default:"5000"`           // Maximum backoff in milliseconds

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
	MetricsAddr    string `envconfig:"METRICS_ADDR" default:""`        // Serve /metrics on this address when set
}

// Precisions accepted by the synthesis server
var validPrecisions = map[string]bool{
	"PCM_16": true,
	"PCM_24": true,
	"PCM_32": true,
	"MULAW":  true,
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that envconfig cannot express as tags
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("RESEMBLE_API_KEY is required")
	}
	if c.StreamBufferSize < 2 || c.StreamBufferSize%2 != 0 {
		return fmt.Errorf("STREAM_BUFFER_SIZE must be even and at least 2, got %d", c.StreamBufferSize)
	}
	if c.StreamSampleRate <= 0 {
		return fmt.Errorf("STREAM_SAMPLE_RATE must be positive, got %d", c.StreamSampleRate)
	}
	c.StreamPrecision = strings.ToUpper(c.StreamPrecision)
	if !validPrecisions[c.StreamPrecision] {
		return fmt.Errorf("STREAM_PRECISION %q is not one of PCM_16, PCM_24, PCM_32, MULAW", c.StreamPrecision)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("RESEMBLE_HTTP_TIMEOUT must be positive, got %d", c.HTTPTimeout)
	}
	return nil
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
