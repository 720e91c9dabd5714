package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// LLM backends
	AnthropicAPIKey string
	OpenAIAPIKey    string
	DefaultBackend  string
	DefaultModel    string
	Temperature     float64
	MaxTokens       int

	// Auth
	APIKey string

	// Validation
	CheckLevelRange bool

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Generation retries
	MaxAttempts int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		DefaultBackend:  envOr("LLM_BACKEND", "anthropic"),
		DefaultModel:    os.Getenv("LLM_MODEL"),
		Temperature:     envFloat("LLM_TEMPERATURE", 0.2),
		MaxTokens:       envInt("LLM_MAX_TOKENS", 8192),

		APIKey: os.Getenv("MDSTRUCT_API_KEY"),

		CheckLevelRange: envBool("LEVEL_RANGE_CHECK", false),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxAttempts: envInt("MAX_GENERATION_ATTEMPTS", 3),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.Temperature < 0 {
		cfg.Temperature = 0
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("MDSTRUCT_API_KEY is required")
	}
	if c.AnthropicAPIKey == "" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("at least one of ANTHROPIC_API_KEY or OPENAI_API_KEY is required")
	}
	switch c.DefaultBackend {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("LLM_BACKEND=anthropic but ANTHROPIC_API_KEY is not set")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("LLM_BACKEND=openai but OPENAI_API_KEY is not set")
		}
	default:
		return fmt.Errorf("unknown LLM_BACKEND: %s", c.DefaultBackend)
	}
	return nil
}

// BackendKey returns the API key for a backend name.
func (c Config) BackendKey(name string) string {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey
	case "openai":
		return c.OpenAIAPIKey
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
