// Package config loads application configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration.
type Config struct {
	// Server
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data
	DataDir      string // writable dir for the embedding cache database
	FAQDataDir   string // dir holding intents.json, data.json, extras.json
	SQLiteDBName string

	// Embeddings
	EmbeddingProvider string // "gemini", "openai" or "deterministic"
	GeminiAPIKey      string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	EmbeddingModel    string
	EncodeWorkers     int
	EncodeTimeout     time.Duration

	// Matching thresholds
	SocialThreshold   float64
	MetaThreshold     float64
	AcademicThreshold float64

	// Conversation context
	ContextKeywords        int
	ContextTTL             time.Duration
	ContextCleanupInterval time.Duration
	ContextMaxEntries      int

	// Per-user rate limiting. A burst of zero or less disables it.
	RateLimitBurst    int
	RateLimitInterval time.Duration

	// CORS
	CORSAllowedOrigins []string

	// Observability
	SentryDSN           string
	SentryEnvironment   string
	BetterStackToken    string
	BetterStackEndpoint string
	MetricsUsername     string
	MetricsPassword     string
}

// Load reads configuration from the environment. A .env file, when
// present, is loaded first without overriding variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),

		DataDir:      getEnv("DATA_DIR", "./data"),
		FAQDataDir:   getEnv("FAQ_DATA_DIR", "./faq_data"),
		SQLiteDBName: getEnv("SQLITE_DB_NAME", "embeddings.db"),

		EmbeddingProvider: strings.ToLower(getEnv("EMBEDDING_PROVIDER", "gemini")),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", ""), // empty selects the provider's default
		EncodeWorkers:     getIntEnv("ENCODE_WORKERS", 2),
		EncodeTimeout:     getDurationEnv("ENCODE_TIMEOUT", 30*time.Second),

		SocialThreshold:   getFloatEnv("SOCIAL_THRESHOLD", 0.70),
		MetaThreshold:     getFloatEnv("META_THRESHOLD", 0.60),
		AcademicThreshold: getFloatEnv("ACADEMIC_THRESHOLD", 0.55),

		ContextKeywords:        getIntEnv("CONTEXT_KEYWORDS", 5),
		ContextTTL:             getDurationEnv("CONTEXT_TTL", 30*time.Minute),
		ContextCleanupInterval: getDurationEnv("CONTEXT_CLEANUP_INTERVAL", 5*time.Minute),
		ContextMaxEntries:      getIntEnv("CONTEXT_MAX_ENTRIES", 10000),

		RateLimitBurst:    getIntEnv("RATE_LIMIT_BURST", 5),
		RateLimitInterval: getDurationEnv("RATE_LIMIT_INTERVAL", time.Second),

		CORSAllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),

		SentryDSN:           getEnv("SENTRY_DSN", ""),
		SentryEnvironment:   getEnv("SENTRY_ENVIRONMENT", "production"),
		BetterStackToken:    getEnv("BETTERSTACK_TOKEN", ""),
		BetterStackEndpoint: getEnv("BETTERSTACK_ENDPOINT", ""),
		MetricsUsername:     getEnv("METRICS_USERNAME", ""),
		MetricsPassword:     getEnv("METRICS_PASSWORD", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration consistency. All problems are reported
// at once so a misconfigured deployment fails with a complete picture.
func (c *Config) Validate() error {
	var errs []error

	switch c.EmbeddingProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when EMBEDDING_PROVIDER=gemini"))
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when EMBEDDING_PROVIDER=openai"))
		}
	case "deterministic":
		// offline provider, no credentials
	default:
		errs = append(errs, fmt.Errorf("unknown EMBEDDING_PROVIDER %q", c.EmbeddingProvider))
	}

	if c.EncodeWorkers < 1 {
		errs = append(errs, errors.New("ENCODE_WORKERS must be at least 1"))
	}

	for name, v := range map[string]float64{
		"SOCIAL_THRESHOLD":   c.SocialThreshold,
		"META_THRESHOLD":     c.MetaThreshold,
		"ACADEMIC_THRESHOLD": c.AcademicThreshold,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", name, v))
		}
	}
	if c.AcademicThreshold > c.MetaThreshold || c.MetaThreshold > c.SocialThreshold {
		errs = append(errs, errors.New("thresholds must satisfy ACADEMIC <= META <= SOCIAL"))
	}

	if c.ContextKeywords < 1 {
		errs = append(errs, errors.New("CONTEXT_KEYWORDS must be at least 1"))
	}
	if c.ContextMaxEntries < 1 {
		errs = append(errs, errors.New("CONTEXT_MAX_ENTRIES must be at least 1"))
	}
	if c.RateLimitBurst > 0 && c.RateLimitInterval <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_INTERVAL must be positive when rate limiting is enabled"))
	}

	if (c.MetricsUsername == "") != (c.MetricsPassword == "") {
		errs = append(errs, errors.New("METRICS_USERNAME and METRICS_PASSWORD must be set together"))
	}

	return errors.Join(errs...)
}

// SQLitePath returns the full path to the embedding cache database.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, c.SQLiteDBName)
}

// IntentsPath returns the path to the intent phrase corpus file.
func (c *Config) IntentsPath() string {
	return filepath.Join(c.FAQDataDir, "intents.json")
}

// ResponsesPath returns the path to the FAQ response store file.
func (c *Config) ResponsesPath() string {
	return filepath.Join(c.FAQDataDir, "data.json")
}

// ExtrasPath returns the path to the conversational extras file.
func (c *Config) ExtrasPath() string {
	return filepath.Join(c.FAQDataDir, "extras.json")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getSliceEnv(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
