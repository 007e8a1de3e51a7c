package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the LexMitra backend.
type Config struct {
	Port      int
	Version   string
	Database  DatabaseConfig
	AI        AIConfig
	Retrieval RetrievalConfig
	Telemetry TelemetryConfig

	// RetentionDays is how long chat history is kept before the
	// janitor purges it.
	RetentionDays int
}

type DatabaseConfig struct {
	// URL empty means run on the in-memory store.
	URL            string
	MaxConnections int
}

// AIConfig selects and configures the generation backend.
type AIConfig struct {
	// Backend is one of "openai", "anthropic", "gemini".
	Backend string
	APIKey  string
	Model   string
	BaseURL string
}

// RetrievalConfig configures embeddings for case document search.
type RetrievalConfig struct {
	// Driver is "gemini", "openai" or "" (retrieval disabled).
	Driver     string
	APIKey     string
	Dimensions int
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("LEXMITRA_PORT", 8080),
		Version: envStr("LEXMITRA_VERSION", "0.1.0"),
		Database: DatabaseConfig{
			URL:            envStr("DATABASE_URL", ""),
			MaxConnections: envInt("DATABASE_MAX_CONNECTIONS", 25),
		},
		AI: AIConfig{
			Backend: envStr("LEXMITRA_AI_BACKEND", "gemini"),
			APIKey:  envStr("LEXMITRA_AI_API_KEY", ""),
			Model:   envStr("LEXMITRA_AI_MODEL", ""),
			BaseURL: envStr("LEXMITRA_AI_BASE_URL", ""),
		},
		Retrieval: RetrievalConfig{
			Driver:     envStr("LEXMITRA_EMBEDDING_DRIVER", ""),
			APIKey:     envStr("LEXMITRA_EMBEDDING_API_KEY", ""),
			Dimensions: envInt("LEXMITRA_EMBEDDING_DIMENSIONS", 768),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", true),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "lexmitra-backend"),
		},
		RetentionDays: envInt("LEXMITRA_RETENTION_DAYS", 365),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
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
