// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration values for the assistant service.
type Config struct {
	HTTPAddress string
	HTTPTimeout time.Duration

	OpenAIAPIKey   string
	OpenAIBaseURL  string
	Model          string
	EmbeddingModel string
	MaxRetries     int

	JWTSecret string
	JWTIssuer string

	KafkaBrokers []string
	EventsTopic  string

	StorageDir      string
	StorageFilename string
	HistoryLimit    int
	StorageDisabled bool
}

// Load reads a .env file when present, then environment variables, applying
// defaults.
func Load() Config {
	// Matches the behavior of dotenv-style local development setups; a
	// missing .env file is not an error.
	_ = godotenv.Load()

	return Config{
		HTTPAddress: getEnv("HTTP_ADDRESS", ":8080"),
		HTTPTimeout: getDurationEnv("HTTP_TIMEOUT", 60*time.Second),

		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:          getEnv("GYM_ASSISTANT_MODEL", "gpt-4o"),
		EmbeddingModel: getEnv("GYM_ASSISTANT_EMBEDDING_MODEL", "text-embedding-3-large"),
		MaxRetries:     getIntEnv("GYM_ASSISTANT_MAX_RETRIES", 3),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer: getEnv("JWT_ISSUER", "gym-assistant"),

		KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		EventsTopic:  getEnv("EVENTS_TOPIC", "plan_events"),

		StorageDir:      getEnv("GYM_ASSISTANT_STORAGE_DIR", defaultStorageDir()),
		StorageFilename: getEnv("GYM_ASSISTANT_STORAGE_FILE", "state.json"),
		HistoryLimit:    getIntEnv("GYM_ASSISTANT_HISTORY_LIMIT", 20),
		StorageDisabled: getBoolEnv("GYM_ASSISTANT_DISABLE_STORAGE", false),
	}
}

func defaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gym_assistant"
	}
	return filepath.Join(home, ".gym_assistant")
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
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

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
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
