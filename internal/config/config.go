package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// DefaultSessionSigningKey is the development fallback for SESSION_SIGNING_KEY.
const DefaultSessionSigningKey = "change-this-to-a-secure-random-string"

// ErrDefaultSigningKey is returned by CheckSigningKey in release mode.
var ErrDefaultSigningKey = errors.New("SESSION_SIGNING_KEY must be set when GIN_MODE=release")

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// SurveySecret is the plaintext gate password. SurveySecretHash, when set,
	// takes precedence and holds a bcrypt hash of the same password.
	SurveySecret     string
	SurveySecretHash string
	BcryptCost       int

	SessionStore      string
	RedisURL          string
	SessionSigningKey string
	SessionTTL        time.Duration

	// SubmitRatePerMinute caps survey submissions per client. Zero disables the limit.
	SubmitRatePerMinute int

	// AllowedOrigins controls HTTP CORS.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		GinMode:             getEnv("GIN_MODE", "debug"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "pretty"),
		SurveySecret:        os.Getenv("SURVEY_SECRET"),
		SurveySecretHash:    os.Getenv("SURVEY_SECRET_HASH"),
		BcryptCost:          getEnvInt("BCRYPT_COST", 10),
		SessionStore:        strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory)),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionSigningKey:   getEnv("SESSION_SIGNING_KEY", DefaultSessionSigningKey),
		SessionTTL:          time.Duration(getEnvInt("SESSION_TTL_HOURS", 12)) * time.Hour,
		SubmitRatePerMinute: getEnvInt("SUBMIT_RATE_PER_MINUTE", 60),
		AllowedOrigins:      parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

// UsesDefaultSigningKey reports whether session tokens are signed with the
// publicly known development key.
func (c *Config) UsesDefaultSigningKey() bool {
	return c.SessionSigningKey == DefaultSessionSigningKey
}

// CheckSigningKey refuses the development key in release mode.
func (c *Config) CheckSigningKey() error {
	if c.UsesDefaultSigningKey() && c.GinMode == "release" {
		return ErrDefaultSigningKey
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
