package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Local HTTP surface
	Port           int
	LogLevel       string
	AllowedOrigins []string

	// Remote platform API
	APIBaseURL  string
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Stores
	AdminPollInterval time.Duration
	NotifyTTL         time.Duration
	WithdrawalDay     time.Weekday

	// Session persistence
	SessionFile    string
	SessionSealKey string

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:           getEnvInt("PORT", 8184),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		APIBaseURL:  strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5005"), "/"),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),

		AdminPollInterval: getEnvDuration("ADMIN_POLL_INTERVAL", 10*time.Second),
		NotifyTTL:         getEnvDuration("NOTIFY_TTL", 3*time.Second),
		WithdrawalDay:     getEnvWeekday("WITHDRAWAL_DAY", time.Saturday),

		SessionFile:    getEnv("SESSION_FILE", "dashboard-session.bin"),
		SessionSealKey: getEnv("SESSION_SEAL_KEY", ""),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func getEnvWeekday(key string, fallback time.Weekday) time.Weekday {
	if v := os.Getenv(key); v != "" {
		if d, ok := weekdays[strings.ToLower(v)]; ok {
			return d
		}
	}
	return fallback
}
