package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-only-change-me"

// Config holds the application configuration.
type Config struct {
	ServerPort       int
	DatabasePath     string
	JWTSecret        string
	TokenTTL         time.Duration
	AllowedOrigins   []string
	LogLevel         string
	LogFormat        string
	ReminderSchedule string
	ReminderLead     time.Duration
	LoginRateLimit   int // attempts per minute per client IP
	Environment      string
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	lead, err := time.ParseDuration(getEnv("REMINDER_LEAD", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_LEAD: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("LOGIN_RATE_LIMIT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
	}

	cfg := &Config{
		ServerPort:       port,
		DatabasePath:     getEnv("DATABASE_PATH", "./taskmaster.db"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenTTL:         ttl,
		AllowedOrigins:   allowedOrigins(),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "*/5 * * * *"),
		ReminderLead:     lead,
		LoginRateLimit:   rateLimit,
		Environment:      getEnv("APP_ENV", "development"),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("TOKEN_TTL must be positive")
	}
	if cfg.LoginRateLimit <= 0 {
		return nil, errors.New("LOGIN_RATE_LIMIT must be positive")
	}

	return cfg, nil
}

func allowedOrigins() []string {
	raw := getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://localhost:5174")
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		origins = append(origins, frontend)
	}
	return origins
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
