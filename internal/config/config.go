package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-level settings. It is loaded once in main and
// passed down explicitly; nothing else in the codebase reads the environment.
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret string

	// Timezone for deadline computation (business days are local days).
	Timezone *time.Location

	// Deferred-action worker settings.
	PollInterval time.Duration
	// AutoRejectURL is the workflow engine endpoint the worker calls back into.
	AutoRejectURL string
	// DirectoryBaseURL is the employee directory service base URL.
	DirectoryBaseURL string
}

// Load reads configs/.env if present, then the environment, applying the same
// development defaults as the rest of the stack.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", "postgres"),
		DBName:           getEnv("DB_NAME", "postgres"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AutoRejectURL:    getEnv("AUTO_REJECT_URL", "http://localhost:8080/api/requests/auto-reject"),
		DirectoryBaseURL: getEnv("DIRECTORY_BASE_URL", "http://localhost:5001"),
	}

	tzName := getEnv("TIMEZONE", "Asia/Singapore")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}
	cfg.Timezone = loc

	interval := getEnv("SCHEDULER_POLL_INTERVAL", "15s")
	cfg.PollInterval, err = time.ParseDuration(interval)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_POLL_INTERVAL %q: %w", interval, err)
	}

	return cfg, nil
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort +
		"/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
