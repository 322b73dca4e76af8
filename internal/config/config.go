package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	DatabasePath string
	JWTSecret    string

	// Scheduler
	Workers            int
	ScanInterval       time.Duration
	CheckRetentionDays int
	RedisAddr          string

	// Outbound notification channels
	SMTP     SMTPConfig
	Pushover PushoverConfig

	// BaseURL is used to build deep links in notifications.
	BaseURL string
}

// SMTPConfig holds the mail relay used by the email channel.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
}

// PushoverConfig carries the process-wide Pushover credentials. These take
// priority over per-user stored credentials when validly shaped.
type PushoverConfig struct {
	UserKey  string
	APIToken string
	Endpoint string
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:        getEnv("LOOKOUT_ENV", "development"),
		HTTPPort:           getEnv("LOOKOUT_HTTP_PORT", "8080"),
		DatabasePath:       getEnv("LOOKOUT_DB_PATH", filepath.Join("data", "lookout.db")),
		JWTSecret:          getEnv("LOOKOUT_JWT_SECRET", ""),
		Workers:            getEnvInt("LOOKOUT_WORKERS", 8),
		ScanInterval:       getEnvDuration("LOOKOUT_SCAN_INTERVAL", time.Minute),
		CheckRetentionDays: getEnvInt("LOOKOUT_CHECK_RETENTION_DAYS", 0),
		RedisAddr:          getEnv("LOOKOUT_REDIS_ADDR", ""),
		BaseURL:            getEnv("LOOKOUT_BASE_URL", "http://localhost:8080"),
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvInt("SMTP_PORT", 587),
			Username:    getEnv("SMTP_USERNAME", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			FromAddress: getEnv("SMTP_FROM", "lookout@localhost"),
		},
		Pushover: PushoverConfig{
			UserKey:  getEnv("PUSHOVER_USER_KEY", ""),
			APIToken: getEnv("PUSHOVER_API_TOKEN", ""),
			Endpoint: getEnv("PUSHOVER_ENDPOINT", "https://api.pushover.net/1/messages.json"),
		},
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}

	return fallback
}
