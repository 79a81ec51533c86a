package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	AppEnv    string
	Port      string
	RedisURL  string
	LogLevel  string
	LogFormat string

	// NotifyWebhookURL is the optional external notification sink. Empty
	// means notifications are logged only.
	NotifyWebhookURL string

	// RetentionDays controls how much daily-usage and break history is kept.
	RetentionDays int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		RedisURL:         getEnv("REDIS_URL", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		NotifyWebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		RetentionDays:    30,
	}

	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 1 {
			return nil, fmt.Errorf("RETENTION_DAYS must be a positive integer, got %q", v)
		}
		cfg.RetentionDays = days
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
