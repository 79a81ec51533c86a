package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresRedisURL(t *testing.T) {
	t.Setenv("REDIS_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.NotifyWebhookURL)
	assert.Equal(t, 30, cfg.RetentionDays)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("NOTIFY_WEBHOOK_URL", "https://example.com/hook")
	t.Setenv("RETENTION_DAYS", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "https://example.com/hook", cfg.NotifyWebhookURL)
	assert.Equal(t, 7, cfg.RetentionDays)
}

func TestLoad_RejectsInvalidRetention(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	for _, invalid := range []string{"zero", "0", "-3"} {
		t.Setenv("RETENTION_DAYS", invalid)
		_, err := Load()
		assert.Error(t, err, invalid)
	}
}
