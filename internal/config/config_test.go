package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/pulse")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "nats://localhost:4222", cfg.NatsURL)
	assert.Equal(t, "notification-service-group", cfg.ConsumerGroup)
	assert.Equal(t, 300*time.Second, cfg.PresenceTTL)
}

func TestLoadConfig_MissingDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")

	_, err := LoadConfig()

	require.Error(t, err)
}

func TestLoadConfig_MissingJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()

	require.Error(t, err)
}

func TestLoadConfig_CustomTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PRESENCE_TTL_SECONDS", "60")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.PresenceTTL)
}

func TestLoadConfig_InvalidTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PRESENCE_TTL_SECONDS", "soon")

	_, err := LoadConfig()

	require.Error(t, err)
}
