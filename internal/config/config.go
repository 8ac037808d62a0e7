package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// DefaultPresenceTTLSeconds is fixed by the platform contract: a cached presence
// entry that receives no heartbeat for this long expires, and reads fall back
// to the durable store.
const DefaultPresenceTTLSeconds = 300

type Config struct {
	ServerPort    string
	DatabaseURL   string
	RedisURL      string
	NatsURL       string
	JWTSecret     string
	ConsumerGroup string
	PresenceTTL   time.Duration
}

func LoadConfig() (*Config, error) {
	ttlStr := getEnv("PRESENCE_TTL_SECONDS", strconv.Itoa(DefaultPresenceTTLSeconds))
	ttlSeconds, err := strconv.Atoi(ttlStr)
	if err != nil || ttlSeconds <= 0 {
		return nil, errors.New("invalid PRESENCE_TTL_SECONDS")
	}

	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		NatsURL:       getEnv("NATS_URL", "nats://localhost:4222"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		ConsumerGroup: getEnv("CONSUMER_GROUP", "notification-service-group"),
		PresenceTTL:   time.Duration(ttlSeconds) * time.Second,
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
