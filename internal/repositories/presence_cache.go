package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pulsechat/pulse/internal/models"
	"github.com/redis/go-redis/v9"
)

const presenceKeyPrefix = "presence:"

type RedisPresenceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPresenceCache(client *redis.Client, ttl time.Duration) *RedisPresenceCache {
	return &RedisPresenceCache{client: client, ttl: ttl}
}

// Set caches the record and resets its TTL. Concurrent writers for the same
// user are last-write-wins, which is fine for presence.
func (r *RedisPresenceCache) Set(ctx context.Context, record *models.PresenceRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal presence: %w", err)
	}

	err = r.client.Set(ctx, presenceKey(record.UserID), data, r.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set presence: %w", err)
	}
	return nil
}

func (r *RedisPresenceCache) Get(ctx context.Context, userID string) (*models.PresenceRecord, error) {
	data, err := r.client.Get(ctx, presenceKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get presence: %w", err)
	}

	var record models.PresenceRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presence: %w", err)
	}
	return &record, nil
}

// GetBulk fetches all keys in a single MGET round trip. The result has one
// slot per input id, in input order; ids with no cached entry (or an
// undecodable one) come back nil.
func (r *RedisPresenceCache) GetBulk(ctx context.Context, userIDs []string) ([]*models.PresenceRecord, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = presenceKey(id)
	}

	results, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bulk presence: %w", err)
	}

	records := make([]*models.PresenceRecord, len(userIDs))
	for i, result := range results {
		data, ok := result.(string)
		if !ok {
			continue
		}
		var record models.PresenceRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			continue
		}
		records[i] = &record
	}
	return records, nil
}

// Touch slides the TTL forward without rewriting the value. EXPIRE on a
// missing key returns false, which is deliberately not an error: a heartbeat
// for a user with no cached entry is harmless.
func (r *RedisPresenceCache) Touch(ctx context.Context, userID string) error {
	err := r.client.Expire(ctx, presenceKey(userID), r.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to extend presence TTL: %w", err)
	}
	return nil
}

func (r *RedisPresenceCache) Delete(ctx context.Context, userID string) error {
	err := r.client.Del(ctx, presenceKey(userID)).Err()
	if err != nil {
		return fmt.Errorf("failed to delete presence: %w", err)
	}
	return nil
}

// Helper: build Redis key for presence
func presenceKey(userID string) string {
	return presenceKeyPrefix + userID
}
