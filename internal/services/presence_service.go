package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pulsechat/pulse/internal/events"
	"github.com/pulsechat/pulse/internal/models"
	"github.com/pulsechat/pulse/internal/repositories"
)

var ErrInvalidStatus = errors.New("invalid presence status")

// EventPublisher is the slice of the event bus producer the services need.
type EventPublisher interface {
	Publish(ctx context.Context, topic, eventType string, payload events.Payload) error
}

// PresenceService orchestrates the durable presence store and the TTL cache.
// Postgres is the authority: its write must succeed before anything else
// happens, and its failure fails the operation. The cache and the event bus
// are best-effort accelerators whose failures are logged, never surfaced.
type PresenceService struct {
	store     repositories.PresenceStore
	cache     repositories.PresenceCache
	publisher EventPublisher
}

func NewPresenceService(
	store repositories.PresenceStore,
	cache repositories.PresenceCache,
	publisher EventPublisher,
) *PresenceService {
	return &PresenceService{
		store:     store,
		cache:     cache,
		publisher: publisher,
	}
}

// UpdatePresence records a status transition: durable upsert, then cache
// refresh, then a presence.updated event keyed by the user.
func (s *PresenceService) UpdatePresence(ctx context.Context, userID string, status models.PresenceStatus) (*models.PresenceRecord, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	now := time.Now().UTC()
	record := &models.PresenceRecord{
		UserID:     userID,
		Status:     status,
		LastSeenAt: &now,
	}

	// Source of truth first — nothing downstream happens if this fails.
	if err := s.store.Upsert(ctx, record); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, record); err != nil {
		slog.Warn("Failed to cache presence", "user", userID, "error", err)
	}

	err := s.publisher.Publish(ctx, events.TopicPresenceUpdated, events.TopicPresenceUpdated, events.PresenceUpdatedData{
		UserID:     userID,
		Status:     status,
		LastSeenAt: &now,
	})
	if err != nil {
		slog.Warn("Failed to publish presence.updated event", "user", userID, "error", err)
	}

	slog.Info("Presence updated", "user", userID, "status", status)
	return record, nil
}

// GetPresence reads through the cache. A miss falls back to the store and
// backfills the cache; a user with no row at all resolves to a synthetic
// OFFLINE record with no lastSeenAt — absence is not an error and creates
// nothing.
func (s *PresenceService) GetPresence(ctx context.Context, userID string) (*models.PresenceRecord, error) {
	cached, err := s.cache.Get(ctx, userID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		// Cache trouble degrades to the authoritative path.
		slog.Warn("Presence cache read failed, falling back to store", "user", userID, "error", err)
	}

	record, err := s.store.GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.PresenceRecord{
			UserID:     userID,
			Status:     models.StatusOffline,
			LastSeenAt: nil,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, record); err != nil {
		slog.Warn("Failed to backfill presence cache", "user", userID, "error", err)
	}
	return record, nil
}

// GetBulkPresence serves many users from a single cache round trip. Misses
// are synthesized as OFFLINE inline with no store fallback: this path trades
// perfect consistency for latency. Results match the input order.
func (s *PresenceService) GetBulkPresence(ctx context.Context, userIDs []string) ([]*models.PresenceRecord, error) {
	cached, err := s.cache.GetBulk(ctx, userIDs)
	if err != nil {
		slog.Warn("Bulk presence cache read failed, synthesizing offline", "users", len(userIDs), "error", err)
		cached = make([]*models.PresenceRecord, len(userIDs))
	}

	records := make([]*models.PresenceRecord, len(userIDs))
	for i, userID := range userIDs {
		if i < len(cached) && cached[i] != nil {
			records[i] = cached[i]
			continue
		}
		records[i] = &models.PresenceRecord{
			UserID:     userID,
			Status:     models.StatusOffline,
			LastSeenAt: nil,
		}
	}
	return records, nil
}

// Heartbeat extends the cache TTL for an active user. It touches neither the
// store nor the bus, and heartbeating a user with no cached entry is a no-op.
//
// Known gap, kept deliberately: a client that stops heartbeating without an
// explicit offline call only expires from the cache — the durable row stays
// at its last status forever. Reads still degrade correctly via the cache
// miss, but there is no sweep that flips the durable row to OFFLINE.
func (s *PresenceService) Heartbeat(ctx context.Context, userID string) error {
	if err := s.cache.Touch(ctx, userID); err != nil {
		slog.Warn("Failed to extend presence TTL", "user", userID, "error", err)
	}
	return nil
}

// SetOffline is sugar for an explicit OFFLINE transition.
func (s *PresenceService) SetOffline(ctx context.Context, userID string) (*models.PresenceRecord, error) {
	return s.UpdatePresence(ctx, userID, models.StatusOffline)
}
