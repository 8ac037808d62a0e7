package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/pulsechat/pulse/internal/events"
	"github.com/pulsechat/pulse/internal/models"
	"github.com/pulsechat/pulse/internal/repositories"
)

// In-memory fakes standing in for Postgres, Redis and the bus so service
// semantics can be tested without infrastructure.

type fakePresenceStore struct {
	mu         sync.Mutex
	records    map[string]models.PresenceRecord
	getCalls   int
	failUpsert bool
}

func newFakePresenceStore() *fakePresenceStore {
	return &fakePresenceStore{records: make(map[string]models.PresenceRecord)}
}

func (f *fakePresenceStore) Upsert(ctx context.Context, record *models.PresenceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpsert {
		return errors.New("store unavailable")
	}
	f.records[record.UserID] = *record
	return nil
}

func (f *fakePresenceStore) GetByUserID(ctx context.Context, userID string) (*models.PresenceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	record, ok := f.records[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &record, nil
}

type fakePresenceCache struct {
	mu      sync.Mutex
	entries map[string]models.PresenceRecord
	touched []string
	failSet bool
	failAll bool
}

func newFakePresenceCache() *fakePresenceCache {
	return &fakePresenceCache{entries: make(map[string]models.PresenceRecord)}
}

func (f *fakePresenceCache) Set(ctx context.Context, record *models.PresenceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet || f.failAll {
		return errors.New("cache unavailable")
	}
	f.entries[record.UserID] = *record
	return nil
}

func (f *fakePresenceCache) Get(ctx context.Context, userID string) (*models.PresenceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errors.New("cache unavailable")
	}
	record, ok := f.entries[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &record, nil
}

func (f *fakePresenceCache) GetBulk(ctx context.Context, userIDs []string) ([]*models.PresenceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errors.New("cache unavailable")
	}
	records := make([]*models.PresenceRecord, len(userIDs))
	for i, id := range userIDs {
		if record, ok := f.entries[id]; ok {
			r := record
			records[i] = &r
		}
	}
	return records, nil
}

func (f *fakePresenceCache) Touch(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("cache unavailable")
	}
	if _, ok := f.entries[userID]; ok {
		f.touched = append(f.touched, userID)
	}
	return nil
}

func (f *fakePresenceCache) Delete(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, userID)
	return nil
}

// evict simulates TTL expiry of a single entry.
func (f *fakePresenceCache) evict(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, userID)
}

type publishedEvent struct {
	Topic     string
	EventType string
	Payload   events.Payload
}

type fakePublisher struct {
	mu        sync.Mutex
	published []publishedEvent
	fail      bool
}

func (f *fakePublisher) Publish(ctx context.Context, topic, eventType string, payload events.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("bus unavailable")
	}
	f.published = append(f.published, publishedEvent{Topic: topic, EventType: eventType, Payload: payload})
	return nil
}

func (f *fakePublisher) events() []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedEvent(nil), f.published...)
}

type fakeNotificationRepo struct {
	mu         sync.Mutex
	created    []*models.Notification
	failCreate bool
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return errors.New("store unavailable")
	}
	n.ID = uuid.New()
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, id uuid.UUID, userID string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.created {
		if n.ID == id && n.UserID == userID {
			return n, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeNotificationRepo) List(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]*models.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []*models.Notification
	for _, n := range f.created {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		matched = append(matched, n)
	}
	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID, userID string) (*models.Notification, error) {
	n, err := f.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n.Read = true
	return n, nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	subset := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		subset[id] = true
	}
	for _, n := range f.created {
		if n.UserID != userID {
			continue
		}
		if len(ids) > 0 && !subset[n.ID] {
			continue
		}
		n.Read = true
	}
	return nil
}

func (f *fakeNotificationRepo) UnreadCount(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.created {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.created {
		if n.ID == id && n.UserID == userID {
			f.created = append(f.created[:i], f.created[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}
