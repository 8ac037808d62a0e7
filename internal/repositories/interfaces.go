package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pulsechat/pulse/internal/models"
)

var ErrNotFound = errors.New("not found")

// PresenceStore is the durable, authoritative record of each user's last
// known status. Exactly one row per user; rows are never hard-deleted.
type PresenceStore interface {
	Upsert(ctx context.Context, record *models.PresenceRecord) error
	GetByUserID(ctx context.Context, userID string) (*models.PresenceRecord, error)
}

// PresenceCache is the fast read path. Entries expire after the presence TTL
// unless refreshed; an absent entry is a cache miss, not an offline signal.
type PresenceCache interface {
	Set(ctx context.Context, record *models.PresenceRecord) error
	Get(ctx context.Context, userID string) (*models.PresenceRecord, error)
	// GetBulk returns one entry per input id, in input order, with nil for
	// ids that have no cached value.
	GetBulk(ctx context.Context, userIDs []string) ([]*models.PresenceRecord, error)
	// Touch extends the TTL of an existing entry. Touching a missing key is
	// a harmless no-op.
	Touch(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID, userID string) (*models.Notification, error)
	List(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string, ids []uuid.UUID) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error
}
