package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pulsechat/pulse/internal/models"
	"github.com/pulsechat/pulse/internal/repositories"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// NotificationService exposes the read/query side of notifications to the
// gateway. Writes come only from the event materializer, which owns record
// creation; this service owns read-state transitions and deletion.
type NotificationService struct {
	repo repositories.NotificationRepository
}

func NewNotificationService(repo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID string, page, limit int, unreadOnly bool) (*models.NotificationPage, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}

	notifications, total, err := s.repo.List(ctx, userID, page, limit, unreadOnly)
	if err != nil {
		return nil, err
	}

	unreadCount := total
	if !unreadOnly {
		unreadCount, err = s.repo.UnreadCount(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &models.NotificationPage{
		Data:        notifications,
		Total:       total,
		Page:        page,
		TotalPages:  totalPages,
		UnreadCount: unreadCount,
	}, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID, userID string) (*models.Notification, error) {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string, ids []uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID, ids)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *NotificationService) DeleteNotification(ctx context.Context, id uuid.UUID, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}
