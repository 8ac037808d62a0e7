package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulsechat/pulse/internal/models"
)

type PostgresNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresNotificationRepository(pool *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{pool: pool}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	query := `INSERT INTO notifications (user_id, type, title, message, data)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, read, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		notification.UserID,
		notification.Type,
		notification.Title,
		notification.Message,
		notification.Data,
	).Scan(&notification.ID, &notification.Read, &notification.CreatedAt, &notification.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) GetByID(ctx context.Context, id uuid.UUID, userID string) (*models.Notification, error) {
	query := `SELECT id, user_id, type, title, message, data, read, read_at, created_at, updated_at
	          FROM notifications
	          WHERE id = $1 AND user_id = $2`

	var n models.Notification
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.Data,
		&n.Read,
		&n.ReadAt,
		&n.CreatedAt,
		&n.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &n, nil
}

// List returns one page of a user's notifications, newest first, plus the
// total row count for the filter.
func (r *PostgresNotificationRepository) List(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]*models.Notification, int64, error) {
	filter := ""
	if unreadOnly {
		filter = " AND read = FALSE"
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM notifications WHERE user_id = $1` + filter
	if err := r.pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := `SELECT id, user_id, type, title, message, data, read, read_at, created_at, updated_at
	          FROM notifications
	          WHERE user_id = $1` + filter + `
	          ORDER BY created_at DESC
	          LIMIT $2 OFFSET $3`

	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.Data,
			&n.Read,
			&n.ReadAt,
			&n.CreatedAt,
			&n.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, total, nil
}

// MarkRead flips one notification to read. Already-read notifications are
// returned unchanged, keeping the operation idempotent.
func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID, userID string) (*models.Notification, error) {
	existing, err := r.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if existing.Read {
		return existing, nil
	}

	query := `UPDATE notifications
	          SET read = TRUE, read_at = NOW(), updated_at = NOW()
	          WHERE id = $1 AND user_id = $2
	          RETURNING read, read_at, updated_at`

	err = r.pool.QueryRow(ctx, query, id, userID).Scan(&existing.Read, &existing.ReadAt, &existing.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return existing, nil
}

// MarkAllRead marks the user's unread notifications as read. A non-empty ids
// slice restricts the update to that subset.
func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, userID string, ids []uuid.UUID) error {
	query := `UPDATE notifications
	          SET read = TRUE, read_at = NOW(), updated_at = NOW()
	          WHERE user_id = $1 AND read = FALSE`
	args := []interface{}{userID}

	if len(ids) > 0 {
		query += ` AND id = ANY($2)`
		args = append(args, ids)
	}

	_, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`

	var count int64
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (r *PostgresNotificationRepository) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	query := `DELETE FROM notifications WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
