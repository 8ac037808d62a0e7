package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulsechat/pulse/internal/models"
)

type PostgresPresenceStore struct {
	pool *pgxpool.Pool
}

func NewPostgresPresenceStore(pool *pgxpool.Pool) *PostgresPresenceStore {
	return &PostgresPresenceStore{pool: pool}
}

// Upsert writes the authoritative presence row, creating it on first status
// update. user_id carries a unique constraint, so concurrent writers for the
// same user resolve last-write-wins at the row level.
func (r *PostgresPresenceStore) Upsert(ctx context.Context, record *models.PresenceRecord) error {
	query := `INSERT INTO presence (user_id, status, last_seen_at)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (user_id)
	          DO UPDATE SET status = EXCLUDED.status,
	                        last_seen_at = EXCLUDED.last_seen_at,
	                        updated_at = NOW()`

	_, err := r.pool.Exec(ctx, query, record.UserID, record.Status, record.LastSeenAt)
	if err != nil {
		return fmt.Errorf("failed to upsert presence: %w", err)
	}
	return nil
}

func (r *PostgresPresenceStore) GetByUserID(ctx context.Context, userID string) (*models.PresenceRecord, error) {
	query := `SELECT user_id, status, last_seen_at FROM presence WHERE user_id = $1`

	var record models.PresenceRecord
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&record.UserID,
		&record.Status,
		&record.LastSeenAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get presence: %w", err)
	}
	return &record, nil
}
