package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/ports"
)

// ActivityLogRepositoryImpl implements the ActivityLogRepository interface.
// The table is append-only: no update or delete is exposed.
type ActivityLogRepositoryImpl struct {
	db *sqlx.DB
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db *sqlx.DB) ports.ActivityLogRepository {
	return &ActivityLogRepositoryImpl{db: db}
}

func (r *ActivityLogRepositoryImpl) Create(ctx context.Context, entry *entities.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (user_id, action, object_id, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, timestamp`

	err := r.db.QueryRowContext(ctx, query,
		entry.UserID, entry.Action, entry.ObjectID, entry.Details,
	).Scan(&entry.ID, &entry.Timestamp)

	if err != nil {
		return fmt.Errorf("create activity log: %w", err)
	}

	return nil
}

func (r *ActivityLogRepositoryImpl) ListRecent(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]*entities.ActivityLog, error) {
	if limit <= 0 {
		limit = 15
	}

	query := `
		SELECT id, user_id, action, object_id, details, timestamp
		FROM activity_logs
		WHERE user_id = $1 AND timestamp >= $2
		ORDER BY timestamp DESC
		LIMIT $3`

	var entries []*entities.ActivityLog
	err := r.db.SelectContext(ctx, &entries, query, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent activity: %w", err)
	}

	return entries, nil
}

// NotificationRepositoryImpl implements the NotificationRepository interface
type NotificationRepositoryImpl struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sqlx.DB) ports.NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, n *entities.Notification) error {
	query := `
		INSERT INTO notifications (user_id, message, task_id)
		VALUES ($1, $2, $3)
		RETURNING id, read, created_at`

	err := r.db.QueryRowContext(ctx, query,
		n.UserID, n.Message, n.TaskID,
	).Scan(&n.ID, &n.Read, &n.CreatedAt)

	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

func (r *NotificationRepositoryImpl) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*entities.Notification, error) {
	query := `
		SELECT id, user_id, message, read, task_id, created_at
		FROM notifications
		WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	var notifications []*entities.Notification
	err := r.db.SelectContext(ctx, &notifications, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, nil
}

func (r *NotificationRepositoryImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID)
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}

	return nil
}

// AuthRepositoryImpl implements the AuthRepository interface
type AuthRepositoryImpl struct {
	db *sqlx.DB
}

// NewAuthRepository creates a new auth repository
func NewAuthRepository(db *sqlx.DB) ports.AuthRepository {
	return &AuthRepositoryImpl{db: db}
}

func (r *AuthRepositoryImpl) CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES ($1, $2, $3)`,
		userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}

	return nil
}

func (r *AuthRepositoryImpl) GetRefreshToken(ctx context.Context, tokenHash string) (*ports.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at, revoked_at
		FROM refresh_tokens
		WHERE token_hash = $1`

	var token ports.RefreshToken
	err := r.db.GetContext(ctx, &token, query, tokenHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("refresh token not found")
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}

	return &token, nil
}

func (r *AuthRepositoryImpl) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP WHERE token_hash = $1 AND revoked_at IS NULL`,
		tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	return nil
}

func (r *AuthRepositoryImpl) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP WHERE user_id = $1 AND revoked_at IS NULL`,
		userID)
	if err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}

	return nil
}
