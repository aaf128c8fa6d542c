package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/ports"
)

// CommentRepositoryImpl implements the CommentRepository interface
type CommentRepositoryImpl struct {
	db *sqlx.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *sqlx.DB) ports.CommentRepository {
	return &CommentRepositoryImpl{db: db}
}

func (r *CommentRepositoryImpl) Create(ctx context.Context, comment *entities.Comment) error {
	query := `
		INSERT INTO comments (task_id, user_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		comment.TaskID, comment.UserID, comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt)

	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

func (r *CommentRepositoryImpl) GetByID(ctx context.Context, id int) (*entities.Comment, error) {
	query := `SELECT id, task_id, user_id, body, created_at FROM comments WHERE id = $1`

	var comment entities.Comment
	err := r.db.GetContext(ctx, &comment, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrCommentNotFound
		}
		return nil, fmt.Errorf("get comment by id: %w", err)
	}

	return &comment, nil
}

func (r *CommentRepositoryImpl) Update(ctx context.Context, comment *entities.Comment) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE comments SET body = $2 WHERE id = $1`, comment.ID, comment.Body)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrCommentNotFound
	}

	return nil
}

func (r *CommentRepositoryImpl) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrCommentNotFound
	}

	return nil
}

func (r *CommentRepositoryImpl) ListByTask(ctx context.Context, taskID int) ([]*entities.Comment, error) {
	query := `
		SELECT id, task_id, user_id, body, created_at
		FROM comments
		WHERE task_id = $1
		ORDER BY created_at`

	var comments []*entities.Comment
	err := r.db.SelectContext(ctx, &comments, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return comments, nil
}
