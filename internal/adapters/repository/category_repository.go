package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/ports"
)

// CategoryRepositoryImpl implements the CategoryRepository interface
type CategoryRepositoryImpl struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sqlx.DB) ports.CategoryRepository {
	return &CategoryRepositoryImpl{db: db}
}

func (r *CategoryRepositoryImpl) Create(ctx context.Context, category *entities.Category) error {
	query := `
		INSERT INTO categories (name, user_id, color, is_global)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	if category.Color == "" {
		category.Color = "#FFFFFF"
	}

	err := r.db.QueryRowContext(ctx, query,
		category.Name, category.UserID, category.Color, category.IsGlobal,
	).Scan(&category.ID, &category.CreatedAt)

	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

func (r *CategoryRepositoryImpl) GetByID(ctx context.Context, id int) (*entities.Category, error) {
	query := `SELECT id, name, user_id, color, is_global, created_at FROM categories WHERE id = $1`

	var category entities.Category
	err := r.db.GetContext(ctx, &category, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category by id: %w", err)
	}

	return &category, nil
}

func (r *CategoryRepositoryImpl) Update(ctx context.Context, category *entities.Category) error {
	query := `
		UPDATE categories
		SET name = $2, color = $3, is_global = $4
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		category.ID, category.Name, category.Color, category.IsGlobal)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrCategoryNotFound
	}

	return nil
}

func (r *CategoryRepositoryImpl) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrCategoryNotFound
	}

	return nil
}

func (r *CategoryRepositoryImpl) ListVisible(ctx context.Context, userID uuid.UUID) ([]*entities.Category, error) {
	query := `
		SELECT id, name, user_id, color, is_global, created_at
		FROM categories
		WHERE user_id = $1 OR is_global = TRUE
		ORDER BY name`

	var categories []*entities.Category
	err := r.db.SelectContext(ctx, &categories, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepositoryImpl) Pin(ctx context.Context, userID uuid.UUID, categoryID int) error {
	query := `INSERT INTO user_categories (user_id, category_id) VALUES ($1, $2)`

	_, err := r.db.ExecContext(ctx, query, userID, categoryID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return entities.ErrAlreadyPinned
		}
		return fmt.Errorf("pin category: %w", err)
	}

	return nil
}

func (r *CategoryRepositoryImpl) Unpin(ctx context.Context, userID uuid.UUID, categoryID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_categories WHERE user_id = $1 AND category_id = $2`, userID, categoryID)
	if err != nil {
		return fmt.Errorf("unpin category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrCategoryNotFound
	}

	return nil
}

func (r *CategoryRepositoryImpl) ListPinned(ctx context.Context, userID uuid.UUID) ([]*entities.Category, error) {
	query := `
		SELECT c.id, c.name, c.user_id, c.color, c.is_global, c.created_at
		FROM categories c
		JOIN user_categories uc ON uc.category_id = c.id
		WHERE uc.user_id = $1
		ORDER BY c.name`

	var categories []*entities.Category
	err := r.db.SelectContext(ctx, &categories, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list pinned categories: %w", err)
	}

	return categories, nil
}
