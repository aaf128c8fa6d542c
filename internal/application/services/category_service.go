package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/infrastructure/logger"
	"github.com/toodoo/core/internal/ports"
)

// CategoryService handles category management operations
type CategoryService struct {
	categoryRepo ports.CategoryRepository
	emitter      ports.ActivityEmitter
	logger       *logger.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo ports.CategoryRepository, emitter ports.ActivityEmitter, logger *logger.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		emitter:      emitter,
		logger:       logger,
	}
}

// CreateCategory creates a new category owned by the actor
func (s *CategoryService) CreateCategory(ctx context.Context, actor uuid.UUID, req ports.CreateCategoryRequest) (*entities.Category, error) {
	category := &entities.Category{
		Name:   req.Name,
		UserID: actor,
		Color:  req.Color,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created successfully", "category_id", category.ID, "name", category.Name, "user_id", actor)

	s.emitter.CategoryCreated(ctx, category)

	return category, nil
}

// UpdateCategory updates a category owned by the actor
func (s *CategoryService) UpdateCategory(ctx context.Context, actor uuid.UUID, id int, req ports.UpdateCategoryRequest) (*entities.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if category.UserID != actor {
		return nil, entities.ErrForbidden
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Color != nil {
		category.Color = *req.Color
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Info("Category updated successfully", "category_id", id, "user_id", actor)

	s.emitter.CategoryUpdated(ctx, category)

	return category, nil
}

// DeleteCategory deletes a category owned by the actor. Tasks referencing it
// keep existing with the reference cleared by the schema.
func (s *CategoryService) DeleteCategory(ctx context.Context, actor uuid.UUID, id int) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if category.UserID != actor {
		return entities.ErrForbidden
	}

	snapshot := *category

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info("Category deleted successfully", "category_id", id, "user_id", actor)

	s.emitter.CategoryDeleted(ctx, &snapshot)

	return nil
}

// ListCategories lists the actor's own categories plus the global ones
func (s *CategoryService) ListCategories(ctx context.Context, actor uuid.UUID) ([]*entities.Category, error) {
	categories, err := s.categoryRepo.ListVisible(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// PinCategory pins a visible category to the actor's sidebar
func (s *CategoryService) PinCategory(ctx context.Context, actor uuid.UUID, id int) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !category.IsGlobal && category.UserID != actor {
		return entities.ErrForbidden
	}

	if err := s.categoryRepo.Pin(ctx, actor, id); err != nil {
		return err
	}

	s.logger.Info("Category pinned", "category_id", id, "user_id", actor)

	return nil
}

// UnpinCategory removes a category from the actor's sidebar
func (s *CategoryService) UnpinCategory(ctx context.Context, actor uuid.UUID, id int) error {
	if err := s.categoryRepo.Unpin(ctx, actor, id); err != nil {
		return err
	}

	s.logger.Info("Category unpinned", "category_id", id, "user_id", actor)

	return nil
}

// SetGlobal toggles the global flag on a category owned by the actor
func (s *CategoryService) SetGlobal(ctx context.Context, actor uuid.UUID, id int, global bool) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if category.UserID != actor {
		return entities.ErrForbidden
	}

	if category.IsGlobal == global {
		return nil
	}

	category.IsGlobal = global

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Info("Category global flag changed", "category_id", id, "is_global", global, "user_id", actor)

	s.emitter.CategoryUpdated(ctx, category)

	return nil
}
