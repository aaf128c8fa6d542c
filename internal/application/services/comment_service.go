package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/infrastructure/logger"
	"github.com/toodoo/core/internal/ports"
)

// CommentService handles task comment operations
type CommentService struct {
	commentRepo ports.CommentRepository
	taskRepo    ports.TaskRepository
	logger      *logger.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(commentRepo ports.CommentRepository, taskRepo ports.TaskRepository, logger *logger.Logger) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		logger:      logger,
	}
}

// AddComment adds a comment to a task visible to the actor
func (s *CommentService) AddComment(ctx context.Context, actor uuid.UUID, taskID int, body string) (*entities.Comment, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !task.VisibleTo(actor) {
		return nil, entities.ErrForbidden
	}

	comment := &entities.Comment{
		TaskID: taskID,
		UserID: &actor,
		Body:   body,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.logger.Info("Comment added", "comment_id", comment.ID, "task_id", taskID, "user_id", actor)

	return comment, nil
}

// EditComment edits a comment written by the actor
func (s *CommentService) EditComment(ctx context.Context, actor uuid.UUID, id int, body string) (*entities.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if comment.UserID == nil || *comment.UserID != actor {
		return nil, entities.ErrForbidden
	}

	comment.Body = body

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	s.logger.Info("Comment edited", "comment_id", id, "user_id", actor)

	return comment, nil
}

// DeleteComment deletes a comment written by the actor, or any comment on a
// task the actor owns.
func (s *CommentService) DeleteComment(ctx context.Context, actor uuid.UUID, id int) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	allowed := comment.UserID != nil && *comment.UserID == actor
	if !allowed {
		task, err := s.taskRepo.GetByID(ctx, comment.TaskID)
		if err != nil {
			return err
		}
		allowed = task.UserID == actor
	}
	if !allowed {
		return entities.ErrForbidden
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	s.logger.Info("Comment deleted", "comment_id", id, "user_id", actor)

	return nil
}

// ListComments lists the comments of a task visible to the actor
func (s *CommentService) ListComments(ctx context.Context, actor uuid.UUID, taskID int) ([]*entities.Comment, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !task.VisibleTo(actor) {
		return nil, entities.ErrForbidden
	}

	comments, err := s.commentRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}
