package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/infrastructure/logger"
	"github.com/toodoo/core/internal/ports"
)

// ActivityService records audit entries and assignment notifications for
// task and category mutations. Emission runs after the primary write has
// committed; failures here are logged and swallowed so they can never undo
// or fail the mutation itself.
type ActivityService struct {
	activityRepo     ports.ActivityLogRepository
	notificationRepo ports.NotificationRepository
	logger           *logger.Logger
}

// NewActivityService creates a new activity emitter
func NewActivityService(activityRepo ports.ActivityLogRepository, notificationRepo ports.NotificationRepository, logger *logger.Logger) *ActivityService {
	return &ActivityService{
		activityRepo:     activityRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// TaskCreated records the task_add entry and notifies the assignee when the
// task was created already assigned.
func (s *ActivityService) TaskCreated(ctx context.Context, task *entities.Task) {
	s.record(ctx, task.UserID, entities.ActionTaskAdd, task.ID, task.Title)

	if task.AssignedTo != nil && *task.AssignedTo != task.UserID {
		s.notify(ctx, *task.AssignedTo, fmt.Sprintf("You have been assigned to: '%s'", task.Title), &task.ID)
	}
}

// TaskUpdated records task_complete when the task is completed after the
// update and task_update otherwise, then diffs the assignee pair and notifies
// both sides of an assignment change.
func (s *ActivityService) TaskUpdated(ctx context.Context, prev, task *entities.Task) {
	action := entities.ActionTaskUpdate
	if task.Completed {
		action = entities.ActionTaskComplete
	}
	s.record(ctx, task.UserID, action, task.ID, task.Title)

	if assigneeChanged(prev.AssignedTo, task.AssignedTo) {
		if prev.AssignedTo != nil {
			s.notify(ctx, *prev.AssignedTo, fmt.Sprintf("You have been unassigned from: '%s'", task.Title), &task.ID)
		}
		if task.AssignedTo != nil {
			s.notify(ctx, *task.AssignedTo, fmt.Sprintf("You have been assigned to: '%s'", task.Title), &task.ID)
		}
	}
}

// TaskDeleted records task_delete from a snapshot taken before the row was
// removed; the live row is already gone when this runs.
func (s *ActivityService) TaskDeleted(ctx context.Context, snapshot *entities.Task) {
	s.record(ctx, snapshot.UserID, entities.ActionTaskDelete, snapshot.ID, snapshot.Title)
}

// CategoryCreated records the category_add entry.
func (s *ActivityService) CategoryCreated(ctx context.Context, category *entities.Category) {
	s.record(ctx, category.UserID, entities.ActionCategoryAdd, category.ID, category.Name)
}

// CategoryUpdated records the category_update entry.
func (s *ActivityService) CategoryUpdated(ctx context.Context, category *entities.Category) {
	s.record(ctx, category.UserID, entities.ActionCategoryUpdate, category.ID, category.Name)
}

// CategoryDeleted records category_delete from a pre-delete snapshot.
func (s *ActivityService) CategoryDeleted(ctx context.Context, snapshot *entities.Category) {
	s.record(ctx, snapshot.UserID, entities.ActionCategoryDelete, snapshot.ID, snapshot.Name)
}

// RecentActivity returns the actor's latest audit entries, newest first.
func (s *ActivityService) RecentActivity(ctx context.Context, actor uuid.UUID, since time.Time, limit int) ([]*entities.ActivityLog, error) {
	entries, err := s.activityRepo.ListRecent(ctx, actor, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	return entries, nil
}

func (s *ActivityService) record(ctx context.Context, userID uuid.UUID, action entities.ActivityAction, objectID int, details string) {
	entry := &entities.ActivityLog{
		UserID:   userID,
		Action:   action,
		ObjectID: objectID,
		Details:  details,
	}

	if err := s.activityRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("Failed to record activity", "error", err, "action", action, "object_id", objectID)
	}
}

func (s *ActivityService) notify(ctx context.Context, userID uuid.UUID, message string, taskID *int) {
	n := &entities.Notification{
		UserID:  userID,
		Message: message,
		TaskID:  taskID,
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Warn("Failed to create notification", "error", err, "user_id", userID)
	}
}

func assigneeChanged(prev, next *uuid.UUID) bool {
	if prev == nil && next == nil {
		return false
	}
	if prev == nil || next == nil {
		return true
	}
	return *prev != *next
}
