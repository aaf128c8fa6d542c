package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/infrastructure/logger"
	"github.com/toodoo/core/internal/ports"
)

// TaskService handles task-related operations
type TaskService struct {
	taskRepo     ports.TaskRepository
	categoryRepo ports.CategoryRepository
	userRepo     ports.UserRepository
	emitter      ports.ActivityEmitter
	logger       *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, categoryRepo ports.CategoryRepository, userRepo ports.UserRepository, emitter ports.ActivityEmitter, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		emitter:      emitter,
		logger:       logger,
	}
}

// CreateTask creates a new task owned by the actor
func (s *TaskService) CreateTask(ctx context.Context, actor uuid.UUID, req ports.CreateTaskRequest) (*entities.Task, error) {
	if req.Priority != nil && !req.Priority.IsValid() {
		return nil, entities.ErrInvalidPriority
	}
	if req.RecurringInterval != nil && !req.RecurringInterval.IsValid() {
		return nil, entities.ErrInvalidInterval
	}

	if req.AssignedTo != nil {
		if _, err := s.userRepo.GetByID(ctx, *req.AssignedTo); err != nil {
			return nil, fmt.Errorf("assignee not found: %w", err)
		}
	}

	if req.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("category not found: %w", err)
		}
		if !category.IsGlobal && category.UserID != actor {
			return nil, entities.ErrForbidden
		}
	}

	task := &entities.Task{
		UserID:             actor,
		AssignedTo:         req.AssignedTo,
		Title:              req.Title,
		Description:        req.Description,
		CategoryID:         req.CategoryID,
		DueDate:            req.DueDate,
		Priority:           req.Priority,
		FilePath:           req.FilePath,
		Bookmarked:         req.Bookmarked,
		Recurring:          req.Recurring,
		RecurringInterval:  req.RecurringInterval,
		RecurringStartDate: req.RecurringStartDate,
		RecurringEndDate:   req.RecurringEndDate,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("Task created successfully", "task_id", task.ID, "title", task.Title, "user_id", actor)

	s.emitter.TaskCreated(ctx, task)

	return task, nil
}

// GetTask retrieves a task visible to the actor
func (s *TaskService) GetTask(ctx context.Context, actor uuid.UUID, id int) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !task.VisibleTo(actor) {
		return nil, entities.ErrForbidden
	}

	return task, nil
}

// UpdateTask updates a task's fields. The actor must own the task or be
// assigned to it.
func (s *TaskService) UpdateTask(ctx context.Context, actor uuid.UUID, id int, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !task.VisibleTo(actor) {
		return nil, entities.ErrForbidden
	}

	if req.Priority != nil && !req.Priority.IsValid() {
		return nil, entities.ErrInvalidPriority
	}
	if req.RecurringInterval != nil && !req.RecurringInterval.IsValid() {
		return nil, entities.ErrInvalidInterval
	}

	if req.AssignedTo != nil {
		if _, err := s.userRepo.GetByID(ctx, *req.AssignedTo); err != nil {
			return nil, fmt.Errorf("assignee not found: %w", err)
		}
	}

	if req.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("category not found: %w", err)
		}
		if !category.IsGlobal && category.UserID != actor {
			return nil, entities.ErrForbidden
		}
	}

	// Snapshot the pre-update state for the emitter's diffs.
	prev := *task

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.ClearAssignee {
		task.AssignedTo = nil
	} else if req.AssignedTo != nil {
		task.AssignedTo = req.AssignedTo
	}
	if req.ClearCategory {
		task.CategoryID = nil
	} else if req.CategoryID != nil {
		task.CategoryID = req.CategoryID
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	if req.Priority != nil {
		task.Priority = req.Priority
	}
	if req.Bookmarked != nil {
		task.Bookmarked = *req.Bookmarked
	}
	if req.Recurring != nil {
		task.Recurring = *req.Recurring
	}
	if req.RecurringInterval != nil {
		task.RecurringInterval = req.RecurringInterval
	}
	if req.RecurringStartDate != nil {
		task.RecurringStartDate = req.RecurringStartDate
	}
	if req.RecurringEndDate != nil {
		task.RecurringEndDate = req.RecurringEndDate
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Info("Task updated successfully", "task_id", task.ID, "user_id", actor)

	s.emitter.TaskUpdated(ctx, &prev, task)

	return task, nil
}

// DeleteTask deletes a task owned by the actor. The pre-delete snapshot feeds
// the emitter so the audit entry survives the row.
func (s *TaskService) DeleteTask(ctx context.Context, actor uuid.UUID, id int) error {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if task.UserID != actor {
		return entities.ErrForbidden
	}

	snapshot := *task

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Info("Task deleted successfully", "task_id", id, "user_id", actor)

	s.emitter.TaskDeleted(ctx, &snapshot)

	return nil
}

// ListTasks lists the actor's tasks for one of the derived views
func (s *TaskService) ListTasks(ctx context.Context, actor uuid.UUID, req ports.ListTasksRequest) ([]*entities.Task, error) {
	view := req.View
	if view == "" {
		view = ports.ViewAll
	}
	if !view.IsValid() {
		return nil, fmt.Errorf("unknown task view %q", view)
	}

	filter := ports.TaskFilter{
		VisibleTo:  &actor,
		View:       view,
		Search:     req.Search,
		CategoryID: req.CategoryID,
		Limit:      req.Limit,
		Offset:     req.Offset,
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// MarkCompleted toggles the completed flag of a task visible to the actor
func (s *TaskService) MarkCompleted(ctx context.Context, actor uuid.UUID, taskID int, completed bool) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if !task.VisibleTo(actor) {
		return entities.ErrForbidden
	}

	prev := *task
	task.Completed = completed

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Info("Task completion toggled", "task_id", taskID, "completed", completed, "user_id", actor)

	s.emitter.TaskUpdated(ctx, &prev, task)

	return nil
}

// ClearCompleted removes all of the actor's own completed tasks and returns
// the number removed. Each removed task gets its own deletion audit entry,
// exactly as a one-by-one delete would.
func (s *TaskService) ClearCompleted(ctx context.Context, actor uuid.UUID) (int64, error) {
	deleted, err := s.taskRepo.DeleteCompleted(ctx, actor)
	if err != nil {
		return 0, fmt.Errorf("failed to clear completed tasks: %w", err)
	}

	s.logger.Info("Completed tasks cleared", "user_id", actor, "deleted", len(deleted))

	for _, snapshot := range deleted {
		s.emitter.TaskDeleted(ctx, snapshot)
	}

	return int64(len(deleted)), nil
}
