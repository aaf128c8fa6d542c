package services

import (
	"context"
	"fmt"
	"time"

	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/infrastructure/logger"
	"github.com/toodoo/core/internal/ports"
)

// RecurrenceService materializes the next occurrence of recurring task
// templates. Each sweep is idempotent: a clone that already exists for a
// template's next due date is never created twice.
type RecurrenceService struct {
	taskRepo ports.TaskRepository
	logger   *logger.Logger
}

// NewRecurrenceService creates a new recurrence service
func NewRecurrenceService(taskRepo ports.TaskRepository, logger *logger.Logger) *RecurrenceService {
	return &RecurrenceService{
		taskRepo: taskRepo,
		logger:   logger,
	}
}

// Run expands every active template once and returns the number of clones
// created. A template failure is logged and does not stop the sweep.
func (s *RecurrenceService) Run(ctx context.Context, today time.Time) (int, error) {
	templates, err := s.taskRepo.GetRecurringTemplates(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("get recurring templates: %w", err)
	}

	created := 0
	for _, template := range templates {
		clone, err := s.expand(ctx, template)
		if err != nil {
			s.logger.Warn("Failed to expand recurring task", "error", err, "task_id", template.ID)
			continue
		}
		if clone != nil {
			created++
			s.logger.Info("Recurring task materialized",
				"template_id", template.ID, "clone_id", clone.ID, "due_date", clone.DueDate)
		}
	}

	return created, nil
}

// expand generates the next clone of one template, or returns (nil, nil) when
// the template is not eligible.
func (s *RecurrenceService) expand(ctx context.Context, template *entities.Task) (*entities.Task, error) {
	if template.DueDate == nil {
		return nil, nil
	}

	nextDue, err := template.NextDueDate()
	if err != nil {
		// No interval set; the template can never advance.
		return nil, nil
	}

	if !template.InRecurrenceWindow(nextDue) {
		return nil, nil
	}

	exists, err := s.taskRepo.CloneExists(ctx, template.ID, nextDue)
	if err != nil {
		return nil, fmt.Errorf("check clone exists: %w", err)
	}
	if exists {
		return nil, nil
	}

	// The recurrence window stays on the template only, so clones are never
	// picked up as templates themselves.
	clone := &entities.Task{
		UserID:       template.UserID,
		AssignedTo:   template.AssignedTo,
		Title:        template.Title,
		Description:  template.Description,
		CategoryID:   template.CategoryID,
		DueDate:      &nextDue,
		Priority:     template.Priority,
		FilePath:     template.FilePath,
		Bookmarked:   template.Bookmarked,
		Recurring:    true,
		ParentTaskID: &template.ID,
	}

	if err := s.taskRepo.Create(ctx, clone); err != nil {
		return nil, fmt.Errorf("create clone: %w", err)
	}

	return clone, nil
}
