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

// histogramDays is the span of the created-tasks histogram: today plus the
// seven preceding local calendar days.
const histogramDays = 8

// DashboardService computes per-user aggregate views. Every call reads the
// store point-in-time; counts are not taken inside one transaction, so they
// can drift against each other under concurrent writes.
type DashboardService struct {
	taskRepo ports.TaskRepository
	logger   *logger.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(taskRepo ports.TaskRepository, logger *logger.Logger) *DashboardService {
	return &DashboardService{
		taskRepo: taskRepo,
		logger:   logger,
	}
}

// GetDashboard returns the actor's aggregate counts and creation histogram
// evaluated at the given instant.
func (s *DashboardService) GetDashboard(ctx context.Context, userID uuid.UUID, now time.Time) (*ports.Dashboard, error) {
	open := false
	base := ports.TaskFilter{VisibleTo: &userID, Now: now}

	count := func(filter ports.TaskFilter) (int64, error) {
		return s.taskRepo.Count(ctx, filter)
	}

	openFilter := base
	openFilter.Completed = &open

	allCount, err := count(openFilter)
	if err != nil {
		return nil, fmt.Errorf("count open tasks: %w", err)
	}

	scheduledFilter := base
	scheduledFilter.View = ports.ViewScheduled
	scheduledCount, err := count(scheduledFilter)
	if err != nil {
		return nil, fmt.Errorf("count scheduled tasks: %w", err)
	}

	overdueFilter := base
	overdueFilter.View = ports.ViewOverdue
	overdueCount, err := count(overdueFilter)
	if err != nil {
		return nil, fmt.Errorf("count overdue tasks: %w", err)
	}

	completedFilter := base
	completedFilter.View = ports.ViewCompleted
	completedCount, err := count(completedFilter)
	if err != nil {
		return nil, fmt.Errorf("count completed tasks: %w", err)
	}

	recurringFilter := base
	recurringFilter.View = ports.ViewRecurring
	recurringFilter.Completed = &open
	recurringCount, err := count(recurringFilter)
	if err != nil {
		return nil, fmt.Errorf("count recurring tasks: %w", err)
	}

	bookmarkedFilter := base
	bookmarkedFilter.View = ports.ViewBookmarked
	bookmarkedFilter.Completed = &open
	bookmarkedCount, err := count(bookmarkedFilter)
	if err != nil {
		return nil, fmt.Errorf("count bookmarked tasks: %w", err)
	}

	// Open tasks without a priority contribute to the total only, so the
	// per-priority sum can be below the open count.
	priorityCounts := make(map[string]int64, 4)
	for _, p := range []entities.Priority{
		entities.PriorityLow, entities.PriorityMedium, entities.PriorityHigh, entities.PriorityUrgent,
	} {
		priority := p
		filter := base
		filter.Completed = &open
		filter.Priority = &priority

		n, err := count(filter)
		if err != nil {
			return nil, fmt.Errorf("count %s priority tasks: %w", p, err)
		}
		priorityCounts[string(p)] = n
	}

	histogram, err := s.createdHistogram(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	return &ports.Dashboard{
		AllTasksCount:       allCount,
		ScheduledTasksCount: scheduledCount,
		OverdueTasksCount:   overdueCount,
		CompletedTasksCount: completedCount,
		RecurringTasksCount: recurringCount,
		BookmarkedCount:     bookmarkedCount,
		PriorityCounts:      priorityCounts,
		CreatedHistogram:    histogram,
	}, nil
}

// createdHistogram buckets task creation over the trailing window into local
// calendar days, inclusive start and exclusive end per day. The repository
// bins rows relative to the window start, so a returned bin maps to a bucket
// by its offset, independent of the database session's timezone.
func (s *DashboardService) createdHistogram(ctx context.Context, userID uuid.UUID, now time.Time) ([]ports.HistogramBucket, error) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	from := today.AddDate(0, 0, -(histogramDays - 1))
	to := today.AddDate(0, 0, 1)

	counts, err := s.taskRepo.CountCreatedBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("created histogram: %w", err)
	}

	buckets := make([]ports.HistogramBucket, histogramDays)
	for i := range buckets {
		buckets[i] = ports.HistogramBucket{
			Day:        from.AddDate(0, 0, i),
			ByPriority: make(map[string]int),
		}
	}

	for _, c := range counts {
		i := int(c.Day.Sub(from) / (24 * time.Hour))
		if i < 0 || i >= histogramDays {
			continue
		}
		buckets[i].Total += c.Count
		if c.Priority != "" {
			buckets[i].ByPriority[string(c.Priority)] += c.Count
		}
	}

	return buckets, nil
}
