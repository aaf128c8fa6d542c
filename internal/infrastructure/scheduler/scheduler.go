package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/toodoo/core/internal/infrastructure/config"
	"github.com/toodoo/core/internal/infrastructure/logger"
	"github.com/toodoo/core/internal/ports"
)

// Scheduler runs the recurring-task sweep on a cron schedule while the
// server is up.
type Scheduler struct {
	cron       *cron.Cron
	recurrence ports.RecurrenceService
	cfg        config.RecurrenceConfig
	logger     *logger.Logger
}

// New creates a new scheduler
func New(recurrence ports.RecurrenceService, cfg config.RecurrenceConfig, logger *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		recurrence: recurrence,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start registers the sweep job and starts the cron loop. It is a no-op when
// the sweep is disabled by configuration.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("Recurrence sweep disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Schedule, s.sweep)
	if err != nil {
		return fmt.Errorf("invalid recurrence schedule %q: %w", s.cfg.Schedule, err)
	}

	s.cron.Start()
	s.logger.Info("Recurrence sweep scheduled", "schedule", s.cfg.Schedule)

	return nil
}

// Stop stops the cron loop and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	created, err := s.recurrence.Run(ctx, time.Now())
	if err != nil {
		s.logger.Error("Recurrence sweep failed", "error", err)
		return
	}

	s.logger.Info("Recurrence sweep finished", "clones_created", created)
}
