package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/infrastructure/logger"
	"github.com/toodoo/core/internal/ports"
)

// NotificationService lists and acknowledges a user's notifications.
// Notifications are only ever created by the activity emitter.
type NotificationService struct {
	notificationRepo ports.NotificationRepository
	logger           *logger.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo ports.NotificationRepository, logger *logger.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// ListNotifications returns the actor's notifications, newest first
func (s *NotificationService) ListNotifications(ctx context.Context, actor uuid.UUID, unreadOnly bool) ([]*entities.Notification, error) {
	notifications, err := s.notificationRepo.ListForUser(ctx, actor, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// MarkAllRead acknowledges every unread notification of the actor
func (s *NotificationService) MarkAllRead(ctx context.Context, actor uuid.UUID) error {
	if err := s.notificationRepo.MarkAllRead(ctx, actor); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}

	s.logger.Info("Notifications marked read", "user_id", actor)

	return nil
}
