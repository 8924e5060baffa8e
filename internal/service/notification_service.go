package service

import (
	"context"
	"log/slog"

	"github.com/bengamraiheb/backloft/internal/domain"
	"github.com/bengamraiheb/backloft/internal/platform/logger"
	"github.com/bengamraiheb/backloft/internal/store"
	"github.com/google/uuid"
)

// NotificationService exposes a user's notification inbox. Every
// operation is scoped to the acting principal: there is no way to read
// or modify another user's notifications, regardless of role.
type NotificationService interface {
	// ListNotifications retrieves the principal's notifications, newest first.
	ListNotifications(ctx context.Context, principal domain.Principal) ([]*domain.Notification, error)

	// MarkRead flips one of the principal's notifications to read and
	// returns the updated row.
	MarkRead(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.Notification, error)

	// MarkAllRead flips all of the principal's unread notifications to read.
	MarkAllRead(ctx context.Context, principal domain.Principal) error

	// DeleteNotification removes one of the principal's notifications.
	DeleteNotification(ctx context.Context, principal domain.Principal, id uuid.UUID) error
}

// notificationServiceImpl implements the NotificationService interface
type notificationServiceImpl struct {
	notifications store.NotificationStore
	logger        *slog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	notifications store.NotificationStore,
	logger *slog.Logger,
) (NotificationService, error) {
	if notifications == nil {
		return nil, domain.NewValidationError("notifications", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &notificationServiceImpl{
		notifications: notifications,
		logger:        logger.With(slog.String("component", "notification_service")),
	}, nil
}

// ListNotifications implements NotificationService.ListNotifications
func (s *notificationServiceImpl) ListNotifications(
	ctx context.Context,
	principal domain.Principal,
) ([]*domain.Notification, error) {
	return s.notifications.ListByUser(ctx, principal.ID)
}

// MarkRead implements NotificationService.MarkRead
func (s *notificationServiceImpl) MarkRead(
	ctx context.Context,
	principal domain.Principal,
	id uuid.UUID,
) (*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	notification, err := s.notifications.MarkRead(ctx, id, principal.ID)
	if err != nil {
		return nil, err
	}

	log.Debug("notification marked read",
		slog.String("notification_id", id.String()),
		slog.String("user_id", principal.ID.String()))

	return notification, nil
}

// MarkAllRead implements NotificationService.MarkAllRead
func (s *notificationServiceImpl) MarkAllRead(
	ctx context.Context,
	principal domain.Principal,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.notifications.MarkAllRead(ctx, principal.ID); err != nil {
		return err
	}

	log.Debug("all notifications marked read",
		slog.String("user_id", principal.ID.String()))

	return nil
}

// DeleteNotification implements NotificationService.DeleteNotification
func (s *notificationServiceImpl) DeleteNotification(
	ctx context.Context,
	principal domain.Principal,
	id uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.notifications.Delete(ctx, id, principal.ID); err != nil {
		return err
	}

	log.Debug("notification deleted",
		slog.String("notification_id", id.String()),
		slog.String("user_id", principal.ID.String()))

	return nil
}
