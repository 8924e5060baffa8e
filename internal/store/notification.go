package store

import (
	"context"
	"database/sql"

	"github.com/bengamraiheb/backloft/internal/domain"
	"github.com/google/uuid"
)

// NotificationStore defines the interface for notification persistence.
// Rows are created exclusively by the dispatcher as a side effect of a
// task mutation; afterwards they change only through read-state toggles
// and individual deletion by their recipient.
type NotificationStore interface {
	// Create saves a new notification to the store.
	Create(ctx context.Context, notification *domain.Notification) error

	// ListByUser retrieves all notifications for the recipient ordered
	// by creation time (newest first), with the task title expanded
	// where the task still exists.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)

	// MarkRead flips one notification to read. The recipient scoping is
	// part of the lookup: a notification belonging to another user is
	// ErrNotificationNotFound, never Forbidden.
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error)

	// MarkAllRead flips every unread notification of the recipient to read.
	MarkAllRead(ctx context.Context, userID uuid.UUID) error

	// Delete removes one of the recipient's notifications.
	// Returns ErrNotificationNotFound if it does not exist or belongs to
	// another user.
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// CountByTask reports how many notifications reference the task.
	CountByTask(ctx context.Context, taskID uuid.UUID) (int, error)

	// WithTx returns a new NotificationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) NotificationStore
}
