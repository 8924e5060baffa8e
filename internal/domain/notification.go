package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Notification-specific validation errors
var (
	// ErrNotificationIDEmpty is returned when a notification ID is empty or nil.
	ErrNotificationIDEmpty = errors.New("notification ID cannot be empty")

	// ErrNotificationUserEmpty is returned when a notification's recipient is empty or nil.
	ErrNotificationUserEmpty = errors.New("notification recipient ID cannot be empty")

	// ErrNotificationMessageEmpty is returned when a notification's message is empty.
	ErrNotificationMessageEmpty = errors.New("notification message cannot be empty")
)

// Notification is a persisted message to one recipient, created by the
// dispatcher as a side effect of a task mutation. The task reference is
// weak: it is kept for lookup and removed by the task's cascading delete.
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	TaskID    *uuid.UUID `json:"task_id,omitempty"`
	Message   string     `json:"message"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`

	// TaskTitle is populated on reads for rendering; empty when the
	// task is gone or the reference was never set.
	TaskTitle string `json:"task_title,omitempty"`
}

// NewNotification creates a new unread Notification for the given recipient.
func NewNotification(userID uuid.UUID, taskID *uuid.UUID, message string) (*Notification, error) {
	notification := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		TaskID:    taskID,
		Message:   message,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	}

	if err := notification.Validate(); err != nil {
		return nil, err
	}

	return notification, nil
}

// Validate checks if the Notification has valid data.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return ErrNotificationIDEmpty
	}

	if n.UserID == uuid.Nil {
		return ErrNotificationUserEmpty
	}

	if n.Message == "" {
		return ErrNotificationMessageEmpty
	}

	return nil
}
