package service

import (
	"context"
	"log/slog"

	"github.com/bengamraiheb/backloft/internal/domain"
	"github.com/bengamraiheb/backloft/internal/platform/logger"
	"github.com/bengamraiheb/backloft/internal/realtime"
	"github.com/bengamraiheb/backloft/internal/store"
	"github.com/google/uuid"
)

// MutationKind classifies a committed task change.
type MutationKind string

const (
	MutationCreated   MutationKind = "created"
	MutationUpdated   MutationKind = "updated"
	MutationDeleted   MutationKind = "deleted"
	MutationCommented MutationKind = "commented"
)

// Mutation describes a task change that has already been committed. The
// dispatcher derives notifications and live events from it.
type Mutation struct {
	Kind  MutationKind
	Actor domain.Principal

	// Task is the post-mutation state. For deletions it is the state the
	// task had just before removal.
	Task *domain.Task

	// Before is the pre-mutation snapshot. Nil for creations.
	Before *domain.Task

	// Comment is set when Kind is MutationCommented.
	Comment *domain.Comment
}

// Dispatcher turns committed mutations into persisted notifications and
// live events. Dispatch never returns an error: it runs after the
// mutation's transaction has committed, so failures here are logged and
// absorbed rather than undoing or failing the mutation.
type Dispatcher interface {
	Dispatch(ctx context.Context, m Mutation)
}

// notificationDispatcher is the production Dispatcher. It persists
// notifications through the store and publishes events through the
// broadcaster.
type notificationDispatcher struct {
	notifications store.NotificationStore
	broadcaster   realtime.Broadcaster
	logger        *slog.Logger
}

// NewDispatcher creates the production notification dispatcher.
func NewDispatcher(
	notifications store.NotificationStore,
	broadcaster realtime.Broadcaster,
	logger *slog.Logger,
) (Dispatcher, error) {
	if notifications == nil {
		return nil, domain.NewValidationError("notifications", "cannot be nil", domain.ErrValidation)
	}
	if broadcaster == nil {
		return nil, domain.NewValidationError("broadcaster", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &notificationDispatcher{
		notifications: notifications,
		broadcaster:   broadcaster,
		logger:        logger.With(slog.String("component", "dispatcher")),
	}, nil
}

// Dispatch implements Dispatcher.Dispatch
func (d *notificationDispatcher) Dispatch(ctx context.Context, m Mutation) {
	switch m.Kind {
	case MutationCreated:
		d.notifyAssignment(ctx, m, m.Task.AssigneeID)
		d.broadcaster.Publish(ctx, realtime.NewEvent(realtime.EventTaskCreated, m.Task))

	case MutationUpdated:
		if assigneeChanged(m.Before, m.Task) {
			d.notifyAssignment(ctx, m, m.Task.AssigneeID)
		}
		d.broadcaster.Publish(ctx, realtime.NewEvent(realtime.EventTaskUpdated, m.Task))

	case MutationDeleted:
		d.broadcaster.Publish(ctx, realtime.NewEvent(realtime.EventTaskDeleted, deletedPayload{ID: m.Task.ID}))

	case MutationCommented:
		d.notifyComment(ctx, m)
		d.broadcaster.Publish(ctx, realtime.NewEvent(realtime.EventCommentAdded, commentPayload{
			TaskID:  m.Task.ID,
			Comment: m.Comment,
		}))

	default:
		d.logger.Warn("unknown mutation kind", slog.String("kind", string(m.Kind)))
	}
}

type deletedPayload struct {
	ID uuid.UUID `json:"id"`
}

type commentPayload struct {
	TaskID  uuid.UUID       `json:"task_id"`
	Comment *domain.Comment `json:"comment"`
}

// notifyAssignment notifies the task's new assignee. Self-assignments are
// silent: users are never notified about their own actions.
func (d *notificationDispatcher) notifyAssignment(ctx context.Context, m Mutation, assigneeID *uuid.UUID) {
	if assigneeID == nil || *assigneeID == m.Actor.ID {
		return
	}
	d.send(ctx, *assigneeID, m.Task, "You were assigned to task: "+m.Task.Title)
}

// notifyComment notifies the task's assignee and creator about a new
// comment. The comment author is never notified, and a creator who is
// also the assignee receives a single notification.
func (d *notificationDispatcher) notifyComment(ctx context.Context, m Mutation) {
	message := "New comment on task: " + m.Task.Title
	author := m.Comment.AuthorID

	notifiedAssignee := false
	if m.Task.AssigneeID != nil && *m.Task.AssigneeID != author {
		d.send(ctx, *m.Task.AssigneeID, m.Task, message)
		notifiedAssignee = true
	}

	if m.Task.CreatorID != author {
		if notifiedAssignee && *m.Task.AssigneeID == m.Task.CreatorID {
			return
		}
		d.send(ctx, m.Task.CreatorID, m.Task, message)
	}
}

// send persists one notification and delivers it live to its recipient.
// Both steps are best-effort; a persistence failure also skips delivery
// so clients never see a notification that does not exist in storage.
func (d *notificationDispatcher) send(ctx context.Context, recipient uuid.UUID, task *domain.Task, message string) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	taskID := task.ID
	notification, err := domain.NewNotification(recipient, &taskID, message)
	if err != nil {
		log.Error("failed to build notification",
			slog.String("recipient", recipient.String()),
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
		return
	}
	notification.TaskTitle = task.Title

	if err := d.notifications.Create(ctx, notification); err != nil {
		log.Error("failed to persist notification",
			slog.String("recipient", recipient.String()),
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
		return
	}

	d.broadcaster.PublishTo(ctx, recipient.String(), realtime.NewEvent(realtime.EventNotification, notification))
}

// assigneeChanged reports whether the assignee differs between the two
// snapshots.
func assigneeChanged(before, after *domain.Task) bool {
	if before == nil || after == nil {
		return false
	}
	switch {
	case before.AssigneeID == nil && after.AssigneeID == nil:
		return false
	case before.AssigneeID == nil || after.AssigneeID == nil:
		return true
	default:
		return *before.AssigneeID != *after.AssigneeID
	}
}
