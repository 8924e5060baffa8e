package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/bengamraiheb/backloft/internal/domain"
	"github.com/bengamraiheb/backloft/internal/platform/logger"
	"github.com/bengamraiheb/backloft/internal/store"
	"github.com/google/uuid"
)

// CreateTaskInput carries the caller-supplied fields for a new task.
// Status and Priority fall back to their defaults when empty; the creator
// is always the acting principal.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	AssigneeID  *uuid.UUID
}

// TaskService coordinates task mutations: authorization, the atomic
// write of the change and its history, and post-commit dispatch of
// notifications and live events.
type TaskService interface {
	// CreateTask creates a task owned by the principal.
	CreateTask(ctx context.Context, principal domain.Principal, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves a task with assignee and creator expanded.
	GetTask(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.Task, error)

	// ListTasks retrieves all tasks, newest first.
	ListTasks(ctx context.Context, principal domain.Principal) ([]*domain.Task, error)

	// UpdateTask applies a partial update to a task. Present patch fields
	// overwrite; an explicit null clears the assignee. Concurrent updates
	// are last-write-wins.
	UpdateTask(ctx context.Context, principal domain.Principal, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes a task and, via the schema, its comments,
	// history and notifications. Only the creator or an admin may delete.
	DeleteTask(ctx context.Context, principal domain.Principal, id uuid.UUID) error

	// AddComment attaches a comment authored by the principal.
	AddComment(ctx context.Context, principal domain.Principal, taskID uuid.UUID, content string) (*domain.Comment, error)

	// ListComments retrieves a task's comments, oldest first.
	ListComments(ctx context.Context, principal domain.Principal, taskID uuid.UUID) ([]*domain.Comment, error)

	// ListHistory retrieves a task's audit trail in occurrence order.
	ListHistory(ctx context.Context, principal domain.Principal, taskID uuid.UUID) ([]*domain.HistoryEntry, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	db         *sql.DB
	tasks      store.TaskStore
	history    store.HistoryStore
	comments   store.CommentStore
	users      store.UserStore
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	db *sql.DB,
	tasks store.TaskStore,
	history store.HistoryStore,
	comments store.CommentStore,
	users store.UserStore,
	dispatcher Dispatcher,
	logger *slog.Logger,
) (TaskService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if history == nil {
		return nil, domain.NewValidationError("history", "cannot be nil", domain.ErrValidation)
	}
	if comments == nil {
		return nil, domain.NewValidationError("comments", "cannot be nil", domain.ErrValidation)
	}
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if dispatcher == nil {
		return nil, domain.NewValidationError("dispatcher", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		db:         db,
		tasks:      tasks,
		history:    history,
		comments:   comments,
		users:      users,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	principal domain.Principal,
	input CreateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := Authorize(principal, ActionCreateTask, nil); err != nil {
		return nil, err
	}

	task, err := domain.NewTask(
		input.Title,
		input.Description,
		input.Status,
		input.Priority,
		input.AssigneeID,
		principal.ID,
	)
	if err != nil {
		return nil, err
	}

	if input.AssigneeID != nil {
		if _, err := s.resolveUser(ctx, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tasks.WithTx(tx).Create(ctx, task); err != nil {
			return NewTaskServiceError("create", "failed to save task", err)
		}

		entry, err := domain.NewHistoryEntry(task.ID, domain.ChangeCreated, "", "Task created")
		if err != nil {
			return NewTaskServiceError("create", "failed to build history entry", err)
		}
		if err := s.history.WithTx(tx).Append(ctx, entry); err != nil {
			return NewTaskServiceError("create", "failed to record history", err)
		}
		return nil
	})
	if err != nil {
		log.Error("task creation failed",
			slog.String("error", err.Error()),
			slog.String("creator_id", principal.ID.String()))
		return nil, err
	}

	created, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		// The committed task is the source of truth; fall back to the
		// unexpanded in-memory copy if the re-read fails.
		log.Warn("failed to re-read created task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		created = task
	}

	log.Info("task created",
		slog.String("task_id", created.ID.String()),
		slog.String("creator_id", principal.ID.String()))

	s.dispatcher.Dispatch(ctx, Mutation{
		Kind:  MutationCreated,
		Actor: principal,
		Task:  created,
	})

	return created, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(
	ctx context.Context,
	principal domain.Principal,
	id uuid.UUID,
) (*domain.Task, error) {
	if err := Authorize(principal, ActionViewTask, nil); err != nil {
		return nil, err
	}
	return s.tasks.GetByID(ctx, id)
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	principal domain.Principal,
) ([]*domain.Task, error) {
	if err := Authorize(principal, ActionViewTask, nil); err != nil {
		return nil, err
	}
	return s.tasks.List(ctx)
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	principal domain.Principal,
	id uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := Authorize(principal, ActionUpdateTask, task); err != nil {
		return nil, err
	}

	// Resolve the incoming assignee before mutating anything so a bad
	// reference fails the whole update up front.
	var newAssignee *domain.UserRef
	if assigneeID, ok := patch.AssigneeID.Value(); ok {
		user, err := s.resolveUser(ctx, assigneeID)
		if err != nil {
			return nil, err
		}
		ref := user.Ref()
		newAssignee = &ref
	}

	before := task.Clone()
	if changed := patch.Apply(task); !changed {
		log.Debug("update changed nothing", slog.String("task_id", id.String()))
		return task, nil
	}
	if newAssignee != nil {
		task.Assignee = newAssignee
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tasks.WithTx(tx).Update(ctx, task); err != nil {
			return NewTaskServiceError("update", "failed to save task", err)
		}

		txHistory := s.history.WithTx(tx)

		if before.Status != task.Status {
			entry, err := domain.NewHistoryEntry(
				task.ID, domain.ChangeStatus, string(before.Status), string(task.Status))
			if err != nil {
				return NewTaskServiceError("update", "failed to build history entry", err)
			}
			if err := txHistory.Append(ctx, entry); err != nil {
				return NewTaskServiceError("update", "failed to record history", err)
			}
		}

		if assigneeChanged(before, task) {
			entry, err := domain.NewHistoryEntry(
				task.ID, domain.ChangeAssignee, assigneeLabel(before), assigneeLabel(task))
			if err != nil {
				return NewTaskServiceError("update", "failed to build history entry", err)
			}
			if err := txHistory.Append(ctx, entry); err != nil {
				return NewTaskServiceError("update", "failed to record history", err)
			}
		}

		return nil
	})
	if err != nil {
		log.Error("task update failed",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	updated, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		log.Warn("failed to re-read updated task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		updated = task
	}

	log.Info("task updated",
		slog.String("task_id", updated.ID.String()),
		slog.String("actor_id", principal.ID.String()))

	s.dispatcher.Dispatch(ctx, Mutation{
		Kind:   MutationUpdated,
		Actor:  principal,
		Task:   updated,
		Before: before,
	})

	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(
	ctx context.Context,
	principal domain.Principal,
	id uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := Authorize(principal, ActionDeleteTask, task); err != nil {
		log.Warn("task deletion denied",
			slog.String("task_id", id.String()),
			slog.String("actor_id", principal.ID.String()))
		return err
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		log.Error("task deletion failed",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return err
	}

	log.Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("actor_id", principal.ID.String()))

	s.dispatcher.Dispatch(ctx, Mutation{
		Kind:  MutationDeleted,
		Actor: principal,
		Task:  task,
	})

	return nil
}

// AddComment implements TaskService.AddComment
func (s *taskServiceImpl) AddComment(
	ctx context.Context,
	principal domain.Principal,
	taskID uuid.UUID,
	content string,
) (*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := Authorize(principal, ActionCommentTask, task); err != nil {
		return nil, err
	}

	comment, err := domain.NewComment(taskID, principal.ID, content)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.comments.WithTx(tx).Create(ctx, comment); err != nil {
			return NewTaskServiceError("comment", "failed to save comment", err)
		}

		entry, err := domain.NewHistoryEntry(
			taskID, domain.ChangeCommentAdded, "", "Comment added by "+principal.Email)
		if err != nil {
			return NewTaskServiceError("comment", "failed to build history entry", err)
		}
		if err := s.history.WithTx(tx).Append(ctx, entry); err != nil {
			return NewTaskServiceError("comment", "failed to record history", err)
		}
		return nil
	})
	if err != nil {
		log.Error("comment creation failed",
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	if author, lookupErr := s.resolveUser(ctx, principal.ID); lookupErr == nil {
		ref := author.Ref()
		comment.Author = &ref
	}

	log.Info("comment added",
		slog.String("task_id", taskID.String()),
		slog.String("comment_id", comment.ID.String()),
		slog.String("author_id", principal.ID.String()))

	s.dispatcher.Dispatch(ctx, Mutation{
		Kind:    MutationCommented,
		Actor:   principal,
		Task:    task,
		Comment: comment,
	})

	return comment, nil
}

// ListComments implements TaskService.ListComments
func (s *taskServiceImpl) ListComments(
	ctx context.Context,
	principal domain.Principal,
	taskID uuid.UUID,
) ([]*domain.Comment, error) {
	if err := Authorize(principal, ActionViewTask, nil); err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.comments.ListByTask(ctx, taskID)
}

// ListHistory implements TaskService.ListHistory
func (s *taskServiceImpl) ListHistory(
	ctx context.Context,
	principal domain.Principal,
	taskID uuid.UUID,
) ([]*domain.HistoryEntry, error) {
	if err := Authorize(principal, ActionViewTask, nil); err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.history.ListByTask(ctx, taskID)
}

// resolveUser loads a user and converts a missing row into a validation
// error, since a dangling user reference in a request is caller input.
func (s *taskServiceImpl) resolveUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domain.NewValidationError("assignee_id", "user does not exist", domain.ErrValidation)
		}
		return nil, err
	}
	return user, nil
}

// assigneeLabel renders the assignee for the audit trail: the user's
// display name, or the unassigned placeholder.
func assigneeLabel(t *domain.Task) string {
	if t.AssigneeID == nil {
		return domain.UnassignedValue
	}
	if t.Assignee != nil && t.Assignee.Name != "" {
		return t.Assignee.Name
	}
	return t.AssigneeID.String()
}
