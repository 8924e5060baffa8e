package store

import (
	"context"
	"database/sql"

	"github.com/bengamraiheb/backloft/internal/domain"
	"github.com/google/uuid"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// It handles domain validation internally.
	// Returns ErrInvalidEntity if a referenced user does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID with the assignee and
	// creator identities expanded.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List retrieves all tasks with assignee and creator identities
	// expanded, ordered by creation time (newest first).
	List(ctx context.Context) ([]*domain.Task, error)

	// Update saves changes to an existing task. The caller provides the
	// complete post-mutation task; concurrent updates are last-write-wins.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store. The schema cascades the
	// delete to the task's comments, history entries and notifications.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) TaskStore
}

// HistoryStore defines the interface for the append-only task audit trail.
type HistoryStore interface {
	// Append saves a new history entry. Entries are never mutated or
	// deleted except by the cascading delete of their task.
	Append(ctx context.Context, entry *domain.HistoryEntry) error

	// ListByTask retrieves all history entries for a task ordered by
	// occurrence time. The ordering is the audit trail.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.HistoryEntry, error)

	// WithTx returns a new HistoryStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) HistoryStore
}

// CommentStore defines the interface for comment data persistence.
type CommentStore interface {
	// Create saves a new comment to the store.
	// Returns ErrInvalidEntity if the task or author does not exist.
	Create(ctx context.Context, comment *domain.Comment) error

	// ListByTask retrieves all comments for a task with author identity
	// expanded, ordered by creation time (oldest first).
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)

	// WithTx returns a new CommentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CommentStore
}
