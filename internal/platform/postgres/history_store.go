package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/bengamraiheb/backloft/internal/domain"
	"github.com/bengamraiheb/backloft/internal/platform/logger"
	"github.com/bengamraiheb/backloft/internal/store"
	"github.com/google/uuid"
)

// PostgresHistoryStore implements the store.HistoryStore interface
// using a PostgreSQL database as the storage backend. The table is
// append-only; there is deliberately no update or single-row delete.
type PostgresHistoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresHistoryStore creates a new PostgreSQL implementation of the HistoryStore interface.
func NewPostgresHistoryStore(db store.DBTX, logger *slog.Logger) *PostgresHistoryStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresHistoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "history_store")),
	}
}

// Ensure PostgresHistoryStore implements store.HistoryStore interface
var _ store.HistoryStore = (*PostgresHistoryStore)(nil)

// WithTx implements store.HistoryStore.WithTx
func (s *PostgresHistoryStore) WithTx(tx *sql.Tx) store.HistoryStore {
	return &PostgresHistoryStore{
		db:     tx,
		logger: s.logger,
	}
}

// Append implements store.HistoryStore.Append
// Returns store.ErrInvalidEntity if the task doesn't exist (foreign key violation).
func (s *PostgresHistoryStore) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("history entry validation failed",
			slog.String("error", err.Error()),
			slog.String("task_id", entry.TaskID.String()))
		return err
	}

	query := `
		INSERT INTO task_history (id, task_id, change_type, old_value, new_value, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.TaskID,
		entry.ChangeType,
		nullString(entry.OldValue),
		nullString(entry.NewValue),
		entry.OccurredAt,
	)

	if err != nil {
		log.Error("failed to append history entry",
			slog.String("error", err.Error()),
			slog.String("task_id", entry.TaskID.String()),
			slog.String("change_type", string(entry.ChangeType)))
		return MapError(err)
	}

	log.Debug("history entry appended",
		slog.String("task_id", entry.TaskID.String()),
		slog.String("change_type", string(entry.ChangeType)))
	return nil
}

// ListByTask implements store.HistoryStore.ListByTask
// Entries come back in occurrence order; that ordering is the audit trail.
func (s *PostgresHistoryStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.HistoryEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_id, change_type, old_value, new_value, occurred_at
		FROM task_history
		WHERE task_id = $1
		ORDER BY occurred_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to query task history",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	entries := []*domain.HistoryEntry{}
	for rows.Next() {
		var (
			entry      domain.HistoryEntry
			changeType string
			oldValue   sql.NullString
			newValue   sql.NullString
		)

		err := rows.Scan(
			&entry.ID,
			&entry.TaskID,
			&changeType,
			&oldValue,
			&newValue,
			&entry.OccurredAt,
		)
		if err != nil {
			log.Error("failed to scan history row", slog.String("error", err.Error()))
			return nil, err
		}

		entry.ChangeType = domain.ChangeType(changeType)
		entry.OldValue = oldValue.String
		entry.NewValue = newValue.String
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return entries, nil
}
