package postgres

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

// PostgresNotificationStore implements the store.NotificationStore
// interface using a PostgreSQL database as the storage backend.
type PostgresNotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNotificationStore creates a new PostgreSQL implementation of the NotificationStore interface.
func NewPostgresNotificationStore(db store.DBTX, logger *slog.Logger) *PostgresNotificationStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresNotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
	}
}

// Ensure PostgresNotificationStore implements store.NotificationStore interface
var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// WithTx implements store.NotificationStore.WithTx
func (s *PostgresNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	return &PostgresNotificationStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.NotificationStore.Create
func (s *PostgresNotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := notification.Validate(); err != nil {
		log.Warn("notification validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", notification.UserID.String()))
		return err
	}

	query := `
		INSERT INTO notifications (id, user_id, task_id, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		notification.ID,
		notification.UserID,
		nullUUID(notification.TaskID),
		notification.Message,
		notification.IsRead,
		notification.CreatedAt,
	)

	if err != nil {
		log.Error("failed to create notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()),
			slog.String("user_id", notification.UserID.String()))
		return MapError(err)
	}

	log.Debug("notification created",
		slog.String("notification_id", notification.ID.String()),
		slog.String("user_id", notification.UserID.String()))
	return nil
}

// ListByUser implements store.NotificationStore.ListByUser
func (s *PostgresNotificationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT n.id, n.user_id, n.task_id, n.message, n.is_read, n.created_at,
		       COALESCE(t.title, '')
		FROM notifications n
		LEFT JOIN tasks t ON t.id = n.task_id
		WHERE n.user_id = $1
		ORDER BY n.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query notifications",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	notifications := []*domain.Notification{}
	for rows.Next() {
		var (
			notification domain.Notification
			taskID       uuid.NullUUID
		)

		err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&taskID,
			&notification.Message,
			&notification.IsRead,
			&notification.CreatedAt,
			&notification.TaskTitle,
		)
		if err != nil {
			log.Error("failed to scan notification row", slog.String("error", err.Error()))
			return nil, err
		}

		if taskID.Valid {
			id := taskID.UUID
			notification.TaskID = &id
		}
		notifications = append(notifications, &notification)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return notifications, nil
}

// MarkRead implements store.NotificationStore.MarkRead
// The recipient scoping is part of the WHERE clause, so another user's
// notification surfaces as ErrNotificationNotFound.
func (s *PostgresNotificationStore) MarkRead(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, task_id, message, is_read, created_at
	`

	var (
		notification domain.Notification
		taskID       uuid.NullUUID
	)
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&notification.ID,
		&notification.UserID,
		&taskID,
		&notification.Message,
		&notification.IsRead,
		&notification.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("notification not found for mark read",
				slog.String("notification_id", id.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrNotificationNotFound
		}
		log.Error("failed to mark notification read",
			slog.String("error", err.Error()),
			slog.String("notification_id", id.String()))
		return nil, MapError(err)
	}

	if taskID.Valid {
		tid := taskID.UUID
		notification.TaskID = &tid
	}

	log.Debug("notification marked read",
		slog.String("notification_id", id.String()),
		slog.String("user_id", userID.String()))
	return &notification, nil
}

// MarkAllRead implements store.NotificationStore.MarkAllRead
func (s *PostgresNotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE
	`

	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		log.Error("failed to mark all notifications read",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	log.Debug("all notifications marked read", slog.String("user_id", userID.String()))
	return nil
}

// Delete implements store.NotificationStore.Delete
func (s *PostgresNotificationStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`,
		id,
		userID,
	)
	if err != nil {
		log.Error("failed to delete notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "notification"); err != nil {
		log.Debug("notification not found for delete",
			slog.String("notification_id", id.String()),
			slog.String("user_id", userID.String()))
		return store.ErrNotificationNotFound
	}

	log.Debug("notification deleted",
		slog.String("notification_id", id.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// CountByTask implements store.NotificationStore.CountByTask
func (s *PostgresNotificationStore) CountByTask(ctx context.Context, taskID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM notifications WHERE task_id = $1`,
		taskID,
	).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}
