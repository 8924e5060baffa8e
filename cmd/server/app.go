package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/bengamraiheb/backloft/internal/config"
	"github.com/bengamraiheb/backloft/internal/mail"
	"github.com/bengamraiheb/backloft/internal/platform/postgres"
	"github.com/bengamraiheb/backloft/internal/realtime"
	"github.com/bengamraiheb/backloft/internal/service"
	"github.com/bengamraiheb/backloft/internal/service/auth"
	"github.com/bengamraiheb/backloft/internal/store"
)

// application holds the wired dependency graph of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore

	jwtService auth.JWTService
	registry   realtime.Registry

	authService         service.AuthService
	taskService         service.TaskService
	userService         service.UserService
	notificationService service.NotificationService
}

// newApplication wires stores, services and the realtime hub together.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	historyStore := postgres.NewPostgresHistoryStore(db, logger)
	commentStore := postgres.NewPostgresCommentStore(db, logger)
	notificationStore := postgres.NewPostgresNotificationStore(db, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	var mailer mail.Mailer
	if cfg.Mail.Host != "" {
		mailer = mail.NewSMTPMailer(cfg.Mail, cfg.Server.ClientURL, logger)
	} else {
		mailer = mail.NewLogMailer(logger)
	}

	registry := realtime.NewInMemoryRegistry(logger)
	hub := realtime.NewHub(registry, logger)

	dispatcher, err := service.NewDispatcher(notificationStore, hub, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	authService, err := service.NewAuthService(
		userStore, jwtService, auth.NewBcryptVerifier(), mailer, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	taskService, err := service.NewTaskService(
		db, taskStore, historyStore, commentStore, userStore, dispatcher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	userService, err := service.NewUserService(userStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	notificationService, err := service.NewNotificationService(notificationStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification service: %w", err)
	}

	return &application{
		config:              cfg,
		logger:              logger,
		db:                  db,
		userStore:           userStore,
		jwtService:          jwtService,
		registry:            registry,
		authService:         authService,
		taskService:         taskService,
		userService:         userService,
		notificationService: notificationService,
	}, nil
}

// cleanup releases resources still held at shutdown. The database
// connection is closed by run's defer.
func (app *application) cleanup() {
	for _, sink := range app.registry.All() {
		sink.Close()
	}
	app.logger.Info("application cleanup complete")
}
