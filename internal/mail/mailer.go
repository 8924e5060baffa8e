// Package mail sends transactional email: welcome messages on
// registration and password reset links. Delivery is plain SMTP; when no
// SMTP host is configured the application falls back to a mailer that
// only logs, so local development needs no mail server.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/bengamraiheb/backloft/internal/config"
)

// Mailer sends transactional mail. Implementations must be safe for
// concurrent use.
type Mailer interface {
	// SendWelcome greets a newly registered user.
	SendWelcome(ctx context.Context, to, name string) error

	// SendPasswordReset delivers a reset link carrying the given token.
	SendPasswordReset(ctx context.Context, to, token string) error
}

// SMTPMailer is the production Mailer.
type SMTPMailer struct {
	cfg       config.MailConfig
	clientURL string
	logger    *slog.Logger
}

// NewSMTPMailer creates a mailer from SMTP settings. clientURL is the
// base URL of the web client, used to build reset links.
func NewSMTPMailer(cfg config.MailConfig, clientURL string, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPMailer{
		cfg:       cfg,
		clientURL: strings.TrimRight(clientURL, "/"),
		logger:    logger.With(slog.String("component", "mailer")),
	}
}

var _ Mailer = (*SMTPMailer)(nil)

// SendWelcome implements Mailer.SendWelcome
func (m *SMTPMailer) SendWelcome(ctx context.Context, to, name string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nYour account is ready. Sign in at %s to get started.\r\n",
		name, m.clientURL)
	return m.send(ctx, to, "Welcome aboard", body)
}

// SendPasswordReset implements Mailer.SendPasswordReset
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.clientURL, token)
	body := fmt.Sprintf(
		"A password reset was requested for your account.\r\n\r\n"+
			"Reset it here: %s\r\n\r\n"+
			"If you did not request this, ignore this message.\r\n",
		link)
	return m.send(ctx, to, "Password reset", body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	m.logger.Debug("mail sent",
		slog.String("to", to),
		slog.String("subject", subject))
	return nil
}

// LogMailer is a Mailer that records instead of sending. Used when no
// SMTP host is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a log-only mailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger.With(slog.String("component", "mailer"))}
}

var _ Mailer = (*LogMailer)(nil)

// SendWelcome implements Mailer.SendWelcome
func (m *LogMailer) SendWelcome(_ context.Context, to, name string) error {
	m.logger.Info("mail suppressed (no SMTP host configured)",
		slog.String("kind", "welcome"),
		slog.String("to", to),
		slog.String("name", name))
	return nil
}

// SendPasswordReset implements Mailer.SendPasswordReset
func (m *LogMailer) SendPasswordReset(_ context.Context, to, token string) error {
	// The token is deliberately kept out of the info line; local
	// debugging can lower the log level to retrieve it.
	m.logger.Info("mail suppressed (no SMTP host configured)",
		slog.String("kind", "password_reset"),
		slog.String("to", to))
	m.logger.Debug("password reset token",
		slog.String("to", to),
		slog.String("token", token))
	return nil
}
