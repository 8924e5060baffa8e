package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bengamraiheb/backloft/internal/domain"
	"github.com/bengamraiheb/backloft/internal/mail"
	"github.com/bengamraiheb/backloft/internal/platform/logger"
	"github.com/bengamraiheb/backloft/internal/service/auth"
	"github.com/bengamraiheb/backloft/internal/store"
)

// resetTokenTTL bounds how long a password reset link stays usable.
const resetTokenTTL = time.Hour

// TokenPair is the access/refresh token pair issued on login, register
// and refresh.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService implements the account lifecycle: registration, login,
// refresh token rotation, logout and password reset.
type AuthService interface {
	// Register creates an account and signs the new user in.
	// Returns store.ErrEmailExists when the email is taken.
	Register(ctx context.Context, name, email, password string) (*domain.User, TokenPair, error)

	// Login authenticates by email and password.
	// Returns ErrWrongCredentials on unknown email or bad password.
	Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error)

	// Refresh exchanges a valid refresh token for a new token pair. The
	// presented token is revoked in the exchange (rotation), so each
	// refresh token works exactly once.
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)

	// Logout revokes the principal's refresh token. Outstanding access
	// tokens stay valid until they expire.
	Logout(ctx context.Context, principal domain.Principal) error

	// RequestPasswordReset issues a reset token and mails it. Unknown
	// emails succeed silently so account existence is not revealed.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes a reset token and sets a new password.
	// All sessions are revoked.
	// Returns ErrResetTokenInvalid for unknown or expired tokens.
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// authServiceImpl implements the AuthService interface
type authServiceImpl struct {
	users    store.UserStore
	jwt      auth.JWTService
	verifier auth.PasswordVerifier
	mailer   mail.Mailer
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users store.UserStore,
	jwt auth.JWTService,
	verifier auth.PasswordVerifier,
	mailer mail.Mailer,
	logger *slog.Logger,
) (AuthService, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if jwt == nil {
		return nil, domain.NewValidationError("jwt", "cannot be nil", domain.ErrValidation)
	}
	if verifier == nil {
		return nil, domain.NewValidationError("verifier", "cannot be nil", domain.ErrValidation)
	}
	if mailer == nil {
		return nil, domain.NewValidationError("mailer", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &authServiceImpl{
		users:    users,
		jwt:      jwt,
		verifier: verifier,
		mailer:   mailer,
		logger:   logger.With(slog.String("component", "auth_service")),
	}, nil
}

// Register implements AuthService.Register
func (s *authServiceImpl) Register(
	ctx context.Context,
	name, email, password string,
) (*domain.User, TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(name, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration with existing email")
			return nil, TokenPair{}, err
		}
		log.Error("failed to create user", slog.String("error", err.Error()))
		return nil, TokenPair{}, NewAuthServiceError("register", "failed to create user", err)
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	// Welcome mail is a courtesy; registration has already succeeded.
	if err := s.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
		log.Warn("failed to send welcome mail",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()))

	return user, pair, nil
}

// Login implements AuthService.Login
func (s *authServiceImpl) Login(
	ctx context.Context,
	email, password string,
) (*domain.User, TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, TokenPair{}, ErrWrongCredentials
		}
		log.Error("failed to look up user for login", slog.String("error", err.Error()))
		return nil, TokenPair{}, NewAuthServiceError("login", "failed to look up user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.String("user_id", user.ID.String()))
		return nil, TokenPair{}, ErrWrongCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))

	return user, pair, nil
}

// Refresh implements AuthService.Refresh
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.jwt.ValidateRefreshToken(ctx, refreshToken); err != nil {
		return TokenPair{}, err
	}

	// The token must also match the one on record: rotation revokes
	// every previously issued refresh token.
	user, err := s.users.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("refresh token not on record (revoked or rotated)")
			return TokenPair{}, auth.ErrInvalidRefreshToken
		}
		log.Error("failed to look up refresh token", slog.String("error", err.Error()))
		return TokenPair{}, NewAuthServiceError("refresh", "failed to look up token", err)
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return TokenPair{}, err
	}

	log.Debug("token pair refreshed", slog.String("user_id", user.ID.String()))

	return pair, nil
}

// Logout implements AuthService.Logout
func (s *authServiceImpl) Logout(ctx context.Context, principal domain.Principal) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.users.SetRefreshToken(ctx, principal.ID, ""); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Account deleted while logged in; nothing left to revoke.
			return nil
		}
		log.Error("failed to revoke refresh token",
			slog.String("user_id", principal.ID.String()),
			slog.String("error", err.Error()))
		return NewAuthServiceError("logout", "failed to revoke refresh token", err)
	}

	log.Info("user logged out", slog.String("user_id", principal.ID.String()))
	return nil
}

// RequestPasswordReset implements AuthService.RequestPasswordReset
func (s *authServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("password reset requested for unknown email")
			return nil
		}
		log.Error("failed to look up user for password reset", slog.String("error", err.Error()))
		return NewAuthServiceError("password_reset", "failed to look up user", err)
	}

	token, err := newResetToken()
	if err != nil {
		return NewAuthServiceError("password_reset", "failed to generate token", err)
	}

	expires := sql.NullTime{Time: time.Now().UTC().Add(resetTokenTTL), Valid: true}
	if err := s.users.SetPasswordResetToken(ctx, user.ID, token, expires); err != nil {
		log.Error("failed to store reset token",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return NewAuthServiceError("password_reset", "failed to store token", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		log.Error("failed to send reset mail",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return NewAuthServiceError("password_reset", "failed to send mail", err)
	}

	log.Info("password reset issued", slog.String("user_id", user.ID.String()))
	return nil
}

// ResetPassword implements AuthService.ResetPassword
func (s *authServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByPasswordResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrResetTokenInvalid
		}
		log.Error("failed to look up reset token", slog.String("error", err.Error()))
		return NewAuthServiceError("password_reset", "failed to look up token", err)
	}

	if user.PasswordResetExpires == nil || time.Now().UTC().After(*user.PasswordResetExpires) {
		log.Debug("expired reset token presented", slog.String("user_id", user.ID.String()))
		return ErrResetTokenInvalid
	}

	user.Password = newPassword // Hashed by the store on write
	if err := s.users.Update(ctx, user); err != nil {
		log.Error("failed to update password",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return err
	}

	// Consume the token and revoke any active session.
	if err := s.users.SetPasswordResetToken(ctx, user.ID, "", sql.NullTime{}); err != nil {
		log.Warn("failed to clear reset token",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, ""); err != nil {
		log.Warn("failed to revoke sessions after reset",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
	}

	log.Info("password reset completed", slog.String("user_id", user.ID.String()))
	return nil
}

// issueTokens generates a token pair and records the refresh token so it
// can be matched (and rotated) on the next refresh.
func (s *authServiceImpl) issueTokens(ctx context.Context, user *domain.User) (TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	accessToken, err := s.jwt.GenerateToken(ctx, user)
	if err != nil {
		log.Error("failed to generate access token", slog.String("error", err.Error()))
		return TokenPair{}, NewAuthServiceError("token", "failed to generate access token", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(ctx, user)
	if err != nil {
		log.Error("failed to generate refresh token", slog.String("error", err.Error()))
		return TokenPair{}, NewAuthServiceError("token", "failed to generate refresh token", err)
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		log.Error("failed to store refresh token", slog.String("error", err.Error()))
		return TokenPair{}, NewAuthServiceError("token", "failed to store refresh token", err)
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// newResetToken returns a 64 character hex token from a CSPRNG.
func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
