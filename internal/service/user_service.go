package service

import (
	"context"
	"log/slog"

	"github.com/bengamraiheb/backloft/internal/domain"
	"github.com/bengamraiheb/backloft/internal/platform/logger"
	"github.com/bengamraiheb/backloft/internal/store"
	"github.com/google/uuid"
)

// UpdateUserInput carries the optional fields of a profile update. Nil
// pointers leave the current value untouched.
type UpdateUserInput struct {
	Name      *string
	Email     *string
	AvatarURL *string
	Password  *string
	Role      *domain.Role
}

// UserService provides user directory and account management operations.
// Any authenticated user may read the directory; writes are limited to
// the account owner or an admin, and role changes to admins.
type UserService interface {
	// GetUser retrieves a user by their ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// ListUsers retrieves all users ordered by name. Used to populate
	// assignee pickers.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// UpdateUser applies a partial profile update. Only the account
	// owner or an admin may update, and only an admin may change roles.
	UpdateUser(ctx context.Context, principal domain.Principal, userID uuid.UUID, input UpdateUserInput) (*domain.User, error)

	// DeleteUser removes a user account. Users may delete their own
	// account; admins may delete anyone's.
	DeleteUser(ctx context.Context, principal domain.Principal, userID uuid.UUID) error
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	users  store.UserStore
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users store.UserStore, logger *slog.Logger) (UserService, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		users:  users,
		logger: logger.With(slog.String("component", "user_service")),
	}, nil
}

// GetUser implements UserService.GetUser
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ListUsers implements UserService.ListUsers
func (s *userServiceImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// UpdateUser implements UserService.UpdateUser
func (s *userServiceImpl) UpdateUser(
	ctx context.Context,
	principal domain.Principal,
	userID uuid.UUID,
	input UpdateUserInput,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if principal.ID != userID && !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	if input.Role != nil {
		if err := Authorize(principal, ActionManageUsers, nil); err != nil {
			return nil, err
		}
		if !input.Role.IsValid() {
			return nil, domain.NewValidationError("role", "invalid role", domain.ErrValidation)
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		// Format is checked by user.Validate on write; the store maps a
		// unique violation to ErrEmailExists.
		user.Email = *input.Email
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}
	if input.Password != nil {
		user.Password = *input.Password // Hashed by the store on write
	}
	if input.Role != nil {
		user.Role = *input.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		log.Error("user update failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("user updated",
		slog.String("user_id", userID.String()),
		slog.String("actor_id", principal.ID.String()))

	return user, nil
}

// DeleteUser implements UserService.DeleteUser
func (s *userServiceImpl) DeleteUser(
	ctx context.Context,
	principal domain.Principal,
	userID uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if principal.ID != userID && !principal.IsAdmin() {
		return ErrForbidden
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		log.Error("user deletion failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return err
	}

	log.Info("user deleted",
		slog.String("user_id", userID.String()),
		slog.String("actor_id", principal.ID.String()))

	return nil
}
