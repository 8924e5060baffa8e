package api

import (
	"github.com/bengamraiheb/backloft/internal/domain"
	"github.com/google/uuid"
)

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the payload for exchanging a refresh token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ForgotPasswordRequest is the payload for requesting a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the payload for completing a password reset.
type ResetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// AuthResponse is returned by register, login and refresh. The user is
// omitted on refresh.
type AuthResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user,omitempty"`
}

// CreateTaskRequest is the payload for creating a task. Status and
// priority fall back to TODO and MEDIUM when omitted.
type CreateTaskRequest struct {
	Title       string              `json:"title"       validate:"required,max=100"`
	Description string              `json:"description" validate:"max=5000"`
	Status      domain.TaskStatus   `json:"status"      validate:"omitempty,oneof=BACKLOG TODO IN_PROGRESS DONE"`
	Priority    domain.TaskPriority `json:"priority"    validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	AssigneeID  *uuid.UUID          `json:"assignee_id"`
}

// AddCommentRequest is the payload for commenting on a task.
type AddCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

// UpdateUserRequest is the payload for a partial profile update. Nil
// fields are left untouched.
type UpdateUserRequest struct {
	Name      *string      `json:"name"     validate:"omitempty,min=1,max=100"`
	Email     *string      `json:"email"    validate:"omitempty,email"`
	AvatarURL *string      `json:"avatar"`
	Password  *string      `json:"password" validate:"omitempty,min=8,max=72"`
	Role      *domain.Role `json:"role"     validate:"omitempty,oneof=ADMIN TEAM_MEMBER USER"`
}
