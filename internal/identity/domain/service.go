package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/linkpage/internal/plan"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UpdateProfileRequest struct {
	UserID string
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (User, error)
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	GetByID(ctx context.Context, userID string) (User, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (User, error)
	UpdatePlan(ctx context.Context, userID string, p plan.Plan) error
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context, offset, limit int) ([]User, int64, error)
}

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrInvalidUser        = errors.New("invalid_user")
	ErrInvalidPlan        = errors.New("invalid_plan")
	ErrEmailTaken         = errors.New("email_taken")
	ErrUsernameTaken      = errors.New("username_taken")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)
