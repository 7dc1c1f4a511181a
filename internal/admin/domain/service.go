// Package domain defines the operator console: platform stats, user
// management and catalog mutations, all audited.
package domain

import (
	"context"
	"errors"

	billingdomain "github.com/smallbiznis/linkpage/internal/billing/domain"
	identitydomain "github.com/smallbiznis/linkpage/internal/identity/domain"
	"github.com/smallbiznis/linkpage/internal/plan"
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrSelfTarget     = errors.New("self_target")
)

// Stats is the platform overview. ConversionRate is the percentage of users
// on a paid plan, rounded to two decimals, zero when there are no users.
type Stats struct {
	TotalUsers     int64   `json:"total_users"`
	ProUsers       int64   `json:"pro_users"`
	RecentSignups  int64   `json:"recent_signups"`
	ConversionRate float64 `json:"conversion_rate"`
}

type UpdateUserPlanRequest struct {
	AdminUserID string
	UserID      string
	Plan        plan.Plan `json:"plan" binding:"required"`
}

type ImpersonateResponse struct {
	Token string              `json:"token"`
	User  identitydomain.User `json:"user"`
}

type Service interface {
	Stats(ctx context.Context) (Stats, error)
	ListUsers(ctx context.Context, offset, limit int) ([]identitydomain.User, int64, error)
	UpdateUserPlan(ctx context.Context, req UpdateUserPlanRequest) (identitydomain.User, error)
	DeleteUser(ctx context.Context, adminUserID, userID string) error
	ImpersonateUser(ctx context.Context, adminUserID, userID string) (ImpersonateResponse, error)
	UpdatePackage(ctx context.Context, adminUserID string, req billingdomain.UpdatePackageRequest) (*billingdomain.Package, error)
}
