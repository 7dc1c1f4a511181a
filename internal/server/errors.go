package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	admindomain "github.com/smallbiznis/linkpage/internal/admin/domain"
	analyticsdomain "github.com/smallbiznis/linkpage/internal/analytics/domain"
	auditdomain "github.com/smallbiznis/linkpage/internal/audit/domain"
	"github.com/smallbiznis/linkpage/internal/auth/token"
	billingdomain "github.com/smallbiznis/linkpage/internal/billing/domain"
	contentdomain "github.com/smallbiznis/linkpage/internal/content/domain"
	identitydomain "github.com/smallbiznis/linkpage/internal/identity/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware turns errors collected on the gin context into a
// JSON error body after the handler chain runs.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, token.ErrInvalidToken),
		errors.Is(err, token.ErrExpiredToken),
		errors.Is(err, identitydomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, contentdomain.ErrUpgradeRequired):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "upgrade_required",
			Message: "upgrade required",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, billingdomain.ErrCheckoutFailed):
		return http.StatusBadGateway, errorPayload{
			Type:    "checkout_failed",
			Message: "payment gateway unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, identitydomain.ErrInvalidRequest),
		errors.Is(err, identitydomain.ErrInvalidUser),
		errors.Is(err, identitydomain.ErrInvalidPlan),
		errors.Is(err, contentdomain.ErrInvalidRequest),
		errors.Is(err, contentdomain.ErrInvalidPage),
		errors.Is(err, contentdomain.ErrInvalidBlock),
		errors.Is(err, contentdomain.ErrInvalidBlockType),
		errors.Is(err, analyticsdomain.ErrInvalidRequest),
		errors.Is(err, analyticsdomain.ErrInvalidEventType),
		errors.Is(err, analyticsdomain.ErrInvalidTargetURL),
		errors.Is(err, billingdomain.ErrInvalidRequest),
		errors.Is(err, billingdomain.ErrInvalidUser),
		errors.Is(err, auditdomain.ErrInvalidRequest),
		errors.Is(err, admindomain.ErrInvalidRequest),
		errors.Is(err, admindomain.ErrSelfTarget):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, identitydomain.ErrUserNotFound),
		errors.Is(err, contentdomain.ErrPageNotFound),
		errors.Is(err, contentdomain.ErrBlockNotFound),
		errors.Is(err, analyticsdomain.ErrShortlinkNotFound),
		errors.Is(err, billingdomain.ErrPackageNotFound),
		errors.Is(err, billingdomain.ErrPaymentNotFound),
		errors.Is(err, billingdomain.ErrSubscriptionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, identitydomain.ErrEmailTaken),
		errors.Is(err, identitydomain.ErrUsernameTaken),
		errors.Is(err, contentdomain.ErrSlugTaken),
		errors.Is(err, analyticsdomain.ErrCodeTaken):
		return true
	default:
		return false
	}
}
