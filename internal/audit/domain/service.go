package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrInvalidRequest = errors.New("invalid_request")

// RecordRequest describes one administrative action to log.
type RecordRequest struct {
	AdminUserID  snowflake.ID
	Action       string
	ResourceType string
	ResourceID   string
	Metadata     datatypes.JSONMap
}

type Service interface {
	// Record appends one audit row. When tx is non-nil the row joins the
	// caller's transaction, so the action and its trail commit together.
	Record(ctx context.Context, tx *gorm.DB, req RecordRequest) error
	List(ctx context.Context, offset, limit int) ([]AdminAuditLog, int64, error)
}
