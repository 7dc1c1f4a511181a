// Package domain defines the append-only admin audit trail.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AdminAuditLog is one administrative action. Rows are never updated or
// deleted.
type AdminAuditLog struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	AdminUserID  snowflake.ID      `gorm:"not null;index" json:"admin_user_id"`
	Action       string            `gorm:"type:text;not null" json:"action"`
	ResourceType string            `gorm:"type:text;not null" json:"resource_type"`
	ResourceID   string            `gorm:"type:text;not null" json:"resource_id"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (AdminAuditLog) TableName() string { return "admin_audit_logs" }
