// Package domain contains the user model and identity contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/linkpage/internal/plan"
)

// Role separates operators from regular tenants.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleTenant Role = "tenant"
)

// User is an account. Plan is read from this row at the moment a gated
// action is attempted, never from a token or cache.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"type:text;not null;uniqueIndex:ux_users_email" json:"email"`
	Username     string       `gorm:"type:text;not null;uniqueIndex:ux_users_username" json:"username"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	PasswordHash string       `gorm:"column:password;type:text;not null" json:"-"`
	Role         Role         `gorm:"type:text;not null" json:"role"`
	Plan         plan.Plan    `gorm:"type:text;not null" json:"plan"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
