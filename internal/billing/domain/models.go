// Package domain contains the billing catalog, payment and subscription models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type BillingInterval string

const (
	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalYearly  BillingInterval = "yearly"
)

// Package is a catalog entry. Admin-mutable, otherwise static.
type Package struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	Handle          string            `gorm:"type:text;not null;uniqueIndex:ux_packages_handle" json:"handle"`
	Name            string            `gorm:"type:text;not null" json:"name"`
	PriceCents      int64             `gorm:"not null" json:"price_cents"`
	Currency        string            `gorm:"type:text;not null" json:"currency"`
	BillingInterval BillingInterval   `gorm:"type:text;not null" json:"billing_interval"`
	Features        datatypes.JSONMap `gorm:"type:jsonb" json:"features,omitempty"`
	CreatedAt       time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Package) TableName() string { return "packages" }

// Paid reports whether completing a payment for this package upgrades the plan.
func (p Package) Paid() bool { return p.PriceCents > 0 }

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// Subscription records one billing period. A user accumulates a history;
// the latest by CreatedAt is authoritative.
type Subscription struct {
	ID                 snowflake.ID       `gorm:"primaryKey" json:"id"`
	UserID             snowflake.ID       `gorm:"not null;index" json:"user_id"`
	PackageID          snowflake.ID       `gorm:"not null;index" json:"package_id"`
	Status             SubscriptionStatus `gorm:"type:text;not null" json:"status"`
	CurrentPeriodStart time.Time          `gorm:"not null" json:"current_period_start"`
	CurrentPeriodEnd   time.Time          `gorm:"not null" json:"current_period_end"`
	CreatedAt          time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Terminal reports whether a status can no longer move to completed/failed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed || s == PaymentStatusRefunded
}

// Payment tracks one checkout. Its ID doubles as the gateway order id, so
// ExternalID is the idempotency key for webhook replays.
type Payment struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID         snowflake.ID      `gorm:"not null;index" json:"user_id"`
	SubscriptionID *snowflake.ID     `gorm:"index" json:"subscription_id,omitempty"`
	Amount         int64             `gorm:"not null" json:"amount"`
	Currency       string            `gorm:"type:text;not null" json:"currency"`
	Status         PaymentStatus     `gorm:"type:text;not null" json:"status"`
	ExternalID     *string           `gorm:"type:text;uniqueIndex:ux_payments_external_id" json:"external_id,omitempty"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
