// Package domain contains the append-only event log and shortlink models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EventType classifies analytics events.
type EventType string

const (
	EventTypeView     EventType = "view"
	EventTypeClick    EventType = "click"
	EventTypePurchase EventType = "purchase"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTypeView, EventTypeClick, EventTypePurchase:
		return true
	default:
		return false
	}
}

// AnalyticsEvent is append-only and the sole source of truth for derived
// analytics. Rows are never updated; they disappear only through cascading
// page, block or shortlink deletion.
type AnalyticsEvent struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	PageID      *snowflake.ID     `gorm:"index" json:"page_id,omitempty"`
	BlockID     *snowflake.ID     `gorm:"index" json:"block_id,omitempty"`
	ShortlinkID *snowflake.ID     `gorm:"index" json:"shortlink_id,omitempty"`
	Type        EventType         `gorm:"type:text;not null" json:"type"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	UserAgent   *string           `gorm:"type:text" json:"user_agent,omitempty"`
	IPAddress   *string           `gorm:"type:text" json:"ip_address,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;index" json:"created_at"`
}

// TableName sets the database table name.
func (AnalyticsEvent) TableName() string { return "analytics_events" }

// Shortlink maps a short code to a target URL. Clicks only increases and is
// incremented server-side so concurrent resolutions cannot lose updates.
type Shortlink struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	Code      string        `gorm:"type:text;not null;uniqueIndex:ux_shortlinks_code" json:"code"`
	TargetURL string        `gorm:"type:text;not null" json:"target_url"`
	PageID    *snowflake.ID `gorm:"index" json:"page_id,omitempty"`
	BlockID   *snowflake.ID `gorm:"index" json:"block_id,omitempty"`
	Clicks    int64         `gorm:"not null;default:0" json:"clicks"`
	CreatedAt time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Shortlink) TableName() string { return "shortlinks" }
