package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertEvent(ctx context.Context, db *gorm.DB, event *AnalyticsEvent) error
	ListEventsByOwnerSince(ctx context.Context, db *gorm.DB, userID snowflake.ID, since time.Time) ([]AnalyticsEvent, error)
	ListEventsByPageSince(ctx context.Context, db *gorm.DB, pageID snowflake.ID, since time.Time) ([]AnalyticsEvent, error)

	InsertShortlink(ctx context.Context, db *gorm.DB, link *Shortlink) error
	FindShortlinkByCode(ctx context.Context, db *gorm.DB, code string) (*Shortlink, error)
	// IncrementClicks bumps the counter server-side (clicks = clicks + 1).
	IncrementClicks(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error
}
