package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/smallbiznis/linkpage/internal/analytics/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() analyticsdomain.Repository {
	return &repo{}
}

func (r *repo) InsertEvent(ctx context.Context, db *gorm.DB, event *analyticsdomain.AnalyticsEvent) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *repo) ListEventsByOwnerSince(ctx context.Context, db *gorm.DB, userID snowflake.ID, since time.Time) ([]analyticsdomain.AnalyticsEvent, error) {
	var events []analyticsdomain.AnalyticsEvent
	err := db.WithContext(ctx).Raw(
		`SELECT ae.id, ae.page_id, ae.block_id, ae.shortlink_id, ae.type, ae.metadata,
		 ae.user_agent, ae.ip_address, ae.created_at
		 FROM analytics_events ae
		 JOIN pages p ON p.id = ae.page_id
		 WHERE p.user_id = ? AND ae.created_at >= ?
		 ORDER BY ae.created_at ASC`,
		userID,
		since,
	).Scan(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) ListEventsByPageSince(ctx context.Context, db *gorm.DB, pageID snowflake.ID, since time.Time) ([]analyticsdomain.AnalyticsEvent, error) {
	var events []analyticsdomain.AnalyticsEvent
	err := db.WithContext(ctx).
		Where("page_id = ? AND created_at >= ?", pageID, since).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}

func (r *repo) InsertShortlink(ctx context.Context, db *gorm.DB, link *analyticsdomain.Shortlink) error {
	return db.WithContext(ctx).Create(link).Error
}

func (r *repo) FindShortlinkByCode(ctx context.Context, db *gorm.DB, code string) (*analyticsdomain.Shortlink, error) {
	var link analyticsdomain.Shortlink
	err := db.WithContext(ctx).Where("code = ?", code).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (r *repo) IncrementClicks(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE shortlinks SET clicks = clicks + 1, updated_at = ? WHERE id = ?`,
		now,
		id,
	).Error
}
