package domain

import (
	"context"
	"errors"
)

type TrackEventRequest struct {
	Type        EventType      `json:"type"`
	PageID      string         `json:"page_id,omitempty"`
	BlockID     string         `json:"block_id,omitempty"`
	ShortlinkID string         `json:"shortlink_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	UserAgent   string         `json:"-"`
	IPAddress   string         `json:"-"`
}

// DayStats holds independent view and click counters for one calendar date.
type DayStats struct {
	Views  int64 `json:"views"`
	Clicks int64 `json:"clicks"`
}

// UserSummary aggregates events across every page the user owns. Dates with
// no events are absent from EventsOverTime, not zero-filled.
type UserSummary struct {
	TotalViews     int64               `json:"total_views"`
	TotalClicks    int64               `json:"total_clicks"`
	ConversionRate float64             `json:"conversion_rate"`
	EventsOverTime map[string]DayStats `json:"events_over_time"`
}

// LinkStat counts the clicks attributed to one link label.
type LinkStat struct {
	Label  string `json:"label"`
	Clicks int64  `json:"clicks"`
}

type PageSummary struct {
	PageID             string              `json:"page_id"`
	TotalViews         int64               `json:"total_views"`
	TotalClicks        int64               `json:"total_clicks"`
	ConversionRate     float64             `json:"conversion_rate"`
	EventsOverTime     map[string]DayStats `json:"events_over_time"`
	TopPerformingLinks []LinkStat          `json:"top_performing_links"`
}

type CreateShortlinkRequest struct {
	Code      string `json:"code,omitempty"`
	TargetURL string `json:"target_url"`
	PageID    string `json:"page_id,omitempty"`
	BlockID   string `json:"block_id,omitempty"`
}

type Service interface {
	TrackEvent(ctx context.Context, req TrackEventRequest) error
	TrackPageView(ctx context.Context, pageID string, metadata map[string]any) error
	TrackLinkClick(ctx context.Context, pageID, blockID string, metadata map[string]any) error

	UserSummary(ctx context.Context, userID string, days int) (UserSummary, error)
	PageSummary(ctx context.Context, actorID, pageID string, days int) (PageSummary, error)

	CreateShortlink(ctx context.Context, req CreateShortlinkRequest) (Shortlink, error)
	// ResolveShortlink returns the target URL, atomically counts the click
	// and appends a click event.
	ResolveShortlink(ctx context.Context, code string) (string, error)
}

var (
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrInvalidEventType  = errors.New("invalid_event_type")
	ErrInvalidTargetURL  = errors.New("invalid_target_url")
	ErrCodeTaken         = errors.New("code_taken")
	ErrShortlinkNotFound = errors.New("shortlink_not_found")
)
