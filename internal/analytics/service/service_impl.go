package service

import (
	"context"
	"crypto/rand"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/smallbiznis/linkpage/internal/analytics/domain"
	"github.com/smallbiznis/linkpage/internal/clock"
	contentdomain "github.com/smallbiznis/linkpage/internal/content/domain"
	"github.com/smallbiznis/linkpage/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	codeAlphabet    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength      = 6
	codeGenAttempts = 5
	topLinksLimit   = 5
	unknownLink     = "Unknown Link"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  analyticsdomain.Repository

	Contentsvc contentdomain.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  analyticsdomain.Repository

	contentsvc contentdomain.Service
}

func NewService(p Params) analyticsdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("analytics.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,

		contentsvc: p.Contentsvc,
	}
}

// TrackEvent is a pure append. It never rejects on business grounds, only on
// a malformed type or reference.
func (s *Service) TrackEvent(ctx context.Context, req analyticsdomain.TrackEventRequest) error {
	if !req.Type.Valid() {
		return analyticsdomain.ErrInvalidEventType
	}

	pageID, err := parseOptionalID(req.PageID)
	if err != nil {
		return err
	}
	blockID, err := parseOptionalID(req.BlockID)
	if err != nil {
		return err
	}
	shortlinkID, err := parseOptionalID(req.ShortlinkID)
	if err != nil {
		return err
	}

	event := analyticsdomain.AnalyticsEvent{
		ID:          s.genID.Generate(),
		PageID:      pageID,
		BlockID:     blockID,
		ShortlinkID: shortlinkID,
		Type:        req.Type,
		Metadata:    datatypes.JSONMap(req.Metadata),
		CreatedAt:   s.clock.Now(),
	}
	if ua := strings.TrimSpace(req.UserAgent); ua != "" {
		event.UserAgent = &ua
	}
	if ip := strings.TrimSpace(req.IPAddress); ip != "" {
		event.IPAddress = &ip
	}

	return s.repo.InsertEvent(ctx, s.db, &event)
}

func (s *Service) TrackPageView(ctx context.Context, pageID string, metadata map[string]any) error {
	return s.TrackEvent(ctx, analyticsdomain.TrackEventRequest{
		Type:     analyticsdomain.EventTypeView,
		PageID:   pageID,
		Metadata: metadata,
	})
}

func (s *Service) TrackLinkClick(ctx context.Context, pageID, blockID string, metadata map[string]any) error {
	return s.TrackEvent(ctx, analyticsdomain.TrackEventRequest{
		Type:     analyticsdomain.EventTypeClick,
		PageID:   pageID,
		BlockID:  blockID,
		Metadata: metadata,
	})
}

func (s *Service) UserSummary(ctx context.Context, userID string, days int) (analyticsdomain.UserSummary, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil || id == 0 {
		return analyticsdomain.UserSummary{}, analyticsdomain.ErrInvalidRequest
	}

	events, err := s.repo.ListEventsByOwnerSince(ctx, s.db, id, s.windowStart(days))
	if err != nil {
		return analyticsdomain.UserSummary{}, err
	}

	views, clicks, overTime := bucketize(events)
	return analyticsdomain.UserSummary{
		TotalViews:     views,
		TotalClicks:    clicks,
		ConversionRate: conversionRate(views, clicks),
		EventsOverTime: overTime,
	}, nil
}

func (s *Service) PageSummary(ctx context.Context, actorID, pageID string, days int) (analyticsdomain.PageSummary, error) {
	// Ownership check rides on the content service so "not yours" and
	// "does not exist" are indistinguishable to the caller.
	detail, err := s.contentsvc.GetPage(ctx, actorID, pageID)
	if err != nil {
		return analyticsdomain.PageSummary{}, err
	}

	events, err := s.repo.ListEventsByPageSince(ctx, s.db, detail.Page.ID, s.windowStart(days))
	if err != nil {
		return analyticsdomain.PageSummary{}, err
	}

	views, clicks, overTime := bucketize(events)
	return analyticsdomain.PageSummary{
		PageID:             detail.Page.ID.String(),
		TotalViews:         views,
		TotalClicks:        clicks,
		ConversionRate:     conversionRate(views, clicks),
		EventsOverTime:     overTime,
		TopPerformingLinks: topLinks(events),
	}, nil
}

func (s *Service) CreateShortlink(ctx context.Context, req analyticsdomain.CreateShortlinkRequest) (analyticsdomain.Shortlink, error) {
	target := strings.TrimSpace(req.TargetURL)
	if target == "" {
		return analyticsdomain.Shortlink{}, analyticsdomain.ErrInvalidTargetURL
	}
	if parsed, err := url.Parse(target); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return analyticsdomain.Shortlink{}, analyticsdomain.ErrInvalidTargetURL
	}

	pageID, err := parseOptionalID(req.PageID)
	if err != nil {
		return analyticsdomain.Shortlink{}, err
	}
	blockID, err := parseOptionalID(req.BlockID)
	if err != nil {
		return analyticsdomain.Shortlink{}, err
	}

	explicit := strings.TrimSpace(req.Code)
	attempts := codeGenAttempts
	if explicit != "" {
		attempts = 1
	}

	now := s.clock.Now()
	for attempt := 0; attempt < attempts; attempt++ {
		code := explicit
		if code == "" {
			code, err = randomCode(codeLength)
			if err != nil {
				return analyticsdomain.Shortlink{}, err
			}
		}

		link := analyticsdomain.Shortlink{
			ID:        s.genID.Generate(),
			Code:      code,
			TargetURL: target,
			PageID:    pageID,
			BlockID:   blockID,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err = s.repo.InsertShortlink(ctx, s.db, &link)
		if err == nil {
			return link, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return analyticsdomain.Shortlink{}, err
		}
		// Generated code collided; retry with a fresh one.
	}

	return analyticsdomain.Shortlink{}, analyticsdomain.ErrCodeTaken
}

func (s *Service) ResolveShortlink(ctx context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", analyticsdomain.ErrShortlinkNotFound
	}

	link, err := s.repo.FindShortlinkByCode(ctx, s.db, code)
	if err != nil {
		return "", err
	}
	if link == nil {
		return "", analyticsdomain.ErrShortlinkNotFound
	}

	if err := s.repo.IncrementClicks(ctx, s.db, link.ID, s.clock.Now()); err != nil {
		return "", err
	}

	linkID := link.ID
	event := analyticsdomain.AnalyticsEvent{
		ID:          s.genID.Generate(),
		PageID:      link.PageID,
		BlockID:     link.BlockID,
		ShortlinkID: &linkID,
		Type:        analyticsdomain.EventTypeClick,
		Metadata: datatypes.JSONMap{
			"code":       link.Code,
			"target_url": link.TargetURL,
		},
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.InsertEvent(ctx, s.db, &event); err != nil {
		s.log.Warn("failed to record shortlink click event",
			zap.String("code", link.Code), zap.Error(err))
	}

	return link.TargetURL, nil
}

func (s *Service) windowStart(days int) time.Time {
	if days <= 0 {
		days = 30
	}
	return s.clock.Now().AddDate(0, 0, -days)
}

// bucketize derives totals and per-date counters. The bucket key is the
// event timestamp's own calendar date.
func bucketize(events []analyticsdomain.AnalyticsEvent) (views, clicks int64, overTime map[string]analyticsdomain.DayStats) {
	overTime = make(map[string]analyticsdomain.DayStats)
	for _, event := range events {
		day := event.CreatedAt.Format("2006-01-02")
		stats := overTime[day]
		switch event.Type {
		case analyticsdomain.EventTypeView:
			views++
			stats.Views++
		case analyticsdomain.EventTypeClick:
			clicks++
			stats.Clicks++
		default:
			continue
		}
		overTime[day] = stats
	}
	return views, clicks, overTime
}

func conversionRate(views, clicks int64) float64 {
	if views == 0 {
		return 0
	}
	return math.Round(float64(clicks)/float64(views)*100*100) / 100
}

// topLinks groups click events by link label, descending by count, stable on
// first-encountered order, truncated to the top five.
func topLinks(events []analyticsdomain.AnalyticsEvent) []analyticsdomain.LinkStat {
	counts := make(map[string]int64)
	var order []string
	for _, event := range events {
		if event.Type != analyticsdomain.EventTypeClick {
			continue
		}
		label := linkLabel(event.Metadata)
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	stats := make([]analyticsdomain.LinkStat, 0, len(order))
	for _, label := range order {
		stats = append(stats, analyticsdomain.LinkStat{Label: label, Clicks: counts[label]})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Clicks > stats[j].Clicks
	})
	if len(stats) > topLinksLimit {
		stats = stats[:topLinksLimit]
	}
	return stats
}

func linkLabel(metadata datatypes.JSONMap) string {
	if label, ok := metadata["linkLabel"].(string); ok && strings.TrimSpace(label) != "" {
		return label
	}
	if raw, ok := metadata["url"].(string); ok && strings.TrimSpace(raw) != "" {
		return raw
	}
	return unknownLink
}

func randomCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}

func parseOptionalID(raw string) (*snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return nil, analyticsdomain.ErrInvalidRequest
	}
	return &id, nil
}
