package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/smallbiznis/linkpage/internal/analytics/domain"
	analyticsrepo "github.com/smallbiznis/linkpage/internal/analytics/repository"
	analyticsservice "github.com/smallbiznis/linkpage/internal/analytics/service"
	"github.com/smallbiznis/linkpage/internal/auth/token"
	"github.com/smallbiznis/linkpage/internal/clock"
	"github.com/smallbiznis/linkpage/internal/config"
	contentdomain "github.com/smallbiznis/linkpage/internal/content/domain"
	contentrepo "github.com/smallbiznis/linkpage/internal/content/repository"
	contentservice "github.com/smallbiznis/linkpage/internal/content/service"
	identitydomain "github.com/smallbiznis/linkpage/internal/identity/domain"
	identityrepo "github.com/smallbiznis/linkpage/internal/identity/repository"
	identityservice "github.com/smallbiznis/linkpage/internal/identity/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE users (
			id BIGINT PRIMARY KEY,
			email TEXT NOT NULL,
			username TEXT NOT NULL,
			name TEXT NOT NULL,
			password TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'tenant',
			plan TEXT NOT NULL DEFAULT 'free',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_users_email ON users(email)`,
		`CREATE UNIQUE INDEX ux_users_username ON users(username)`,
		`CREATE TABLE pages (
			id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			title TEXT NOT NULL,
			slug TEXT NOT NULL,
			description TEXT,
			is_published BOOLEAN NOT NULL DEFAULT FALSE,
			custom_domain TEXT,
			meta_title TEXT,
			meta_description TEXT,
			config TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_pages_slug ON pages(slug)`,
		`CREATE TABLE blocks (
			id BIGINT PRIMARY KEY,
			page_id BIGINT NOT NULL,
			type TEXT NOT NULL,
			position INTEGER NOT NULL,
			config TEXT,
			is_visible BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE shortlinks (
			id BIGINT PRIMARY KEY,
			code TEXT NOT NULL,
			target_url TEXT NOT NULL,
			page_id BIGINT,
			block_id BIGINT,
			clicks BIGINT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_shortlinks_code ON shortlinks(code)`,
		`CREATE TABLE analytics_events (
			id BIGINT PRIMARY KEY,
			page_id BIGINT,
			block_id BIGINT,
			shortlink_id BIGINT,
			type TEXT NOT NULL,
			metadata TEXT,
			user_agent TEXT,
			ip_address TEXT,
			created_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return db
}

type testEnv struct {
	db           *gorm.DB
	fake         *clock.FakeClock
	identitysvc  identitydomain.Service
	contentsvc   contentdomain.Service
	analyticssvc analyticsdomain.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	logger := zap.NewNop()

	identitysvc := identityservice.NewService(identityservice.Params{
		DB:     db,
		Log:    logger,
		GenID:  node,
		Clock:  fake,
		Cfg:    config.Config{AuthTokenTTL: time.Hour},
		Issuer: token.NewIssuer("test-secret", "linkpage-test"),
		Repo:   identityrepo.Provide(),
	})
	contentsvc := contentservice.NewService(contentservice.Params{
		DB:          db,
		Log:         logger,
		GenID:       node,
		Clock:       fake,
		Repo:        contentrepo.Provide(),
		Identitysvc: identitysvc,
	})
	analyticssvc := analyticsservice.NewService(analyticsservice.Params{
		DB:         db,
		Log:        logger,
		GenID:      node,
		Clock:      fake,
		Repo:       analyticsrepo.Provide(),
		Contentsvc: contentsvc,
	})

	return &testEnv{
		db:           db,
		fake:         fake,
		identitysvc:  identitysvc,
		contentsvc:   contentsvc,
		analyticssvc: analyticssvc,
	}
}

func (e *testEnv) newPage(t *testing.T) (identitydomain.User, contentdomain.Page) {
	t.Helper()

	ctx := context.Background()
	user, err := e.identitysvc.Register(ctx, identitydomain.RegisterRequest{
		Email:    "maya@example.com",
		Username: "maya",
		Name:     "Maya",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	page, err := e.contentsvc.CreatePage(ctx, contentdomain.CreatePageRequest{
		OwnerID: user.ID.String(),
		Title:   "Maya",
		Slug:    "maya",
	})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	return user, page
}

func TestUserSummaryBucketsAndConversionRate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, page := env.newPage(t)
	pageID := page.ID.String()

	// 2024-01-01: two views, one click.
	for i := 0; i < 2; i++ {
		if err := env.analyticssvc.TrackPageView(ctx, pageID, nil); err != nil {
			t.Fatalf("track view: %v", err)
		}
	}
	if err := env.analyticssvc.TrackLinkClick(ctx, pageID, "", nil); err != nil {
		t.Fatalf("track click: %v", err)
	}

	// 2024-01-02: one view, one click, one purchase.
	env.fake.Advance(24 * time.Hour)
	if err := env.analyticssvc.TrackPageView(ctx, pageID, nil); err != nil {
		t.Fatalf("track view: %v", err)
	}
	if err := env.analyticssvc.TrackLinkClick(ctx, pageID, "", nil); err != nil {
		t.Fatalf("track click: %v", err)
	}
	if err := env.analyticssvc.TrackEvent(ctx, analyticsdomain.TrackEventRequest{
		Type:   analyticsdomain.EventTypePurchase,
		PageID: pageID,
	}); err != nil {
		t.Fatalf("track purchase: %v", err)
	}

	summary, err := env.analyticssvc.UserSummary(ctx, user.ID.String(), 30)
	if err != nil {
		t.Fatalf("user summary: %v", err)
	}

	if summary.TotalViews != 3 {
		t.Fatalf("expected 3 views, got %d", summary.TotalViews)
	}
	if summary.TotalClicks != 2 {
		t.Fatalf("expected 2 clicks, got %d", summary.TotalClicks)
	}
	if summary.ConversionRate != 66.67 {
		t.Fatalf("expected conversion rate 66.67, got %v", summary.ConversionRate)
	}
	if len(summary.EventsOverTime) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(summary.EventsOverTime))
	}
	day1 := summary.EventsOverTime["2024-01-01"]
	if day1.Views != 2 || day1.Clicks != 1 {
		t.Fatalf("2024-01-01: expected 2/1, got %d/%d", day1.Views, day1.Clicks)
	}
	day2 := summary.EventsOverTime["2024-01-02"]
	if day2.Views != 1 || day2.Clicks != 1 {
		t.Fatalf("2024-01-02: expected 1/1, got %d/%d", day2.Views, day2.Clicks)
	}
}

func TestConversionRateZeroWithoutViews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, page := env.newPage(t)

	if err := env.analyticssvc.TrackLinkClick(ctx, page.ID.String(), "", nil); err != nil {
		t.Fatalf("track click: %v", err)
	}

	summary, err := env.analyticssvc.UserSummary(ctx, user.ID.String(), 30)
	if err != nil {
		t.Fatalf("user summary: %v", err)
	}
	if summary.ConversionRate != 0 {
		t.Fatalf("expected conversion rate 0, got %v", summary.ConversionRate)
	}
}

func TestSummaryWindowExcludesOldEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, page := env.newPage(t)

	if err := env.analyticssvc.TrackPageView(ctx, page.ID.String(), nil); err != nil {
		t.Fatalf("track view: %v", err)
	}

	env.fake.Advance(40 * 24 * time.Hour)
	if err := env.analyticssvc.TrackPageView(ctx, page.ID.String(), nil); err != nil {
		t.Fatalf("track view: %v", err)
	}

	summary, err := env.analyticssvc.UserSummary(ctx, user.ID.String(), 30)
	if err != nil {
		t.Fatalf("user summary: %v", err)
	}
	if summary.TotalViews != 1 {
		t.Fatalf("expected 1 view inside window, got %d", summary.TotalViews)
	}
}

func TestPageSummaryTopLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, page := env.newPage(t)
	pageID := page.ID.String()

	clicks := []map[string]any{
		{"linkLabel": "Instagram"},
		{"linkLabel": "Instagram"},
		{"linkLabel": "Instagram"},
		{"url": "https://example.com/shop"},
		{"url": "https://example.com/shop"},
		{},
	}
	for _, md := range clicks {
		if err := env.analyticssvc.TrackLinkClick(ctx, pageID, "", md); err != nil {
			t.Fatalf("track click: %v", err)
		}
	}

	summary, err := env.analyticssvc.PageSummary(ctx, user.ID.String(), pageID, 30)
	if err != nil {
		t.Fatalf("page summary: %v", err)
	}

	want := []analyticsdomain.LinkStat{
		{Label: "Instagram", Clicks: 3},
		{Label: "https://example.com/shop", Clicks: 2},
		{Label: "Unknown Link", Clicks: 1},
	}
	if len(summary.TopPerformingLinks) != len(want) {
		t.Fatalf("expected %d links, got %d", len(want), len(summary.TopPerformingLinks))
	}
	for i, stat := range summary.TopPerformingLinks {
		if stat != want[i] {
			t.Fatalf("link %d: expected %+v, got %+v", i, want[i], stat)
		}
	}
}

func TestPageSummaryForeignPageLooksMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, page := env.newPage(t)

	other, err := env.identitysvc.Register(ctx, identitydomain.RegisterRequest{
		Email:    "theo@example.com",
		Username: "theo",
		Name:     "Theo",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = env.analyticssvc.PageSummary(ctx, other.ID.String(), page.ID.String(), 30)
	if !errors.Is(err, contentdomain.ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}

func TestCreateShortlinkGeneratesCode(t *testing.T) {
	env := newTestEnv(t)

	link, err := env.analyticssvc.CreateShortlink(context.Background(), analyticsdomain.CreateShortlinkRequest{
		TargetURL: "https://example.com/store",
	})
	if err != nil {
		t.Fatalf("create shortlink: %v", err)
	}
	if len(link.Code) != 6 {
		t.Fatalf("expected 6-char code, got %q", link.Code)
	}
	for _, r := range link.Code {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			t.Fatalf("code %q contains non-alphanumeric rune %q", link.Code, r)
		}
	}
}

func TestCreateShortlinkRejectsBadURL(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"", "not a url", "/relative/path"} {
		_, err := env.analyticssvc.CreateShortlink(context.Background(), analyticsdomain.CreateShortlinkRequest{
			TargetURL: target,
		})
		if !errors.Is(err, analyticsdomain.ErrInvalidTargetURL) {
			t.Fatalf("target %q: expected ErrInvalidTargetURL, got %v", target, err)
		}
	}
}

func TestCreateShortlinkExplicitCodeConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.analyticssvc.CreateShortlink(ctx, analyticsdomain.CreateShortlinkRequest{
		Code:      "promo1",
		TargetURL: "https://example.com/a",
	}); err != nil {
		t.Fatalf("create shortlink: %v", err)
	}

	_, err := env.analyticssvc.CreateShortlink(ctx, analyticsdomain.CreateShortlinkRequest{
		Code:      "promo1",
		TargetURL: "https://example.com/b",
	})
	if !errors.Is(err, analyticsdomain.ErrCodeTaken) {
		t.Fatalf("expected ErrCodeTaken, got %v", err)
	}
}

func TestResolveShortlinkCountsClickAndAppendsEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	link, err := env.analyticssvc.CreateShortlink(ctx, analyticsdomain.CreateShortlinkRequest{
		TargetURL: "https://example.com/store",
	})
	if err != nil {
		t.Fatalf("create shortlink: %v", err)
	}

	for i := 0; i < 2; i++ {
		target, err := env.analyticssvc.ResolveShortlink(ctx, link.Code)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if target != "https://example.com/store" {
			t.Fatalf("unexpected target %q", target)
		}
	}

	var clicks int64
	if err := env.db.Raw("SELECT clicks FROM shortlinks WHERE id = ?", link.ID).Scan(&clicks).Error; err != nil {
		t.Fatalf("scan clicks: %v", err)
	}
	if clicks != 2 {
		t.Fatalf("expected 2 clicks, got %d", clicks)
	}

	var eventCount int64
	if err := env.db.Raw(
		"SELECT COUNT(1) FROM analytics_events WHERE shortlink_id = ? AND type = 'click'", link.ID,
	).Scan(&eventCount).Error; err != nil {
		t.Fatalf("scan events: %v", err)
	}
	if eventCount != 2 {
		t.Fatalf("expected 2 click events, got %d", eventCount)
	}

	// The counter update is stamped with the service clock.
	var updatedAt time.Time
	if err := env.db.Raw("SELECT updated_at FROM shortlinks WHERE id = ?", link.ID).Scan(&updatedAt).Error; err != nil {
		t.Fatalf("scan updated_at: %v", err)
	}
	if updatedAt.Unix() != env.fake.Now().Unix() {
		t.Fatalf("expected updated_at %v, got %v", env.fake.Now(), updatedAt)
	}
}

func TestResolveUnknownShortlink(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.analyticssvc.ResolveShortlink(context.Background(), "nosuch")
	if !errors.Is(err, analyticsdomain.ErrShortlinkNotFound) {
		t.Fatalf("expected ErrShortlinkNotFound, got %v", err)
	}
}
