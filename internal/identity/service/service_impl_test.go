package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/linkpage/internal/auth/token"
	"github.com/smallbiznis/linkpage/internal/clock"
	"github.com/smallbiznis/linkpage/internal/config"
	identitydomain "github.com/smallbiznis/linkpage/internal/identity/domain"
	identityrepo "github.com/smallbiznis/linkpage/internal/identity/repository"
	identityservice "github.com/smallbiznis/linkpage/internal/identity/service"
	"github.com/smallbiznis/linkpage/internal/plan"
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
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) identitydomain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	return identityservice.NewService(identityservice.Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
		Cfg:    config.Config{AuthTokenTTL: time.Hour},
		Issuer: token.NewIssuer("test-secret", "linkpage-test"),
		Repo:   identityrepo.Provide(),
	})
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	user, err := svc.Register(ctx, identitydomain.RegisterRequest{
		Email:    "Maya@Example.com",
		Username: "maya",
		Name:     "Maya",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "maya@example.com" {
		t.Fatalf("expected lowercased email, got %s", user.Email)
	}
	if user.Role != identitydomain.RoleTenant {
		t.Fatalf("expected tenant role, got %s", user.Role)
	}
	if user.Plan != plan.Free {
		t.Fatalf("expected free plan, got %s", user.Plan)
	}

	result, err := svc.Login(ctx, identitydomain.LoginRequest{
		Email:    "maya@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}
	if result.User.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, result.User.ID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	if _, err := svc.Register(ctx, identitydomain.RegisterRequest{
		Email:    "maya@example.com",
		Username: "maya",
		Name:     "Maya",
		Password: "correct-horse",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Login(ctx, identitydomain.LoginRequest{
		Email:    "maya@example.com",
		Password: "wrong-horse",
	})
	if !errors.Is(err, identitydomain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	if _, err := svc.Register(ctx, identitydomain.RegisterRequest{
		Email:    "maya@example.com",
		Username: "maya",
		Name:     "Maya",
		Password: "correct-horse",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Register(ctx, identitydomain.RegisterRequest{
		Email:    "maya@example.com",
		Username: "other",
		Name:     "Other",
		Password: "correct-horse",
	})
	if !errors.Is(err, identitydomain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	if _, err := svc.Register(ctx, identitydomain.RegisterRequest{
		Email:    "maya@example.com",
		Username: "maya",
		Name:     "Maya",
		Password: "correct-horse",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Register(ctx, identitydomain.RegisterRequest{
		Email:    "other@example.com",
		Username: "maya",
		Name:     "Other",
		Password: "correct-horse",
	})
	if !errors.Is(err, identitydomain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Register(context.Background(), identitydomain.RegisterRequest{
		Email:    "maya@example.com",
		Username: "maya",
		Name:     "Maya",
		Password: "short",
	})
	if !errors.Is(err, identitydomain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestUpdatePlanPersists(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	user, err := svc.Register(ctx, identitydomain.RegisterRequest{
		Email:    "maya@example.com",
		Username: "maya",
		Name:     "Maya",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.UpdatePlan(ctx, user.ID.String(), plan.Pro); err != nil {
		t.Fatalf("update plan: %v", err)
	}

	reloaded, err := svc.GetByID(ctx, user.ID.String())
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if reloaded.Plan != plan.Pro {
		t.Fatalf("expected pro plan, got %s", reloaded.Plan)
	}
}
