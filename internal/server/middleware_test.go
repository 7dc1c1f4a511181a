package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/linkpage/internal/auth/token"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newMiddlewareTestServer(t *testing.T) (*Server, *observer.ObservedLogs) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	srv := &Server{
		engine: gin.New(),
		log:    zap.New(core),
		issuer: token.NewIssuer("test-secret", "linkpage-test"),
	}
	srv.engine.Use(ErrorHandlingMiddleware())
	srv.engine.GET("/protected", srv.AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": currentUserID(c)})
	})
	srv.engine.GET("/admin-only", srv.AuthRequired(), srv.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return srv, logs
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	srv, _ := newMiddlewareTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	srv.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRequiredAcceptsBearerToken(t *testing.T) {
	srv, logs := newMiddlewareTestServer(t)

	raw, err := srv.issuer.Mint("12345", "tenant", time.Hour, time.Now().UTC())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	srv.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if n := logs.FilterMessage("impersonated request").Len(); n != 0 {
		t.Fatalf("expected no impersonation log for a login token, got %d", n)
	}
}

func TestAuthRequiredLogsImpersonatedRequest(t *testing.T) {
	srv, logs := newMiddlewareTestServer(t)

	raw, err := srv.issuer.MintImpersonation("12345", "tenant", "99999", 15*time.Minute, time.Now().UTC())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	srv.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	entries := logs.FilterMessage("impersonated request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 impersonation log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["actor"] != "99999" {
		t.Fatalf("expected actor 99999, got %v", fields["actor"])
	}
	if fields["user_id"] != "12345" {
		t.Fatalf("expected user_id 12345, got %v", fields["user_id"])
	}
}

func TestRequireAdminBlocksTenantRole(t *testing.T) {
	srv, _ := newMiddlewareTestServer(t)

	raw, err := srv.issuer.Mint("12345", "tenant", time.Hour, time.Now().UTC())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	srv.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAdminAllowsAdminRole(t *testing.T) {
	srv, _ := newMiddlewareTestServer(t)

	raw, err := srv.issuer.Mint("12345", "admin", time.Hour, time.Now().UTC())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	srv.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
