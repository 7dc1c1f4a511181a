package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	admindomain "github.com/smallbiznis/linkpage/internal/admin/domain"
	analyticsdomain "github.com/smallbiznis/linkpage/internal/analytics/domain"
	auditdomain "github.com/smallbiznis/linkpage/internal/audit/domain"
	"github.com/smallbiznis/linkpage/internal/auth/token"
	billingdomain "github.com/smallbiznis/linkpage/internal/billing/domain"
	"github.com/smallbiznis/linkpage/internal/config"
	contentdomain "github.com/smallbiznis/linkpage/internal/content/domain"
	identitydomain "github.com/smallbiznis/linkpage/internal/identity/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config) *gin.Engine {
	return NewEngine(cfg)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger
	issuer *token.Issuer

	identitysvc  identitydomain.Service
	contentsvc   contentdomain.Service
	analyticssvc analyticsdomain.Service
	billingsvc   billingdomain.Service
	adminsvc     admindomain.Service
	auditsvc     auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin    *gin.Engine
	Cfg    config.Config
	Log    *zap.Logger
	Issuer *token.Issuer

	Identitysvc  identitydomain.Service
	Contentsvc   contentdomain.Service
	Analyticssvc analyticsdomain.Service
	Billingsvc   billingdomain.Service
	Adminsvc     admindomain.Service
	Auditsvc     auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		log:    p.Log.Named("http.server"),
		issuer: p.Issuer,

		identitysvc:  p.Identitysvc,
		contentsvc:   p.Contentsvc,
		analyticssvc: p.Analyticssvc,
		billingsvc:   p.Billingsvc,
		adminsvc:     p.Adminsvc,
		auditsvc:     p.Auditsvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	svc.registerPublicRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/api/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.PATCH("/me", s.AuthRequired(), s.UpdateProfile)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	pages := api.Group("/pages")
	{
		pages.POST("", s.CreatePage)
		pages.GET("", s.ListPages)
		pages.GET("/:pageId", s.GetPage)
		pages.PATCH("/:pageId", s.UpdatePage)
		pages.DELETE("/:pageId", s.DeletePage)
		pages.POST("/:pageId/blocks", s.CreateBlock)
		pages.PUT("/:pageId/blocks/order", s.ReorderBlocks)
		pages.GET("/:pageId/analytics", s.PageAnalytics)
	}

	blocks := api.Group("/blocks")
	{
		blocks.PATCH("/:blockId", s.UpdateBlock)
		blocks.DELETE("/:blockId", s.DeleteBlock)
	}

	analytics := api.Group("/analytics")
	{
		analytics.GET("/summary", s.AnalyticsSummary)
	}

	shortlinks := api.Group("/shortlinks")
	{
		shortlinks.POST("", s.CreateShortlink)
	}

	billing := api.Group("/billing")
	{
		billing.GET("/packages", s.ListPackages)
		billing.POST("/checkout", s.CreateCheckout)
		billing.GET("/payments", s.ListPayments)
		billing.GET("/subscription", s.GetSubscription)
	}
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin", s.AuthRequired(), s.RequireAdmin())

	admin.GET("/stats", s.AdminStats)
	admin.GET("/users", s.AdminListUsers)
	admin.PATCH("/users/:userId/plan", s.AdminUpdateUserPlan)
	admin.DELETE("/users/:userId", s.AdminDeleteUser)
	admin.POST("/users/:userId/impersonate", s.AdminImpersonateUser)
	admin.PATCH("/packages/:packageId", s.AdminUpdatePackage)
	admin.GET("/audit-logs", s.AdminListAuditLogs)
}

func (s *Server) registerPublicRoutes() {
	s.engine.POST("/webhooks/midtrans", s.MidtransWebhook)
	s.engine.POST("/api/events", s.TrackEvent)
	s.engine.GET("/s/:code", s.ResolveShortlink)
	s.engine.GET("/:slug", s.PublicPage)
}
