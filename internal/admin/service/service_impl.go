package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	admindomain "github.com/smallbiznis/linkpage/internal/admin/domain"
	auditdomain "github.com/smallbiznis/linkpage/internal/audit/domain"
	"github.com/smallbiznis/linkpage/internal/auth/token"
	billingdomain "github.com/smallbiznis/linkpage/internal/billing/domain"
	"github.com/smallbiznis/linkpage/internal/clock"
	"github.com/smallbiznis/linkpage/internal/config"
	identitydomain "github.com/smallbiznis/linkpage/internal/identity/domain"
	"github.com/smallbiznis/linkpage/internal/plan"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// recentSignupsWindow bounds the Stats signup counter.
const recentSignupsWindow = 30 * 24 * time.Hour

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Cfg    config.Config
	Issuer *token.Issuer

	IdentityRepo identitydomain.Repository
	Identitysvc  identitydomain.Service
	Billingsvc   billingdomain.Service
	Auditsvc     auditdomain.Service
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	clock  clock.Clock
	cfg    config.Config
	issuer *token.Issuer

	identityrepo identitydomain.Repository
	identitysvc  identitydomain.Service
	billingsvc   billingdomain.Service
	auditsvc     auditdomain.Service
}

func NewService(p Params) admindomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("admin.service"),
		clock:  p.Clock,
		cfg:    p.Cfg,
		issuer: p.Issuer,

		identityrepo: p.IdentityRepo,
		identitysvc:  p.Identitysvc,
		billingsvc:   p.Billingsvc,
		auditsvc:     p.Auditsvc,
	}
}

func (s *Service) Stats(ctx context.Context) (admindomain.Stats, error) {
	total, err := s.identityrepo.Count(ctx, s.db)
	if err != nil {
		return admindomain.Stats{}, err
	}
	pro, err := s.identityrepo.CountByPlan(ctx, s.db, plan.Pro)
	if err != nil {
		return admindomain.Stats{}, err
	}
	recent, err := s.identityrepo.CountCreatedSince(ctx, s.db, s.clock.Now().Add(-recentSignupsWindow))
	if err != nil {
		return admindomain.Stats{}, err
	}

	var rate float64
	if total > 0 {
		rate = math.Round(float64(pro)/float64(total)*100*100) / 100
	}

	return admindomain.Stats{
		TotalUsers:     total,
		ProUsers:       pro,
		RecentSignups:  recent,
		ConversionRate: rate,
	}, nil
}

func (s *Service) ListUsers(ctx context.Context, offset, limit int) ([]identitydomain.User, int64, error) {
	return s.identitysvc.List(ctx, offset, limit)
}

func (s *Service) UpdateUserPlan(ctx context.Context, req admindomain.UpdateUserPlanRequest) (identitydomain.User, error) {
	adminID, err := parseID(req.AdminUserID)
	if err != nil {
		return identitydomain.User{}, admindomain.ErrInvalidRequest
	}
	if !plan.Valid(req.Plan) {
		return identitydomain.User{}, identitydomain.ErrInvalidPlan
	}

	user, err := s.identitysvc.GetByID(ctx, req.UserID)
	if err != nil {
		return identitydomain.User{}, err
	}
	previous := user.Plan

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.identityrepo.UpdatePlan(ctx, tx, user.ID, req.Plan); err != nil {
			return err
		}
		return s.auditsvc.Record(ctx, tx, auditdomain.RecordRequest{
			AdminUserID:  adminID,
			Action:       "update_user_plan",
			ResourceType: "user",
			ResourceID:   user.ID.String(),
			Metadata: datatypes.JSONMap{
				"previous_plan": string(previous),
				"new_plan":      string(req.Plan),
			},
		})
	})
	if err != nil {
		return identitydomain.User{}, err
	}

	user.Plan = req.Plan
	user.UpdatedAt = s.clock.Now()
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, adminUserID, userID string) error {
	adminID, err := parseID(adminUserID)
	if err != nil {
		return admindomain.ErrInvalidRequest
	}

	user, err := s.identitysvc.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.ID == adminID {
		return admindomain.ErrSelfTarget
	}

	// Pages, blocks, shortlinks and events go with the user via the
	// foreign key cascade.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.identityrepo.Delete(ctx, tx, user.ID); err != nil {
			return err
		}
		return s.auditsvc.Record(ctx, tx, auditdomain.RecordRequest{
			AdminUserID:  adminID,
			Action:       "delete_user",
			ResourceType: "user",
			ResourceID:   user.ID.String(),
			Metadata: datatypes.JSONMap{
				"email":    user.Email,
				"username": user.Username,
			},
		})
	})
}

func (s *Service) ImpersonateUser(ctx context.Context, adminUserID, userID string) (admindomain.ImpersonateResponse, error) {
	adminID, err := parseID(adminUserID)
	if err != nil {
		return admindomain.ImpersonateResponse{}, admindomain.ErrInvalidRequest
	}

	user, err := s.identitysvc.GetByID(ctx, userID)
	if err != nil {
		return admindomain.ImpersonateResponse{}, err
	}
	if user.ID == adminID {
		return admindomain.ImpersonateResponse{}, admindomain.ErrSelfTarget
	}

	now := s.clock.Now()
	signed, err := s.issuer.MintImpersonation(user.ID.String(), string(user.Role), adminID.String(), s.cfg.ImpersonateTTL, now)
	if err != nil {
		return admindomain.ImpersonateResponse{}, err
	}

	if err := s.auditsvc.Record(ctx, nil, auditdomain.RecordRequest{
		AdminUserID:  adminID,
		Action:       "impersonate_user",
		ResourceType: "user",
		ResourceID:   user.ID.String(),
		Metadata: datatypes.JSONMap{
			"username": user.Username,
		},
	}); err != nil {
		return admindomain.ImpersonateResponse{}, err
	}

	return admindomain.ImpersonateResponse{Token: signed, User: user}, nil
}

func (s *Service) UpdatePackage(ctx context.Context, adminUserID string, req billingdomain.UpdatePackageRequest) (*billingdomain.Package, error) {
	adminID, err := parseID(adminUserID)
	if err != nil {
		return nil, admindomain.ErrInvalidRequest
	}

	pkg, err := s.billingsvc.UpdatePackage(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.auditsvc.Record(ctx, nil, auditdomain.RecordRequest{
		AdminUserID:  adminID,
		Action:       "update_package",
		ResourceType: "package",
		ResourceID:   pkg.ID.String(),
		Metadata: datatypes.JSONMap{
			"handle":      pkg.Handle,
			"price_cents": pkg.PriceCents,
		},
	}); err != nil {
		return nil, err
	}
	return pkg, nil
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
