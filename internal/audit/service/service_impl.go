package service

import (
	"context"
	"strings"

	auditdomain "github.com/smallbiznis/linkpage/internal/audit/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/linkpage/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 50
	maxListLimit     = 250
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, req auditdomain.RecordRequest) error {
	action := strings.TrimSpace(req.Action)
	resourceType := strings.TrimSpace(req.ResourceType)
	if req.AdminUserID == 0 || action == "" || resourceType == "" {
		return auditdomain.ErrInvalidRequest
	}

	db := tx
	if db == nil {
		db = s.db
	}

	entry := &auditdomain.AdminAuditLog{
		ID:           s.genID.Generate(),
		AdminUserID:  req.AdminUserID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   req.ResourceID,
		Metadata:     req.Metadata,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, db, entry); err != nil {
		return err
	}

	s.log.Info("admin action recorded",
		zap.String("admin_user_id", req.AdminUserID.String()),
		zap.String("action", action),
		zap.String("resource_id", req.ResourceID),
	)
	return nil
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]auditdomain.AdminAuditLog, int64, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	entries, err := s.repo.List(ctx, s.db, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, s.db)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
