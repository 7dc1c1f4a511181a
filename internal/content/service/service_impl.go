package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/linkpage/internal/clock"
	contentdomain "github.com/smallbiznis/linkpage/internal/content/domain"
	identitydomain "github.com/smallbiznis/linkpage/internal/identity/domain"
	"github.com/smallbiznis/linkpage/internal/plan"
	"github.com/smallbiznis/linkpage/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  contentdomain.Repository

	Identitysvc identitydomain.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  contentdomain.Repository

	identitysvc identitydomain.Service
}

func NewService(p Params) contentdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("content.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,

		identitysvc: p.Identitysvc,
	}
}

func (s *Service) CreatePage(ctx context.Context, req contentdomain.CreatePageRequest) (contentdomain.Page, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return contentdomain.Page{}, contentdomain.ErrInvalidRequest
	}

	pageSlug := slug.Make(strings.TrimSpace(req.Slug))
	if pageSlug == "" {
		pageSlug = slug.Make(title)
	}
	if pageSlug == "" {
		return contentdomain.Page{}, contentdomain.ErrInvalidRequest
	}

	owner, err := s.identitysvc.GetByID(ctx, req.OwnerID)
	if err != nil {
		return contentdomain.Page{}, err
	}

	owned, err := s.repo.CountPagesByUser(ctx, s.db, owner.ID)
	if err != nil {
		return contentdomain.Page{}, err
	}
	if !plan.CanCreatePage(owner.Plan, int(owned)) {
		return contentdomain.Page{}, contentdomain.ErrUpgradeRequired
	}

	now := s.clock.Now()
	page := contentdomain.Page{
		ID:          s.genID.Generate(),
		UserID:      owner.ID,
		Title:       title,
		Slug:        pageSlug,
		Description: normalizeOptional(req.Description),
		IsPublished: true,
		Config:      datatypes.JSONMap(req.Config),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// The slug unique index is the authority; a lost race between two
	// creators surfaces here as a duplicate key.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertPage(ctx, tx, &page); err != nil {
			return err
		}
		if owner.Plan == plan.Free && owned == 0 {
			return s.repo.InsertBlocks(ctx, tx, s.defaultBlocks(page.ID, now))
		}
		return nil
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return contentdomain.Page{}, contentdomain.ErrSlugTaken
		}
		return contentdomain.Page{}, err
	}

	s.log.Info("page created",
		zap.String("page_id", page.ID.String()),
		zap.String("slug", page.Slug),
		zap.String("user_id", owner.ID.String()))
	return page, nil
}

// defaultBlocks guarantees every free user's first page renders something
// useful out of the box.
func (s *Service) defaultBlocks(pageID snowflake.ID, now time.Time) []contentdomain.Block {
	types := plan.DefaultBlockTypes()
	blocks := make([]contentdomain.Block, 0, len(types))
	for i, bt := range types {
		blocks = append(blocks, contentdomain.Block{
			ID:        s.genID.Generate(),
			PageID:    pageID,
			Type:      contentdomain.BlockType(bt),
			Position:  i + 1,
			Config:    datatypes.JSONMap{},
			IsVisible: true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return blocks
}

func (s *Service) GetPageBySlug(ctx context.Context, rawSlug string) (contentdomain.PageDetail, error) {
	pageSlug := strings.TrimSpace(rawSlug)
	if pageSlug == "" {
		return contentdomain.PageDetail{}, contentdomain.ErrInvalidRequest
	}

	page, err := s.repo.FindPageBySlug(ctx, s.db, pageSlug)
	if err != nil {
		return contentdomain.PageDetail{}, err
	}
	if page == nil || !page.IsPublished {
		return contentdomain.PageDetail{}, contentdomain.ErrPageNotFound
	}

	blocks, err := s.repo.ListBlocksByPage(ctx, s.db, page.ID)
	if err != nil {
		return contentdomain.PageDetail{}, err
	}

	visible := make([]contentdomain.Block, 0, len(blocks))
	for _, block := range blocks {
		if block.IsVisible {
			visible = append(visible, block)
		}
	}

	return contentdomain.PageDetail{Page: *page, Blocks: visible}, nil
}

func (s *Service) GetPage(ctx context.Context, actorID, pageID string) (contentdomain.PageDetail, error) {
	page, _, err := s.authorizePage(ctx, actorID, pageID)
	if err != nil {
		return contentdomain.PageDetail{}, err
	}

	blocks, err := s.repo.ListBlocksByPage(ctx, s.db, page.ID)
	if err != nil {
		return contentdomain.PageDetail{}, err
	}
	return contentdomain.PageDetail{Page: *page, Blocks: blocks}, nil
}

func (s *Service) ListPages(ctx context.Context, ownerID string) ([]contentdomain.Page, error) {
	owner, err := s.identitysvc.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPagesByUser(ctx, s.db, owner.ID)
}

func (s *Service) UpdatePage(ctx context.Context, req contentdomain.UpdatePageRequest) (contentdomain.Page, error) {
	page, _, err := s.authorizePage(ctx, req.ActorID, req.PageID)
	if err != nil {
		return contentdomain.Page{}, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return contentdomain.Page{}, contentdomain.ErrInvalidRequest
		}
		page.Title = title
	}
	if req.Description != nil {
		page.Description = normalizeOptional(req.Description)
	}
	if req.IsPublished != nil {
		page.IsPublished = *req.IsPublished
	}
	if req.MetaTitle != nil {
		page.MetaTitle = normalizeOptional(req.MetaTitle)
	}
	if req.MetaDescription != nil {
		page.MetaDescription = normalizeOptional(req.MetaDescription)
	}
	if req.Config != nil {
		page.Config = datatypes.JSONMap(req.Config)
	}
	page.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdatePage(ctx, s.db, page); err != nil {
		return contentdomain.Page{}, err
	}
	return *page, nil
}

func (s *Service) DeletePage(ctx context.Context, actorID, pageID string) error {
	page, _, err := s.authorizePage(ctx, actorID, pageID)
	if err != nil {
		return err
	}

	// Blocks, shortlinks and analytics events cascade via foreign keys.
	return s.repo.DeletePage(ctx, s.db, page.ID)
}

func (s *Service) CreateBlock(ctx context.Context, req contentdomain.CreateBlockRequest) (contentdomain.Block, error) {
	if !req.Type.Valid() {
		return contentdomain.Block{}, contentdomain.ErrInvalidBlockType
	}

	page, actor, err := s.authorizePage(ctx, req.ActorID, req.PageID)
	if err != nil {
		return contentdomain.Block{}, err
	}

	// Gating always uses the page owner's current plan, which for non-admin
	// actors is the actor itself.
	ownerPlan := actor.Plan
	if actor.ID != page.UserID {
		owner, err := s.identitysvc.GetByID(ctx, page.UserID.String())
		if err != nil {
			return contentdomain.Block{}, err
		}
		ownerPlan = owner.Plan
	}
	if !plan.BlockTypeAllowed(ownerPlan, string(req.Type)) {
		return contentdomain.Block{}, contentdomain.ErrUpgradeRequired
	}

	maxPos, err := s.repo.MaxBlockPosition(ctx, s.db, page.ID)
	if err != nil {
		return contentdomain.Block{}, err
	}

	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}

	now := s.clock.Now()
	block := contentdomain.Block{
		ID:        s.genID.Generate(),
		PageID:    page.ID,
		Type:      req.Type,
		Position:  maxPos + 1,
		Config:    datatypes.JSONMap(req.Config),
		IsVisible: visible,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.InsertBlock(ctx, s.db, &block); err != nil {
		return contentdomain.Block{}, err
	}
	return block, nil
}

func (s *Service) UpdateBlock(ctx context.Context, req contentdomain.UpdateBlockRequest) (contentdomain.Block, error) {
	block, err := s.findBlock(ctx, req.BlockID)
	if err != nil {
		return contentdomain.Block{}, err
	}
	if _, _, err := s.authorizePage(ctx, req.ActorID, block.PageID.String()); err != nil {
		return contentdomain.Block{}, err
	}

	if req.Config != nil {
		block.Config = datatypes.JSONMap(req.Config)
	}
	if req.IsVisible != nil {
		block.IsVisible = *req.IsVisible
	}
	block.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdateBlock(ctx, s.db, block); err != nil {
		return contentdomain.Block{}, err
	}
	return *block, nil
}

func (s *Service) DeleteBlock(ctx context.Context, actorID, blockID string) error {
	block, err := s.findBlock(ctx, blockID)
	if err != nil {
		return err
	}
	if _, _, err := s.authorizePage(ctx, actorID, block.PageID.String()); err != nil {
		return err
	}
	return s.repo.DeleteBlock(ctx, s.db, block.ID)
}

func (s *Service) ReorderBlocks(ctx context.Context, req contentdomain.ReorderBlocksRequest) error {
	if len(req.BlockIDs) == 0 {
		return contentdomain.ErrInvalidRequest
	}

	page, _, err := s.authorizePage(ctx, req.ActorID, req.PageID)
	if err != nil {
		return err
	}

	blocks, err := s.repo.ListBlocksByPage(ctx, s.db, page.ID)
	if err != nil {
		return err
	}
	onPage := make(map[snowflake.ID]struct{}, len(blocks))
	for _, block := range blocks {
		onPage[block.ID] = struct{}{}
	}

	ordered := make([]snowflake.ID, 0, len(req.BlockIDs))
	seen := make(map[snowflake.ID]struct{}, len(req.BlockIDs))
	for _, raw := range req.BlockIDs {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil || id == 0 {
			return contentdomain.ErrInvalidBlock
		}
		if _, ok := onPage[id]; !ok {
			return contentdomain.ErrBlockNotFound
		}
		if _, dup := seen[id]; dup {
			return contentdomain.ErrInvalidRequest
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}

	// One transaction so an interrupted reorder never leaves a partially
	// applied order visible.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for idx, id := range ordered {
			if err := s.repo.UpdateBlockPosition(ctx, tx, id, idx+1); err != nil {
				return err
			}
		}
		return nil
	})
}

// authorizePage resolves the page and enforces ownership-as-NotFound: a page
// owned by someone else looks identical to a missing one unless the actor is
// an admin.
func (s *Service) authorizePage(ctx context.Context, actorID, pageID string) (*contentdomain.Page, *identitydomain.User, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(pageID))
	if err != nil || id == 0 {
		return nil, nil, contentdomain.ErrInvalidPage
	}

	actor, err := s.identitysvc.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	page, err := s.repo.FindPageByID(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	if page == nil {
		return nil, nil, contentdomain.ErrPageNotFound
	}
	if page.UserID != actor.ID && actor.Role != identitydomain.RoleAdmin {
		return nil, nil, contentdomain.ErrPageNotFound
	}
	return page, &actor, nil
}

func (s *Service) findBlock(ctx context.Context, blockID string) (*contentdomain.Block, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(blockID))
	if err != nil || id == 0 {
		return nil, contentdomain.ErrInvalidBlock
	}

	block, err := s.repo.FindBlockByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, contentdomain.ErrBlockNotFound
	}
	return block, nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
