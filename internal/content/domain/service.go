package domain

import (
	"context"
	"errors"
)

type CreatePageRequest struct {
	OwnerID     string
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description *string        `json:"description,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
}

type UpdatePageRequest struct {
	ActorID         string
	PageID          string
	Title           *string        `json:"title,omitempty"`
	Description     *string        `json:"description,omitempty"`
	IsPublished     *bool          `json:"is_published,omitempty"`
	MetaTitle       *string        `json:"meta_title,omitempty"`
	MetaDescription *string        `json:"meta_description,omitempty"`
	Config          map[string]any `json:"config,omitempty"`
}

type CreateBlockRequest struct {
	ActorID   string
	PageID    string
	Type      BlockType      `json:"type"`
	Config    map[string]any `json:"config,omitempty"`
	IsVisible *bool          `json:"is_visible,omitempty"`
}

type UpdateBlockRequest struct {
	ActorID   string
	BlockID   string
	Config    map[string]any `json:"config,omitempty"`
	IsVisible *bool          `json:"is_visible,omitempty"`
}

type ReorderBlocksRequest struct {
	ActorID  string
	PageID   string
	BlockIDs []string `json:"block_ids"`
}

// PageDetail is a page with its blocks sorted ascending by position.
type PageDetail struct {
	Page   Page    `json:"page"`
	Blocks []Block `json:"blocks"`
}

type Service interface {
	CreatePage(ctx context.Context, req CreatePageRequest) (Page, error)
	GetPageBySlug(ctx context.Context, slug string) (PageDetail, error)
	GetPage(ctx context.Context, actorID, pageID string) (PageDetail, error)
	ListPages(ctx context.Context, ownerID string) ([]Page, error)
	UpdatePage(ctx context.Context, req UpdatePageRequest) (Page, error)
	DeletePage(ctx context.Context, actorID, pageID string) error

	CreateBlock(ctx context.Context, req CreateBlockRequest) (Block, error)
	UpdateBlock(ctx context.Context, req UpdateBlockRequest) (Block, error)
	DeleteBlock(ctx context.Context, actorID, blockID string) error
	ReorderBlocks(ctx context.Context, req ReorderBlocksRequest) error
}

var (
	ErrInvalidRequest   = errors.New("invalid_request")
	ErrInvalidPage      = errors.New("invalid_page")
	ErrInvalidBlock     = errors.New("invalid_block")
	ErrInvalidBlockType = errors.New("invalid_block_type")
	ErrSlugTaken        = errors.New("slug_taken")
	ErrUpgradeRequired  = errors.New("upgrade_required")
	ErrPageNotFound     = errors.New("page_not_found")
	ErrBlockNotFound    = errors.New("block_not_found")
)
