package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertPage(ctx context.Context, db *gorm.DB, page *Page) error
	FindPageByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Page, error)
	FindPageBySlug(ctx context.Context, db *gorm.DB, slug string) (*Page, error)
	ListPagesByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Page, error)
	CountPagesByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
	UpdatePage(ctx context.Context, db *gorm.DB, page *Page) error
	DeletePage(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertBlock(ctx context.Context, db *gorm.DB, block *Block) error
	InsertBlocks(ctx context.Context, db *gorm.DB, blocks []Block) error
	FindBlockByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Block, error)
	ListBlocksByPage(ctx context.Context, db *gorm.DB, pageID snowflake.ID) ([]Block, error)
	MaxBlockPosition(ctx context.Context, db *gorm.DB, pageID snowflake.ID) (int, error)
	UpdateBlock(ctx context.Context, db *gorm.DB, block *Block) error
	DeleteBlock(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	UpdateBlockPosition(ctx context.Context, db *gorm.DB, id snowflake.ID, position int) error
}
