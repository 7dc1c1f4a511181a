package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	contentdomain "github.com/smallbiznis/linkpage/internal/content/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() contentdomain.Repository {
	return &repo{}
}

func (r *repo) InsertPage(ctx context.Context, db *gorm.DB, page *contentdomain.Page) error {
	return db.WithContext(ctx).Create(page).Error
}

func (r *repo) FindPageByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*contentdomain.Page, error) {
	var page contentdomain.Page
	err := db.WithContext(ctx).Where("id = ?", id).First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &page, nil
}

func (r *repo) FindPageBySlug(ctx context.Context, db *gorm.DB, slug string) (*contentdomain.Page, error) {
	var page contentdomain.Page
	err := db.WithContext(ctx).Where("slug = ?", slug).First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &page, nil
}

func (r *repo) ListPagesByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]contentdomain.Page, error) {
	var pages []contentdomain.Page
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&pages).Error
	return pages, err
}

func (r *repo) CountPagesByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&contentdomain.Page{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *repo) UpdatePage(ctx context.Context, db *gorm.DB, page *contentdomain.Page) error {
	return db.WithContext(ctx).Save(page).Error
}

func (r *repo) DeletePage(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&contentdomain.Page{}).Error
}

func (r *repo) InsertBlock(ctx context.Context, db *gorm.DB, block *contentdomain.Block) error {
	return db.WithContext(ctx).Create(block).Error
}

func (r *repo) InsertBlocks(ctx context.Context, db *gorm.DB, blocks []contentdomain.Block) error {
	if len(blocks) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&blocks).Error
}

func (r *repo) FindBlockByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*contentdomain.Block, error) {
	var block contentdomain.Block
	err := db.WithContext(ctx).Where("id = ?", id).First(&block).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &block, nil
}

func (r *repo) ListBlocksByPage(ctx context.Context, db *gorm.DB, pageID snowflake.ID) ([]contentdomain.Block, error) {
	var blocks []contentdomain.Block
	err := db.WithContext(ctx).
		Where("page_id = ?", pageID).
		Order("position ASC").
		Find(&blocks).Error
	return blocks, err
}

func (r *repo) MaxBlockPosition(ctx context.Context, db *gorm.DB, pageID snowflake.ID) (int, error) {
	var max *int
	err := db.WithContext(ctx).Model(&contentdomain.Block{}).
		Where("page_id = ?", pageID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *repo) UpdateBlock(ctx context.Context, db *gorm.DB, block *contentdomain.Block) error {
	return db.WithContext(ctx).Save(block).Error
}

func (r *repo) DeleteBlock(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&contentdomain.Block{}).Error
}

func (r *repo) UpdateBlockPosition(ctx context.Context, db *gorm.DB, id snowflake.ID, position int) error {
	return db.WithContext(ctx).Model(&contentdomain.Block{}).
		Where("id = ?", id).
		Update("position", position).Error
}
