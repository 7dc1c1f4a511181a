// Package domain contains page and block models plus the content contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Page is the slug-addressable published unit owned by a user.
type Page struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID          snowflake.ID      `gorm:"not null;index" json:"user_id"`
	Title           string            `gorm:"type:text;not null" json:"title"`
	Slug            string            `gorm:"type:text;not null;uniqueIndex:ux_pages_slug" json:"slug"`
	Description     *string           `gorm:"type:text" json:"description,omitempty"`
	IsPublished     bool              `gorm:"not null;default:false" json:"is_published"`
	CustomDomain    *string           `gorm:"type:text" json:"custom_domain,omitempty"`
	MetaTitle       *string           `gorm:"type:text" json:"meta_title,omitempty"`
	MetaDescription *string           `gorm:"type:text" json:"meta_description,omitempty"`
	Config          datatypes.JSONMap `gorm:"type:jsonb" json:"config,omitempty"`
	CreatedAt       time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Page) TableName() string { return "pages" }

// BlockType is the closed vocabulary of content block kinds.
type BlockType string

const (
	BlockTypeLink         BlockType = "link"
	BlockTypeButton       BlockType = "button"
	BlockTypeImage        BlockType = "image"
	BlockTypeText         BlockType = "text"
	BlockTypeLinksBlock   BlockType = "links_block"
	BlockTypeSocialBlock  BlockType = "social_block"
	BlockTypeContactBlock BlockType = "contact_block"
	BlockTypeProductCard  BlockType = "product_card"
	BlockTypeDynamicFeed  BlockType = "dynamic_feed"
	BlockTypePaywall      BlockType = "paywall"
	BlockTypeCustomDomain BlockType = "custom_domain"
	BlockTypeVideo        BlockType = "video"
	BlockTypeCountdown    BlockType = "countdown"
)

var blockTypes = map[BlockType]struct{}{
	BlockTypeLink:         {},
	BlockTypeButton:       {},
	BlockTypeImage:        {},
	BlockTypeText:         {},
	BlockTypeLinksBlock:   {},
	BlockTypeSocialBlock:  {},
	BlockTypeContactBlock: {},
	BlockTypeProductCard:  {},
	BlockTypeDynamicFeed:  {},
	BlockTypePaywall:      {},
	BlockTypeCustomDomain: {},
	BlockTypeVideo:        {},
	BlockTypeCountdown:    {},
}

func (t BlockType) Valid() bool {
	_, ok := blockTypes[t]
	return ok
}

// Block is an ordered content unit on a page. Config is opaque JSON shaped
// by Type; rendering always sorts ascending by Position.
type Block struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	PageID    snowflake.ID      `gorm:"not null;index" json:"page_id"`
	Type      BlockType         `gorm:"type:text;not null" json:"type"`
	Position  int               `gorm:"not null" json:"position"`
	Config    datatypes.JSONMap `gorm:"type:jsonb" json:"config,omitempty"`
	IsVisible bool              `gorm:"not null;default:true" json:"is_visible"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Block) TableName() string { return "blocks" }
