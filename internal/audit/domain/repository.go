package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AdminAuditLog) error
	List(ctx context.Context, db *gorm.DB, offset, limit int) ([]AdminAuditLog, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
