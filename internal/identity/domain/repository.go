package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/linkpage/internal/plan"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	Update(ctx context.Context, db *gorm.DB, user *User) error
	UpdatePlan(ctx context.Context, db *gorm.DB, id snowflake.ID, p plan.Plan) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	List(ctx context.Context, db *gorm.DB, offset, limit int) ([]User, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	CountByPlan(ctx context.Context, db *gorm.DB, p plan.Plan) (int64, error)
	CountCreatedSince(ctx context.Context, db *gorm.DB, since time.Time) (int64, error)
}
