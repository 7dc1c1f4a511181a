package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	identitydomain "github.com/smallbiznis/linkpage/internal/identity/domain"
	"github.com/smallbiznis/linkpage/internal/plan"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() identitydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *identitydomain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*identitydomain.User, error) {
	var user identitydomain.User
	err := db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*identitydomain.User, error) {
	var user identitydomain.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, user *identitydomain.User) error {
	return db.WithContext(ctx).Save(user).Error
}

func (r *repo) UpdatePlan(ctx context.Context, db *gorm.DB, id snowflake.ID, p plan.Plan) error {
	return db.WithContext(ctx).Model(&identitydomain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"plan": p, "updated_at": time.Now().UTC()}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&identitydomain.User{}).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, offset, limit int) ([]identitydomain.User, error) {
	var users []identitydomain.User
	err := db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&identitydomain.User{}).Count(&count).Error
	return count, err
}

func (r *repo) CountByPlan(ctx context.Context, db *gorm.DB, p plan.Plan) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&identitydomain.User{}).Where("plan = ?", p).Count(&count).Error
	return count, err
}

func (r *repo) CountCreatedSince(ctx context.Context, db *gorm.DB, since time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&identitydomain.User{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}
