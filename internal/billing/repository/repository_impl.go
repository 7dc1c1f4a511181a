package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/smallbiznis/linkpage/internal/billing/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() billingdomain.Repository {
	return &repo{}
}

func (r *repo) ListPackages(ctx context.Context, db *gorm.DB) ([]billingdomain.Package, error) {
	var pkgs []billingdomain.Package
	err := db.WithContext(ctx).Order("price_cents ASC").Find(&pkgs).Error
	return pkgs, err
}

func (r *repo) FindPackageByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*billingdomain.Package, error) {
	var pkg billingdomain.Package
	err := db.WithContext(ctx).Where("id = ?", id).First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *repo) FindPackageByHandle(ctx context.Context, db *gorm.DB, handle string) (*billingdomain.Package, error) {
	var pkg billingdomain.Package
	err := db.WithContext(ctx).Where("handle = ?", handle).First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *repo) InsertPackage(ctx context.Context, db *gorm.DB, pkg *billingdomain.Package) error {
	return db.WithContext(ctx).Create(pkg).Error
}

func (r *repo) UpdatePackage(ctx context.Context, db *gorm.DB, pkg *billingdomain.Package) error {
	return db.WithContext(ctx).Save(pkg).Error
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *billingdomain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

// FindPaymentByIDForUpdate locks the payment row for the duration of the
// caller's transaction so concurrent webhook deliveries serialize on it.
func (r *repo) FindPaymentByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*billingdomain.Payment, error) {
	var payment billingdomain.Payment
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repo) UpdatePayment(ctx context.Context, db *gorm.DB, payment *billingdomain.Payment) error {
	return db.WithContext(ctx).Save(payment).Error
}

func (r *repo) ListPaymentsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]billingdomain.Payment, error) {
	var payments []billingdomain.Payment
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

func (r *repo) InsertSubscription(ctx context.Context, db *gorm.DB, sub *billingdomain.Subscription) error {
	return db.WithContext(ctx).Create(sub).Error
}

func (r *repo) UpdateSubscription(ctx context.Context, db *gorm.DB, sub *billingdomain.Subscription) error {
	return db.WithContext(ctx).Save(sub).Error
}

func (r *repo) FindLatestSubscriptionByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*billingdomain.Subscription, error) {
	var sub billingdomain.Subscription
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}
