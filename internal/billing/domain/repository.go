package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the persistence boundary for packages, payments and
// subscriptions.
type Repository interface {
	ListPackages(ctx context.Context, db *gorm.DB) ([]Package, error)
	FindPackageByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Package, error)
	FindPackageByHandle(ctx context.Context, db *gorm.DB, handle string) (*Package, error)
	InsertPackage(ctx context.Context, db *gorm.DB, pkg *Package) error
	UpdatePackage(ctx context.Context, db *gorm.DB, pkg *Package) error

	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindPaymentByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	UpdatePayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	ListPaymentsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Payment, error)

	InsertSubscription(ctx context.Context, db *gorm.DB, sub *Subscription) error
	UpdateSubscription(ctx context.Context, db *gorm.DB, sub *Subscription) error
	FindLatestSubscriptionByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Subscription, error)
}
