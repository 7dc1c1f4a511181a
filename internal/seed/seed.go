// Package seed installs the baseline billing catalog so checkout works on a
// fresh install.
package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/smallbiznis/linkpage/internal/billing/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnsureDefaultPackages creates the free and pro catalog entries when they
// are missing. Existing rows are left untouched so admin edits survive
// restarts.
func EnsureDefaultPackages(conn *gorm.DB, node *snowflake.Node) error {
	now := time.Now().UTC()
	defaults := []billingdomain.Package{
		{
			ID:              node.Generate(),
			Handle:          "free",
			Name:            "Free",
			PriceCents:      0,
			Currency:        "IDR",
			BillingInterval: billingdomain.BillingIntervalMonthly,
			Features: datatypes.JSONMap{
				"max_pages": 1,
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:              node.Generate(),
			Handle:          "pro_monthly",
			Name:            "Pro",
			PriceCents:      4900000,
			Currency:        "IDR",
			BillingInterval: billingdomain.BillingIntervalMonthly,
			Features: datatypes.JSONMap{
				"max_pages":      "unlimited",
				"premium_blocks": true,
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for _, pkg := range defaults {
		var existing billingdomain.Package
		err := conn.Where("handle = ?", pkg.Handle).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := conn.Create(&pkg).Error; err != nil {
			return err
		}
	}
	return nil
}
