package domain

import (
	"context"
	"errors"

	"gorm.io/datatypes"
)

var (
	ErrPackageNotFound      = errors.New("package_not_found")
	ErrPaymentNotFound      = errors.New("payment_not_found")
	ErrSubscriptionNotFound = errors.New("subscription_not_found")
	ErrCheckoutFailed       = errors.New("checkout_failed")
	ErrInvalidRequest       = errors.New("invalid_request")
	ErrInvalidUser          = errors.New("invalid_user")
)

// CreateCheckoutRequest starts a payment for a catalog package.
type CreateCheckoutRequest struct {
	UserID    string `json:"-"`
	PackageID string `json:"package_id" binding:"required"`
}

// CheckoutResponse carries the gateway token the client redirects with.
type CheckoutResponse struct {
	Payment     Payment `json:"payment"`
	Token       string  `json:"token"`
	RedirectURL string  `json:"redirect_url"`
}

// WebhookNotification is the gateway's payment notification, decoded from
// the raw callback body. Raw keeps the full payload for the audit trail.
type WebhookNotification struct {
	OrderID           string
	TransactionStatus string
	FraudStatus       string
	PaymentType       string
	Raw               map[string]interface{}
}

// UpdatePackageRequest mutates a catalog entry. Nil fields are unchanged.
type UpdatePackageRequest struct {
	PackageID       string             `json:"-"`
	Name            *string            `json:"name,omitempty"`
	PriceCents      *int64             `json:"price_cents,omitempty"`
	Currency        *string            `json:"currency,omitempty"`
	BillingInterval *BillingInterval   `json:"billing_interval,omitempty"`
	Features        *datatypes.JSONMap `json:"features,omitempty"`
}

type Service interface {
	ListPackages(ctx context.Context) ([]Package, error)
	CreateCheckout(ctx context.Context, req CreateCheckoutRequest) (*CheckoutResponse, error)
	HandleWebhook(ctx context.Context, n WebhookNotification) error
	ListUserPayments(ctx context.Context, userID string) ([]Payment, error)
	GetActiveSubscription(ctx context.Context, userID string) (*Subscription, error)
	UpdatePackage(ctx context.Context, req UpdatePackageRequest) (*Package, error)
}
