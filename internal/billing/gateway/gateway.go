// Package gateway wraps the external payment provider behind a small
// interface so the billing service stays testable.
package gateway

import "context"

// CheckoutRequest is everything the provider needs to open a payment page.
type CheckoutRequest struct {
	OrderID       string
	GrossAmount   int64
	Currency      string
	ItemName      string
	CustomerName  string
	CustomerEmail string
	FinishURL     string
}

// CheckoutSession is the provider-hosted payment session.
type CheckoutSession struct {
	Token       string
	RedirectURL string
}

type Gateway interface {
	// CreateTransaction opens a hosted checkout session. Implementations
	// must honour ctx cancellation.
	CreateTransaction(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}
