package gateway

import (
	"context"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// Midtrans talks to the Midtrans Snap API.
type Midtrans struct {
	client snap.Client
}

// NewMidtrans builds a Snap client for the given server key. production
// selects the live environment, otherwise sandbox.
func NewMidtrans(serverKey string, production bool) *Midtrans {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	g := &Midtrans{}
	g.client.New(serverKey, env)
	return g
}

func (g *Midtrans) CreateTransaction(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.GrossAmount,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    req.OrderID,
			Name:  req.ItemName,
			Price: req.GrossAmount,
			Qty:   1,
		}},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
		},
	}
	if req.FinishURL != "" {
		snapReq.Callbacks = &snap.Callbacks{Finish: req.FinishURL}
	}

	// The snap client does not accept a context, so the call runs in a
	// goroutine and the caller's deadline is enforced here.
	type result struct {
		resp *snap.Response
		err  *midtrans.Error
	}
	ch := make(chan result, 1)
	go func() {
		resp, err := g.client.CreateTransaction(snapReq)
		ch <- result{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("midtrans create transaction: %w", r.err)
		}
		return &CheckoutSession{Token: r.resp.Token, RedirectURL: r.resp.RedirectURL}, nil
	}
}
