package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/smallbiznis/linkpage/internal/billing/domain"
	"github.com/smallbiznis/linkpage/internal/billing/gateway"
	"github.com/smallbiznis/linkpage/internal/clock"
	"github.com/smallbiznis/linkpage/internal/config"
	identitydomain "github.com/smallbiznis/linkpage/internal/identity/domain"
	"github.com/smallbiznis/linkpage/internal/plan"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// subscriptionPeriod is the fixed length of one billing period. Intervals
// other than monthly are catalog metadata only for now.
const subscriptionPeriodMonths = 1

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Cfg     config.Config
	Repo    billingdomain.Repository
	Gateway gateway.Gateway

	Identitysvc identitydomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	cfg     config.Config
	repo    billingdomain.Repository
	gateway gateway.Gateway

	identitysvc identitydomain.Service
}

func NewService(p Params) billingdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("billing.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		cfg:     p.Cfg,
		repo:    p.Repo,
		gateway: p.Gateway,

		identitysvc: p.Identitysvc,
	}
}

func (s *Service) ListPackages(ctx context.Context) ([]billingdomain.Package, error) {
	return s.repo.ListPackages(ctx, s.db)
}

func (s *Service) CreateCheckout(ctx context.Context, req billingdomain.CreateCheckoutRequest) (*billingdomain.CheckoutResponse, error) {
	user, err := s.identitysvc.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	pkgID, err := snowflake.ParseString(strings.TrimSpace(req.PackageID))
	if err != nil {
		return nil, billingdomain.ErrPackageNotFound
	}
	pkg, err := s.repo.FindPackageByID(ctx, s.db, pkgID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, billingdomain.ErrPackageNotFound
	}

	now := s.clock.Now()
	payment := &billingdomain.Payment{
		ID:       s.genID.Generate(),
		UserID:   user.ID,
		Amount:   pkg.PriceCents,
		Currency: pkg.Currency,
		Status:   billingdomain.PaymentStatusPending,
		Metadata: datatypes.JSONMap{
			"package_id":     pkg.ID.String(),
			"package_handle": pkg.Handle,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The payment id doubles as the gateway order id. ExternalID records
	// it explicitly so webhook lookups have a single key.
	orderID := payment.ID.String()
	payment.ExternalID = &orderID

	if err := s.repo.InsertPayment(ctx, s.db, payment); err != nil {
		return nil, err
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.cfg.CheckoutTimeout)
	defer cancel()

	session, err := s.gateway.CreateTransaction(gwCtx, gateway.CheckoutRequest{
		OrderID:       orderID,
		GrossAmount:   pkg.PriceCents,
		Currency:      pkg.Currency,
		ItemName:      pkg.Name,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		FinishURL:     s.cfg.BaseURL,
	})
	if err != nil {
		// The pending payment row stays for the audit trail. The caller
		// can retry with a fresh checkout.
		s.log.Warn("gateway checkout failed",
			zap.String("payment_id", orderID),
			zap.Error(err),
		)
		return nil, billingdomain.ErrCheckoutFailed
	}

	return &billingdomain.CheckoutResponse{
		Payment:     *payment,
		Token:       session.Token,
		RedirectURL: session.RedirectURL,
	}, nil
}

// mapTransactionStatus folds the gateway's transaction/fraud status pair into
// a payment status. Unknown statuses stay pending.
func mapTransactionStatus(transactionStatus, fraudStatus string) billingdomain.PaymentStatus {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "accept" || fraudStatus == "" {
			return billingdomain.PaymentStatusCompleted
		}
		return billingdomain.PaymentStatusPending
	case "settlement":
		return billingdomain.PaymentStatusCompleted
	case "deny", "cancel", "expire", "failure":
		return billingdomain.PaymentStatusFailed
	case "refund", "partial_refund":
		return billingdomain.PaymentStatusRefunded
	default:
		return billingdomain.PaymentStatusPending
	}
}

func (s *Service) HandleWebhook(ctx context.Context, n billingdomain.WebhookNotification) error {
	orderID := strings.TrimSpace(n.OrderID)
	if orderID == "" {
		return billingdomain.ErrInvalidRequest
	}
	paymentID, err := snowflake.ParseString(orderID)
	if err != nil {
		return billingdomain.ErrPaymentNotFound
	}

	next := mapTransactionStatus(n.TransactionStatus, n.FraudStatus)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.repo.FindPaymentByIDForUpdate(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return billingdomain.ErrPaymentNotFound
		}

		// Replays and out-of-order retries hit this guard: a payment in a
		// terminal state only ever moves completed -> refunded.
		if payment.Status.Terminal() {
			if payment.Status == billingdomain.PaymentStatusCompleted && next == billingdomain.PaymentStatusRefunded {
				return s.applyStatus(ctx, tx, payment, next, n, false)
			}
			s.log.Info("webhook replay ignored",
				zap.String("payment_id", orderID),
				zap.String("status", string(payment.Status)),
				zap.String("transaction_status", n.TransactionStatus),
			)
			return nil
		}

		if next == payment.Status {
			return nil
		}
		return s.applyStatus(ctx, tx, payment, next, n, next == billingdomain.PaymentStatusCompleted)
	})
}

func (s *Service) applyStatus(ctx context.Context, tx *gorm.DB, payment *billingdomain.Payment, next billingdomain.PaymentStatus, n billingdomain.WebhookNotification, activate bool) error {
	now := s.clock.Now()

	payment.Status = next
	payment.UpdatedAt = now
	if payment.Metadata == nil {
		payment.Metadata = datatypes.JSONMap{}
	}
	payment.Metadata["transaction_status"] = n.TransactionStatus
	if n.FraudStatus != "" {
		payment.Metadata["fraud_status"] = n.FraudStatus
	}
	if n.PaymentType != "" {
		payment.Metadata["payment_type"] = n.PaymentType
	}
	if len(n.Raw) > 0 {
		payment.Metadata["webhook"] = n.Raw
	}

	if activate {
		if err := s.activateSubscription(ctx, tx, payment, now); err != nil {
			return err
		}
	}

	if err := s.repo.UpdatePayment(ctx, tx, payment); err != nil {
		return err
	}

	s.log.Info("payment status updated",
		zap.String("payment_id", payment.ID.String()),
		zap.String("status", string(next)),
	)
	return nil
}

func (s *Service) activateSubscription(ctx context.Context, tx *gorm.DB, payment *billingdomain.Payment, now time.Time) error {
	handle, _ := payment.Metadata["package_handle"].(string)
	pkg, err := s.findPaymentPackage(ctx, tx, payment, handle)
	if err != nil {
		return err
	}
	if pkg == nil || !pkg.Paid() {
		return nil
	}

	sub := &billingdomain.Subscription{
		ID:                 s.genID.Generate(),
		UserID:             payment.UserID,
		PackageID:          pkg.ID,
		Status:             billingdomain.SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, subscriptionPeriodMonths, 0),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.InsertSubscription(ctx, tx, sub); err != nil {
		return err
	}
	payment.SubscriptionID = &sub.ID

	if err := tx.Model(&identitydomain.User{}).
		Where("id = ?", payment.UserID).
		Updates(map[string]any{"plan": plan.Pro, "updated_at": now}).Error; err != nil {
		return err
	}

	s.log.Info("subscription activated",
		zap.String("user_id", payment.UserID.String()),
		zap.String("package", pkg.Handle),
	)
	return nil
}

func (s *Service) findPaymentPackage(ctx context.Context, tx *gorm.DB, payment *billingdomain.Payment, handle string) (*billingdomain.Package, error) {
	if raw, ok := payment.Metadata["package_id"].(string); ok {
		if id, err := snowflake.ParseString(raw); err == nil {
			return s.repo.FindPackageByID(ctx, tx, id)
		}
	}
	if handle != "" {
		return s.repo.FindPackageByHandle(ctx, tx, handle)
	}
	return nil, nil
}

func (s *Service) ListUserPayments(ctx context.Context, userID string) ([]billingdomain.Payment, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil {
		return nil, billingdomain.ErrInvalidUser
	}
	return s.repo.ListPaymentsByUser(ctx, s.db, id)
}

func (s *Service) GetActiveSubscription(ctx context.Context, userID string) (*billingdomain.Subscription, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil {
		return nil, billingdomain.ErrInvalidUser
	}

	sub, err := s.repo.FindLatestSubscriptionByUser(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, billingdomain.ErrSubscriptionNotFound
	}

	// Periods are not renewed automatically. A subscription past its end
	// is flipped to expired on first read.
	if sub.Status == billingdomain.SubscriptionStatusActive && s.clock.Now().After(sub.CurrentPeriodEnd) {
		sub.Status = billingdomain.SubscriptionStatusExpired
		sub.UpdatedAt = s.clock.Now()
		if err := s.repo.UpdateSubscription(ctx, s.db, sub); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

func (s *Service) UpdatePackage(ctx context.Context, req billingdomain.UpdatePackageRequest) (*billingdomain.Package, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.PackageID))
	if err != nil {
		return nil, billingdomain.ErrPackageNotFound
	}
	pkg, err := s.repo.FindPackageByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, billingdomain.ErrPackageNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, billingdomain.ErrInvalidRequest
		}
		pkg.Name = name
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return nil, billingdomain.ErrInvalidRequest
		}
		pkg.PriceCents = *req.PriceCents
	}
	if req.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
		if len(currency) != 3 {
			return nil, billingdomain.ErrInvalidRequest
		}
		pkg.Currency = currency
	}
	if req.BillingInterval != nil {
		switch *req.BillingInterval {
		case billingdomain.BillingIntervalMonthly, billingdomain.BillingIntervalYearly:
		default:
			return nil, billingdomain.ErrInvalidRequest
		}
		pkg.BillingInterval = *req.BillingInterval
	}
	if req.Features != nil {
		pkg.Features = *req.Features
	}
	pkg.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdatePackage(ctx, s.db, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}
