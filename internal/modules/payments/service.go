package payments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"westcoastdigital.co.za/app/internal/modules/businesses"
	"westcoastdigital.co.za/app/internal/modules/payfast"
)

// BusinessDirectory is the read surface initiation needs to validate the
// target listing. Implemented by businesses.Repo.
type BusinessDirectory interface {
	Get(ctx context.Context, id string) (businesses.Business, error)
}

type ServiceConfig struct {
	Gateway     payfast.Config
	FrontendURL string
	BackendURL  string
}

// Service opens payments: it writes the pending ledger row and builds the
// signed gateway redirect the payer is sent to. Settlement happens later,
// when the gateway notifies us.
type Service struct {
	ledger     Ledger
	businesses BusinessDirectory
	cfg        ServiceConfig
	logger     *slog.Logger

	now func() time.Time
}

func NewService(ledger Ledger, businesses BusinessDirectory, cfg ServiceConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ledger:     ledger,
		businesses: businesses,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

type InitiateInput struct {
	UserID     string
	UserEmail  string
	UserName   string
	BusinessID string
	Type       string // TypeSubscription or TypeBoost
	Plan       string // subscription tier; ignored for boosts
}

type InitiateResult struct {
	Payment     Payment
	RedirectURL string
}

// Initiate records a pending payment and returns the redirect URL for the
// gateway's hosted payment page. The amount is always resolved server-side
// from the plan; client-supplied amounts are never trusted.
func (s *Service) Initiate(ctx context.Context, in InitiateInput) (InitiateResult, error) {
	plan, amount, err := resolvePlan(in.Type, in.Plan)
	if err != nil {
		return InitiateResult{}, err
	}

	if _, err := s.businesses.Get(ctx, in.BusinessID); err != nil {
		return InitiateResult{}, fmt.Errorf("initiate payment: business %s: %w", in.BusinessID, err)
	}

	now := s.now()
	p := Payment{
		ID:          uuid.NewString(),
		BusinessID:  in.BusinessID,
		UserID:      in.UserID,
		AmountCents: amount,
		Currency:    Currency,
		Type:        in.Type,
		Plan:        plan,
		Status:      StatusPending,
		Method:      MethodPayFast,
		MerchantRef: fmt.Sprintf("WCD-%d-%s", now.Unix(), uuid.NewString()[:8]),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.ledger.Create(ctx, &p); err != nil {
		return InitiateResult{}, err
	}

	s.logger.InfoContext(ctx, "payment initiated",
		"payment_id", p.ID, "merchant_ref", p.MerchantRef,
		"type", p.Type, "plan", p.Plan, "amount_cents", p.AmountCents)

	return InitiateResult{Payment: p, RedirectURL: s.redirectURL(p, in)}, nil
}

// redirectURL assembles the checkout fields in the gateway's required order
// and signs them. Empty optional fields are left out so the query string and
// the signature cover the same set.
func (s *Service) redirectURL(p Payment, in InitiateInput) string {
	var f payfast.Fields
	set := func(k, v string) {
		if v != "" {
			f.Set(k, v)
		}
	}

	set("merchant_id", s.cfg.Gateway.MerchantID)
	set("merchant_key", s.cfg.Gateway.MerchantKey)
	set("return_url", s.cfg.FrontendURL+"/payment/success")
	set("cancel_url", s.cfg.FrontendURL+"/payment/cancel")
	set("notify_url", s.cfg.BackendURL+"/api/payments/notify")
	set("name_first", in.UserName)
	set("email_address", in.UserEmail)
	set(payfast.FieldMPaymentID, p.MerchantRef)
	set("amount", AmountString(p.AmountCents))
	set("item_name", "West Coast Digital - "+p.Plan)
	set(payfast.FieldCustomInt1, p.BusinessID)
	set(payfast.FieldCustomStr1, p.Type)
	set(payfast.FieldCustomStr2, p.Plan)

	sig := payfast.Sign(f, s.cfg.Gateway.Passphrase)
	return s.cfg.Gateway.ProcessURL + "?" + f.Encode() + "&" + payfast.FieldSignature + "=" + sig
}

func resolvePlan(paymentType, plan string) (string, int, error) {
	switch paymentType {
	case TypeSubscription:
		amount := businesses.PlanPriceCents(plan)
		if amount == 0 {
			return "", 0, fmt.Errorf("%w: unknown subscription plan %q", ErrInvalidPlan, plan)
		}
		return plan, amount, nil
	case TypeBoost:
		return PlanBoost, businesses.BoostPriceCents, nil
	default:
		return "", 0, fmt.Errorf("%w: unknown payment type %q", ErrInvalidPlan, paymentType)
	}
}
