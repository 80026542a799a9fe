package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"westcoastdigital.co.za/app/internal/modules/payfast"
)

const (
	SubscriptionPeriod = 30 * 24 * time.Hour
	BoostPeriod        = 7 * 24 * time.Hour
)

type SettleOutcome string

const (
	OutcomeCompleted SettleOutcome = "completed"
	OutcomeDuplicate SettleOutcome = "duplicate"
	OutcomeRejected  SettleOutcome = "rejected"
)

type SettleResult struct {
	Outcome   SettleOutcome
	PaymentID string
}

type EngineConfig struct {
	OwnerAccount   string
	ReserveAccount string
	TaxRateBP      int // defaults to DefaultTaxRateBP when zero
	Logger         *slog.Logger
}

// Engine applies a verified gateway notification to the ledger and the
// owning business/subscription, splits the funds and drives the transfer.
// Callers must have run the notification through the payfast verifier first.
type Engine struct {
	ledger     Ledger
	businesses BusinessStore
	subs       SubscriptionStore
	bank       Transferer
	dispatcher Dispatcher
	logger     *slog.Logger

	ownerAccount   string
	reserveAccount string
	taxRateBP      int

	now func() time.Time
}

func NewEngine(ledger Ledger, businesses BusinessStore, subs SubscriptionStore, bank Transferer, dispatcher Dispatcher, cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rate := cfg.TaxRateBP
	if rate <= 0 {
		rate = DefaultTaxRateBP
	}
	return &Engine{
		ledger:         ledger,
		businesses:     businesses,
		subs:           subs,
		bank:           bank,
		dispatcher:     dispatcher,
		logger:         logger,
		ownerAccount:   cfg.OwnerAccount,
		reserveAccount: cfg.ReserveAccount,
		taxRateBP:      rate,
		now:            time.Now,
	}
}

// SetClock overrides the engine clock (tests).
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// SplitAmount computes the 70/30 split and the tax on the owner's share,
// in integer cents. The remainder goes to the reserve so that
// owner + reserve always equals the amount.
func SplitAmount(amountCents, taxRateBP int) (ownerCents, reserveCents, taxCents int) {
	ownerCents = amountCents * 70 / 100
	reserveCents = amountCents - ownerCents
	taxCents = (ownerCents*taxRateBP + 5000) / 10000
	return ownerCents, reserveCents, taxCents
}

// Settle handles a verified ITN reporting any gateway status.
// Duplicate deliveries and lost races resolve to an idempotent no-op.
func (e *Engine) Settle(ctx context.Context, itn payfast.ITN) (SettleResult, error) {
	gatewayRef := itn.Fields.Get(payfast.FieldPFPaymentID)
	merchantRef := itn.Fields.Get(payfast.FieldMPaymentID)
	pfStatus := itn.Fields.Get(payfast.FieldPaymentStatus)

	p, err := e.lookup(ctx, gatewayRef, merchantRef)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			// Stale or foreign notification; record and move on.
			e.logger.WarnContext(ctx, "notification for unknown payment",
				"gateway_ref", gatewayRef, "merchant_ref", merchantRef)
			e.recordNotification(ctx, itn, strPtr("payment not found"))
		}
		return SettleResult{}, err
	}

	if pfStatus != payfast.StatusComplete {
		return e.reject(ctx, itn, p, "gateway status "+pfStatus)
	}

	if p.Status != StatusPending {
		// Gateway redelivery of an already settled notification.
		e.recordNotification(ctx, itn, nil)
		return SettleResult{Outcome: OutcomeDuplicate, PaymentID: p.ID}, nil
	}

	paidAt := e.now()
	won, err := e.ledger.CompleteIfPending(ctx, p.ID, gatewayRef, paidAt)
	if err != nil {
		return SettleResult{}, err
	}
	if !won {
		// A concurrent delivery settled it first.
		e.recordNotification(ctx, itn, nil)
		return SettleResult{Outcome: OutcomeDuplicate, PaymentID: p.ID}, nil
	}

	p.Status = StatusCompleted
	p.GatewayRef = &gatewayRef
	p.PaymentDate = &paidAt

	// The completed transition is committed; everything below must not
	// fail the settlement. Distribution converges via the scheduler.
	e.applyBusinessEffects(ctx, p, paidAt)

	if err := e.Distribute(ctx, p); err != nil {
		e.logger.ErrorContext(ctx, "distribution deferred to sweep",
			"payment_id", p.ID, "err", err)
	}

	e.dispatcher.PaymentCompleted(ctx, p)
	e.recordNotification(ctx, itn, nil)

	e.logger.InfoContext(ctx, "payment settled",
		"payment_id", p.ID, "gateway_ref", gatewayRef,
		"type", p.Type, "plan", p.Plan, "amount_cents", p.AmountCents)
	return SettleResult{Outcome: OutcomeCompleted, PaymentID: p.ID}, nil
}

// RejectNotification marks the matched payment failed for a notification
// the gateway itself disowned. Unreachable gateways must NOT come through
// here: redelivery should find the row still pending.
func (e *Engine) RejectNotification(ctx context.Context, itn payfast.ITN, reason string) (SettleResult, error) {
	gatewayRef := itn.Fields.Get(payfast.FieldPFPaymentID)
	merchantRef := itn.Fields.Get(payfast.FieldMPaymentID)

	p, err := e.lookup(ctx, gatewayRef, merchantRef)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			e.recordNotification(ctx, itn, strPtr(reason))
			return SettleResult{Outcome: OutcomeRejected}, nil
		}
		return SettleResult{}, err
	}
	return e.reject(ctx, itn, p, reason)
}

func (e *Engine) reject(ctx context.Context, itn payfast.ITN, p Payment, reason string) (SettleResult, error) {
	marked, err := e.ledger.MarkFailedIfPending(ctx, p.ID, reason)
	if err != nil {
		return SettleResult{}, err
	}
	if marked {
		e.logger.WarnContext(ctx, "payment marked failed",
			"payment_id", p.ID, "reason", reason)
	}
	e.recordNotification(ctx, itn, strPtr(reason))
	return SettleResult{Outcome: OutcomeRejected, PaymentID: p.ID}, nil
}

// Distribute runs the fund split and transfer for a completed payment.
// Idempotent on the transferred flag; also the scheduler's re-drive entry.
func (e *Engine) Distribute(ctx context.Context, p Payment) error {
	if p.Status != StatusCompleted || p.Distribution.Transferred {
		return nil
	}

	owner, reserve, tax := SplitAmount(p.AmountCents, e.taxRateBP)
	d := Distribution{
		OwnerCents:     owner,
		ReserveCents:   reserve,
		OwnerAccount:   e.ownerAccount,
		ReserveAccount: e.reserveAccount,
	}
	t := Tax{Taxable: true, TaxCents: tax, RateBP: e.taxRateBP}

	if err := e.ledger.WriteDistribution(ctx, p.ID, d, t); err != nil {
		return fmt.Errorf("write distribution: %w", err)
	}

	if err := e.bank.Transfer(ctx, TransferRequest{
		PaymentID:      p.ID,
		OwnerAccount:   d.OwnerAccount,
		OwnerCents:     d.OwnerCents,
		ReserveAccount: d.ReserveAccount,
		ReserveCents:   d.ReserveCents,
	}); err != nil {
		return fmt.Errorf("bank transfer: %w", err)
	}

	at := e.now()
	marked, err := e.ledger.MarkTransferred(ctx, p.ID, at)
	if err != nil {
		return fmt.Errorf("mark transferred: %w", err)
	}
	if !marked {
		// Lost to a concurrent distribution; nothing left to do.
		return nil
	}

	p.Distribution = d
	p.Distribution.Transferred = true
	p.Distribution.TransferDate = &at
	p.Tax = t
	e.dispatcher.FundsDistributed(ctx, p)

	e.logger.InfoContext(ctx, "funds distributed",
		"payment_id", p.ID,
		"owner_cents", owner, "reserve_cents", reserve, "tax_cents", tax)
	return nil
}

func (e *Engine) applyBusinessEffects(ctx context.Context, p Payment, settledAt time.Time) {
	switch p.Type {
	case TypeSubscription:
		end := settledAt.Add(SubscriptionPeriod)
		if err := e.businesses.ApplySubscription(ctx, p.BusinessID, p.Plan, settledAt, end); err != nil {
			e.logger.ErrorContext(ctx, "business subscription update failed",
				"payment_id", p.ID, "business_id", p.BusinessID, "err", err)
			return
		}
		if err := e.subs.Activate(ctx, SubscriptionActivation{
			BusinessID:  p.BusinessID,
			UserID:      p.UserID,
			Plan:        p.Plan,
			AmountCents: p.AmountCents,
			StartDate:   settledAt,
			EndDate:     end,
		}); err != nil {
			e.logger.ErrorContext(ctx, "subscription upsert failed",
				"payment_id", p.ID, "business_id", p.BusinessID, "err", err)
		}
	case TypeBoost:
		if err := e.businesses.ApplyBoost(ctx, p.BusinessID, settledAt.Add(BoostPeriod)); err != nil {
			e.logger.ErrorContext(ctx, "business boost update failed",
				"payment_id", p.ID, "business_id", p.BusinessID, "err", err)
		}
	case TypeFeature:
		// reserved payment type, no listing-side effect
	}
}

func (e *Engine) lookup(ctx context.Context, gatewayRef, merchantRef string) (Payment, error) {
	if gatewayRef != "" {
		p, err := e.ledger.FindByGatewayRef(ctx, gatewayRef)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrPaymentNotFound) {
			return Payment{}, err
		}
	}
	if merchantRef == "" {
		return Payment{}, ErrPaymentNotFound
	}
	return e.ledger.FindPendingByMerchantRef(ctx, merchantRef)
}

func (e *Engine) recordNotification(ctx context.Context, itn payfast.ITN, processErr *string) {
	payload := make(map[string]string, len(itn.Fields))
	for _, f := range itn.Fields {
		payload[f.Key] = f.Value
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("{}")
	}

	now := e.now()
	n := GatewayNotification{
		ID:            uuid.NewString(),
		Gateway:       MethodPayFast,
		GatewayRef:    itn.Fields.Get(payfast.FieldPFPaymentID),
		MerchantRef:   itn.Fields.Get(payfast.FieldMPaymentID),
		PaymentStatus: itn.Fields.Get(payfast.FieldPaymentStatus),
		PayloadJSON:   datatypes.JSON(raw),
		ReceivedAt:    now,
		ProcessError:  processErr,
	}
	if processErr == nil {
		n.ProcessedAt = &now
	}
	if err := e.ledger.RecordNotification(ctx, &n); err != nil {
		e.logger.ErrorContext(ctx, "failed to persist gateway notification",
			"gateway_ref", n.GatewayRef, "err", err)
	}
}

func strPtr(s string) *string { return &s }
