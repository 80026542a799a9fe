package payments

import (
	"context"
	"log/slog"
)

// RefundService reverses a completed payment's business-side effects.
// Already-transferred distribution bookkeeping is left untouched: clawing
// funds back from the owner/reserve accounts is a manual process.
type RefundService struct {
	ledger     Ledger
	businesses BusinessStore
	subs       SubscriptionStore
	logger     *slog.Logger
}

func NewRefundService(ledger Ledger, businesses BusinessStore, subs SubscriptionStore, logger *slog.Logger) *RefundService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefundService{ledger: ledger, businesses: businesses, subs: subs, logger: logger}
}

// Refund is only legal from completed; any other status returns
// ErrNotRefundable. The completed -> refunded transition is a conditional
// write, so concurrent refund requests settle exactly once.
func (s *RefundService) Refund(ctx context.Context, paymentID string) (Payment, error) {
	p, err := s.ledger.Get(ctx, paymentID)
	if err != nil {
		return Payment{}, err
	}
	if p.Status != StatusCompleted {
		return Payment{}, ErrNotRefundable
	}

	marked, err := s.ledger.MarkRefunded(ctx, p.ID)
	if err != nil {
		return Payment{}, err
	}
	if !marked {
		// Raced with another refund (or the row changed underneath us).
		return Payment{}, ErrNotRefundable
	}
	p.Status = StatusRefunded

	switch p.Type {
	case TypeSubscription:
		if err := s.businesses.ResetSubscription(ctx, p.BusinessID); err != nil {
			s.logger.ErrorContext(ctx, "refund: business reset failed",
				"payment_id", p.ID, "business_id", p.BusinessID, "err", err)
		}
		if err := s.subs.Cancel(ctx, p.BusinessID); err != nil {
			s.logger.ErrorContext(ctx, "refund: subscription cancel failed",
				"payment_id", p.ID, "business_id", p.BusinessID, "err", err)
		}
	case TypeBoost:
		if err := s.businesses.ClearBoost(ctx, p.BusinessID); err != nil {
			s.logger.ErrorContext(ctx, "refund: boost clear failed",
				"payment_id", p.ID, "business_id", p.BusinessID, "err", err)
		}
	}

	s.logger.InfoContext(ctx, "payment refunded",
		"payment_id", p.ID, "type", p.Type, "amount_cents", p.AmountCents)
	return p, nil
}
