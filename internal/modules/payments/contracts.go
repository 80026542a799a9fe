package payments

import (
	"context"
	"time"
)

// Ledger is the durable record of payment lifecycles. Lookups never error
// on absence beyond ErrPaymentNotFound; state transitions are conditional
// writes so that concurrent settlers race safely.
type Ledger interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, id string) (Payment, error)
	FindByGatewayRef(ctx context.Context, ref string) (Payment, error)
	FindPendingByMerchantRef(ctx context.Context, ref string) (Payment, error)

	// CompleteIfPending transitions pending -> completed and records the
	// gateway ref. Returns false when the row was no longer pending
	// (duplicate delivery or a lost race).
	CompleteIfPending(ctx context.Context, id, gatewayRef string, paidAt time.Time) (bool, error)
	MarkFailedIfPending(ctx context.Context, id, reason string) (bool, error)
	// MarkRefunded transitions completed -> refunded; false if not completed.
	MarkRefunded(ctx context.Context, id string) (bool, error)

	WriteDistribution(ctx context.Context, id string, d Distribution, t Tax) error
	// MarkTransferred flips the transferred flag exactly once.
	MarkTransferred(ctx context.Context, id string, at time.Time) (bool, error)
	ListUndistributed(ctx context.Context, limit int) ([]Payment, error)

	RecordNotification(ctx context.Context, n *GatewayNotification) error

	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]Payment, int64, error)
}

// BusinessStore is the settlement engine's write surface on directory
// listings. Implemented by businesses.Repo.
type BusinessStore interface {
	ApplySubscription(ctx context.Context, id, plan string, start, end time.Time) error
	ApplyBoost(ctx context.Context, id string, expiry time.Time) error
	ResetSubscription(ctx context.Context, id string) error
	ClearBoost(ctx context.Context, id string) error
}

type SubscriptionActivation struct {
	BusinessID  string
	UserID      string
	Plan        string
	AmountCents int
	StartDate   time.Time
	EndDate     time.Time
}

type SubscriptionStore interface {
	Activate(ctx context.Context, in SubscriptionActivation) error
	Cancel(ctx context.Context, businessID string) error
}

type TransferRequest struct {
	PaymentID      string
	OwnerAccount   string
	OwnerCents     int
	ReserveAccount string
	ReserveCents   int
}

// Transferer moves the split funds to the owner and reserve accounts.
type Transferer interface {
	Transfer(ctx context.Context, req TransferRequest) error
}

// Dispatcher delivers stakeholder notices. Fire-and-forget: implementations
// must not let delivery failures surface into settlement.
type Dispatcher interface {
	PaymentCompleted(ctx context.Context, p Payment)
	FundsDistributed(ctx context.Context, p Payment)
}
