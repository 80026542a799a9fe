package payments

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

const (
	TypeSubscription = "subscription"
	TypeBoost        = "boost"
	TypeFeature      = "feature" // reserved; no business-side effect yet
)

const (
	MethodPayFast = "payfast"
	PlanBoost     = "Boost"
	Currency      = "ZAR"
)

// DefaultTaxRateBP is 15% in basis points, applied to the owner's share.
const DefaultTaxRateBP = 1500

// Distribution is the 70/30 fund split for a settled payment.
// OwnerCents + ReserveCents always reconciles to the payment amount.
type Distribution struct {
	OwnerCents     int        `gorm:"column:owner_cents;not null;default:0"`
	ReserveCents   int        `gorm:"column:reserve_cents;not null;default:0"`
	OwnerAccount   string     `gorm:"column:owner_account;type:varchar(64)"`
	ReserveAccount string     `gorm:"column:reserve_account;type:varchar(64)"`
	Transferred    bool       `gorm:"column:transferred;not null;default:false"`
	TransferDate   *time.Time `gorm:"column:transfer_date;type:datetime(3)"`
}

type Tax struct {
	Taxable  bool `gorm:"column:taxable;not null;default:true"`
	TaxCents int  `gorm:"column:tax_cents;not null;default:0"`
	RateBP   int  `gorm:"column:rate_bp;not null;default:1500"`
}

// Payment is the audit trail of one monetary transaction. Rows are never
// deleted; status only moves pending -> completed|failed, completed -> refunded.
type Payment struct {
	ID         string `gorm:"type:char(36);primaryKey"`
	BusinessID string `gorm:"type:char(36);not null;index:ix_payments_business_id"`
	UserID     string `gorm:"type:char(36);not null;index:ix_payments_user_id"`

	AmountCents int    `gorm:"not null"`
	Currency    string `gorm:"type:char(3);not null;default:'ZAR'"`
	Type        string `gorm:"column:payment_type;type:varchar(16);not null"`
	Plan        string `gorm:"type:varchar(16);not null"`
	Status      string `gorm:"type:varchar(16);not null;index:ix_payments_status"`
	Method      string `gorm:"type:varchar(16);not null;default:'payfast'"`

	// MerchantRef is our m_payment_id; GatewayRef is PayFast's pf_payment_id,
	// unknown until the gateway reports the outcome.
	MerchantRef string  `gorm:"type:varchar(64);not null;uniqueIndex:ux_payments_merchant_ref"`
	GatewayRef  *string `gorm:"type:varchar(64);index:ix_payments_gateway_ref"`

	PaymentDate   *time.Time `gorm:"type:datetime(3)"`
	ProcessedDate *time.Time `gorm:"type:datetime(3)"`

	Distribution Distribution `gorm:"embedded;embeddedPrefix:dist_"`
	Tax          Tax          `gorm:"embedded;embeddedPrefix:tax_"`

	FailureReason *string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Payment) TableName() string { return "payments" }

// AmountString renders cents as the gateway's 2-decimal wire format.
func AmountString(cents int) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// GatewayNotification is the audit row for every ITN received, processed
// or not. It is bookkeeping, not the idempotency gate; that is the
// payment status transition itself.
type GatewayNotification struct {
	ID            string         `gorm:"type:char(36);primaryKey"`
	Gateway       string         `gorm:"type:varchar(32);not null"`
	GatewayRef    string         `gorm:"type:varchar(64);not null;index:ix_gateway_notifications_ref"`
	MerchantRef   string         `gorm:"type:varchar(64);not null"`
	PaymentStatus string         `gorm:"type:varchar(32);not null"`
	PayloadJSON   datatypes.JSON `gorm:"type:json;not null"`
	ReceivedAt    time.Time      `gorm:"type:datetime(3);not null"`
	ProcessedAt   *time.Time     `gorm:"type:datetime(3)"`
	ProcessError  *string        `gorm:"type:varchar(255)"`
}

func (GatewayNotification) TableName() string { return "gateway_notifications" }
