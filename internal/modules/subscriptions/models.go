package subscriptions

import "time"

const (
	StatusActive    = "active"
	StatusPending   = "pending"
	StatusSuspended = "suspended"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// Subscription mirrors the live commercial relationship for a business.
// There is exactly one row per business; settlement upserts it.
type Subscription struct {
	ID         string `gorm:"type:char(36);primaryKey"`
	BusinessID string `gorm:"type:char(36);not null;uniqueIndex:ux_subscriptions_business_id"`
	UserID     string `gorm:"type:char(36);not null;index:ix_subscriptions_user_id"`

	Plan        string `gorm:"type:varchar(16);not null"`
	Status      string `gorm:"type:varchar(16);not null;index:ix_subscriptions_status"`
	AmountCents int    `gorm:"not null"`
	Currency    string `gorm:"type:char(3);not null;default:'ZAR'"`

	StartDate       time.Time  `gorm:"type:datetime(3);not null"`
	EndDate         time.Time  `gorm:"type:datetime(3);not null"`
	NextBillingDate *time.Time `gorm:"type:datetime(3);index:ix_subscriptions_next_billing"`
	AutoRenew       bool       `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Subscription) TableName() string { return "subscriptions" }
