package businesses

import "time"

// Subscription tiers, ordered by visibility rank in listings.
const (
	TierFree        = "Free"
	TierBronze      = "Bronze"
	TierSilver      = "Silver"
	TierGold        = "Gold"
	TierPlatinum    = "Platinum"
	TierPlatinumPro = "Platinum Pro"
)

const (
	SubStatusNone      = "none"
	SubStatusActive    = "active"
	SubStatusCancelled = "cancelled"
	SubStatusExpired   = "expired"
)

type Business struct {
	ID      string `gorm:"type:char(36);primaryKey"`
	OwnerID string `gorm:"type:char(36);not null;index:ix_businesses_owner_id"`

	Name        string  `gorm:"type:varchar(100);not null"`
	Email       string  `gorm:"type:varchar(255);not null"`
	Phone       string  `gorm:"type:varchar(32);not null"`
	Industry    string  `gorm:"type:varchar(32);not null;index:ix_businesses_town_industry,priority:2"`
	Town        string  `gorm:"type:varchar(32);not null;index:ix_businesses_town_industry,priority:1"`
	Address     string  `gorm:"type:varchar(200);not null"`
	Description string  `gorm:"type:varchar(1000);not null"`
	Website     *string `gorm:"type:varchar(255)"`

	// Written only by the settlement engine.
	SubscriptionTier   string     `gorm:"type:varchar(16);not null;default:'Free'"`
	SubscriptionStatus string     `gorm:"type:varchar(16);not null;default:'none'"`
	SubscriptionStart  *time.Time `gorm:"type:datetime(3)"`
	SubscriptionEnd    *time.Time `gorm:"type:datetime(3)"`
	IsBoosted          bool       `gorm:"not null;default:false;index:ix_businesses_boost"`
	BoostExpiry        *time.Time `gorm:"type:datetime(3)"`

	IsActive bool `gorm:"not null;default:true"`
	Views    int  `gorm:"not null;default:0"`
	Clicks   int  `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Business) TableName() string { return "businesses" }

type BusinessImage struct {
	ID         string    `gorm:"type:char(36);primaryKey"`
	BusinessID string    `gorm:"type:char(36);not null;index:ix_business_images_business_id"`
	StorageKey string    `gorm:"type:varchar(255);not null"`
	URL        string    `gorm:"type:varchar(512);not null"`
	Caption    *string   `gorm:"type:varchar(255)"`
	CreatedAt  time.Time `gorm:"type:datetime(3);not null"`
}

func (BusinessImage) TableName() string { return "business_images" }

// Directory enumerations (shared with request validation).
var Towns = []string{
	"Saldanha", "Vredenburg", "Langebaan", "St Helena Bay", "Hopefield",
	"Darling", "Moorreesburg", "Malmesbury", "Riebeek West", "Riebeek Kasteel",
	"Yzerfontein", "Piketberg", "Porterville", "Aurora", "Redelinghuys",
	"Elands Bay", "Dwarskersbos", "Laaiplek", "Velddrif", "Cape Town",
	"Tableview", "Other",
}

var Industries = []string{
	"Retail", "Hospitality", "Services", "Professional", "Manufacturing",
	"Healthcare", "Construction", "Transport", "Education", "Entertainment",
	"Other",
}

// PlanPriceCents is the monthly subscription price per tier, in ZAR cents.
func PlanPriceCents(plan string) int {
	switch plan {
	case TierBronze:
		return 19900
	case TierSilver:
		return 49900
	case TierGold:
		return 99900
	case TierPlatinum:
		return 199900
	case TierPlatinumPro:
		return 399900
	default:
		return 0
	}
}

// BoostPriceCents buys 7 days of boosted placement.
const BoostPriceCents = 9900
