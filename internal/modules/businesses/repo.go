package businesses

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

type ListParams struct {
	Town     string // empty or "All Towns" means no filter
	Industry string
	Tier     string
	Search   string
	Page     int
	PageSize int
}

type ListResult struct {
	Items []Business
	Total int64
}

func (r *Repo) List(ctx context.Context, in ListParams) (ListResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 || size > 100 {
		size = 12
	}

	q := r.db.WithContext(ctx).Model(&Business{}).Where("is_active = ?", true)
	if t := strings.TrimSpace(in.Town); t != "" && t != "All Towns" {
		q = q.Where("town = ?", t)
	}
	if ind := strings.TrimSpace(in.Industry); ind != "" && ind != "All Industries" {
		q = q.Where("industry = ?", ind)
	}
	if tier := strings.TrimSpace(in.Tier); tier != "" && tier != "All Tiers" {
		q = q.Where("subscription_tier = ?", tier)
	}
	if s := strings.TrimSpace(in.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where("(name LIKE ? OR description LIKE ?)", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return ListResult{}, err
	}

	var items []Business
	// Boosted listings first, then tier weight, then recency.
	err := q.
		Order("is_boosted DESC").
		Order(tierRankExpr + " DESC").
		Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&items).Error
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{Items: items, Total: total}, nil
}

const tierRankExpr = "FIELD(subscription_tier, 'Free', 'Bronze', 'Silver', 'Gold', 'Platinum', 'Platinum Pro')"

func (r *Repo) Get(ctx context.Context, id string) (Business, error) {
	var b Business
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	return b, err
}

func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]Business, error) {
	var items []Business
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&items, "owner_id = ?", ownerID).Error
	return items, err
}

func (r *Repo) Create(ctx context.Context, b *Business) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *Repo) Update(ctx context.Context, id string, updates map[string]any) error {
	updates["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&Business{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Business{}, "id = ?", id).Error
}

func (r *Repo) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Business{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *Repo) IncrementClicks(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Business{}).
		Where("id = ?", id).
		UpdateColumn("clicks", gorm.Expr("clicks + 1")).Error
}

func (r *Repo) AddImage(ctx context.Context, img *BusinessImage) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *Repo) ListImages(ctx context.Context, businessID string) ([]BusinessImage, error) {
	var imgs []BusinessImage
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&imgs, "business_id = ?", businessID).Error
	return imgs, err
}

func (r *Repo) DeleteImages(ctx context.Context, businessID string) error {
	return r.db.WithContext(ctx).Delete(&BusinessImage{}, "business_id = ?", businessID).Error
}

// Settlement-side writers. These are the only paths that touch the
// subscription/boost columns.

func (r *Repo) ApplySubscription(ctx context.Context, id, plan string, start, end time.Time) error {
	return r.db.WithContext(ctx).Model(&Business{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"subscription_tier":   plan,
			"subscription_status": SubStatusActive,
			"subscription_start":  start,
			"subscription_end":    end,
			"updated_at":          time.Now(),
		}).Error
}

func (r *Repo) ApplyBoost(ctx context.Context, id string, expiry time.Time) error {
	return r.db.WithContext(ctx).Model(&Business{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_boosted":   true,
			"boost_expiry": expiry,
			"updated_at":   time.Now(),
		}).Error
}

func (r *Repo) ResetSubscription(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Business{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"subscription_tier":   TierFree,
			"subscription_status": SubStatusCancelled,
			"subscription_start":  nil,
			"subscription_end":    nil,
			"updated_at":          time.Now(),
		}).Error
}

func (r *Repo) ClearBoost(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Business{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_boosted":   false,
			"boost_expiry": nil,
			"updated_at":   time.Now(),
		}).Error
}
