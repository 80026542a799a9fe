package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

type UpsertInput struct {
	BusinessID  string
	UserID      string
	Plan        string
	AmountCents int
	Status      string
	StartDate   time.Time
	EndDate     time.Time
}

// Upsert keeps the one-live-subscription-per-business invariant: read the
// row under lock, update it if present, insert otherwise. Safe under
// concurrent settlement of the same business.
func (r *Repo) Upsert(ctx context.Context, in UpsertInput) (Subscription, error) {
	var out Subscription

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		next := in.EndDate

		var existing Subscription
		err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&existing, "business_id = ?", in.BusinessID).Error

		if err == nil {
			updates := map[string]any{
				"user_id":           in.UserID,
				"plan":              in.Plan,
				"status":            in.Status,
				"amount_cents":      in.AmountCents,
				"start_date":        in.StartDate,
				"end_date":          in.EndDate,
				"next_billing_date": &next,
				"updated_at":        now,
			}
			if err := tx.WithContext(ctx).Model(&Subscription{}).
				Where("id = ?", existing.ID).
				Updates(updates).Error; err != nil {
				return err
			}
			out = existing
			out.UserID = in.UserID
			out.Plan = in.Plan
			out.Status = in.Status
			out.AmountCents = in.AmountCents
			out.StartDate = in.StartDate
			out.EndDate = in.EndDate
			out.NextBillingDate = &next
			out.UpdatedAt = now
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		out = Subscription{
			ID:              uuid.NewString(),
			BusinessID:      in.BusinessID,
			UserID:          in.UserID,
			Plan:            in.Plan,
			Status:          in.Status,
			AmountCents:     in.AmountCents,
			Currency:        "ZAR",
			StartDate:       in.StartDate,
			EndDate:         in.EndDate,
			NextBillingDate: &next,
			AutoRenew:       true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return tx.WithContext(ctx).Create(&out).Error
	})
	if err != nil {
		return Subscription{}, err
	}
	return out, nil
}

func (r *Repo) GetByBusiness(ctx context.Context, businessID string) (Subscription, error) {
	var s Subscription
	err := r.db.WithContext(ctx).First(&s, "business_id = ?", businessID).Error
	return s, err
}

// Cancel marks the business's subscription cancelled (refund path).
func (r *Repo) Cancel(ctx context.Context, businessID string) error {
	return r.db.WithContext(ctx).Model(&Subscription{}).
		Where("business_id = ?", businessID).
		Updates(map[string]any{
			"status":     StatusCancelled,
			"auto_renew": false,
			"updated_at": time.Now(),
		}).Error
}

func (r *Repo) Delete(ctx context.Context, businessID string) error {
	return r.db.WithContext(ctx).Delete(&Subscription{}, "business_id = ?", businessID).Error
}

func (r *Repo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Subscription{}).
		Where("status = ?", StatusActive).
		Count(&n).Error
	return n, err
}
