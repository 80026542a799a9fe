package payments

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Repo is the gorm-backed Ledger.
type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Create(ctx context.Context, p *Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isDup(err) {
			return ErrDuplicateRef
		}
		return err
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (Payment, error) {
	var p Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Payment{}, ErrPaymentNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

func (r *Repo) FindByGatewayRef(ctx context.Context, ref string) (Payment, error) {
	var p Payment
	if err := r.db.WithContext(ctx).First(&p, "gateway_ref = ?", ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Payment{}, ErrPaymentNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

func (r *Repo) FindPendingByMerchantRef(ctx context.Context, ref string) (Payment, error) {
	var p Payment
	err := r.db.WithContext(ctx).
		First(&p, "merchant_ref = ? AND status = ?", ref, StatusPending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Payment{}, ErrPaymentNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

// CompleteIfPending is the single synchronization point for concurrent
// deliveries: the conditional UPDATE succeeds for exactly one caller.
func (r *Repo) CompleteIfPending(ctx context.Context, id, gatewayRef string, paidAt time.Time) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{
			"status":         StatusCompleted,
			"gateway_ref":    gatewayRef,
			"payment_date":   paidAt,
			"processed_date": now,
			"updated_at":     now,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *Repo) MarkFailedIfPending(ctx context.Context, id, reason string) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{
			"status":         StatusFailed,
			"failure_reason": truncate(reason, 250),
			"processed_date": now,
			"updated_at":     now,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *Repo) MarkRefunded(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ? AND status = ?", id, StatusCompleted).
		Updates(map[string]any{
			"status":     StatusRefunded,
			"updated_at": time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}

func (r *Repo) WriteDistribution(ctx context.Context, id string, d Distribution, t Tax) error {
	return r.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"dist_owner_cents":     d.OwnerCents,
			"dist_reserve_cents":   d.ReserveCents,
			"dist_owner_account":   d.OwnerAccount,
			"dist_reserve_account": d.ReserveAccount,
			"dist_transferred":     d.Transferred,
			"dist_transfer_date":   d.TransferDate,
			"tax_taxable":          t.Taxable,
			"tax_tax_cents":        t.TaxCents,
			"tax_rate_bp":          t.RateBP,
			"updated_at":           time.Now(),
		}).Error
}

func (r *Repo) MarkTransferred(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ? AND status = ? AND dist_transferred = ?", id, StatusCompleted, false).
		Updates(map[string]any{
			"dist_transferred":   true,
			"dist_transfer_date": at,
			"updated_at":         time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}

func (r *Repo) ListUndistributed(ctx context.Context, limit int) ([]Payment, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	var items []Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND dist_transferred = ?", StatusCompleted, false).
		Order("processed_date ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *Repo) RecordNotification(ctx context.Context, n *GatewayNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *Repo) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]Payment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	q := r.db.WithContext(ctx).Model(&Payment{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Payment
	err := q.
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error
	return items, total, err
}

func isDup(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
