package admin

import (
	"context"
	"time"

	"gorm.io/gorm"

	"westcoastdigital.co.za/app/internal/modules/payments"
)

// Reports serves the admin dashboard and financial reporting queries.
// Read-only aggregates over the payments and directory tables.
type Reports struct{ db *gorm.DB }

func NewReports(db *gorm.DB) *Reports { return &Reports{db: db} }

type DashboardStats struct {
	TotalBusinesses     int64 `json:"totalBusinesses"`
	ActiveBusinesses    int64 `json:"activeBusinesses"`
	BoostedBusinesses   int64 `json:"boostedBusinesses"`
	ActiveSubscriptions int64 `json:"activeSubscriptions"`
	TotalUsers          int64 `json:"totalUsers"`

	CompletedPayments int64 `json:"completedPayments"`
	PendingPayments   int64 `json:"pendingPayments"`

	TotalRevenueCents int64 `json:"totalRevenueCents"`
	MonthRevenueCents int64 `json:"monthRevenueCents"`
}

func (r *Reports) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var s DashboardStats
	db := r.db.WithContext(ctx)

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&s.TotalBusinesses, db.Table("businesses")},
		{&s.ActiveBusinesses, db.Table("businesses").Where("is_active = ?", true)},
		{&s.BoostedBusinesses, db.Table("businesses").Where("is_boosted = ? AND boost_expiry > ?", true, time.Now())},
		{&s.ActiveSubscriptions, db.Table("subscriptions").Where("status = ?", "active")},
		{&s.TotalUsers, db.Table("users")},
		{&s.CompletedPayments, db.Table("payments").Where("status = ?", payments.StatusCompleted)},
		{&s.PendingPayments, db.Table("payments").Where("status = ?", payments.StatusPending)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return DashboardStats{}, err
		}
	}

	if err := db.Table("payments").
		Where("status = ?", payments.StatusCompleted).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&s.TotalRevenueCents).Error; err != nil {
		return DashboardStats{}, err
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if err := db.Table("payments").
		Where("status = ? AND payment_date >= ?", payments.StatusCompleted, monthStart).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&s.MonthRevenueCents).Error; err != nil {
		return DashboardStats{}, err
	}

	return s, nil
}

type FinancialLine struct {
	PaymentType  string `json:"paymentType"`
	Plan         string `json:"plan"`
	Count        int64  `json:"count"`
	AmountCents  int64  `json:"amountCents"`
	OwnerCents   int64  `json:"ownerCents"`
	ReserveCents int64  `json:"reserveCents"`
	TaxCents     int64  `json:"taxCents"`
}

type FinancialReport struct {
	From  time.Time       `json:"from"`
	To    time.Time       `json:"to"`
	Lines []FinancialLine `json:"lines"`

	TotalAmountCents  int64 `json:"totalAmountCents"`
	TotalOwnerCents   int64 `json:"totalOwnerCents"`
	TotalReserveCents int64 `json:"totalReserveCents"`
	TotalTaxCents     int64 `json:"totalTaxCents"`
}

// Financial breaks completed revenue down per payment type and plan over
// the given period, including the fund split and tax sums.
func (r *Reports) Financial(ctx context.Context, from, to time.Time) (FinancialReport, error) {
	rep := FinancialReport{From: from, To: to}

	err := r.db.WithContext(ctx).Table("payments").
		Select(`payment_type,
			plan,
			COUNT(*) AS count,
			COALESCE(SUM(amount_cents), 0) AS amount_cents,
			COALESCE(SUM(dist_owner_cents), 0) AS owner_cents,
			COALESCE(SUM(dist_reserve_cents), 0) AS reserve_cents,
			COALESCE(SUM(tax_tax_cents), 0) AS tax_cents`).
		Where("status = ? AND payment_date >= ? AND payment_date < ?", payments.StatusCompleted, from, to).
		Group("payment_type, plan").
		Order("payment_type, plan").
		Scan(&rep.Lines).Error
	if err != nil {
		return FinancialReport{}, err
	}

	for _, l := range rep.Lines {
		rep.TotalAmountCents += l.AmountCents
		rep.TotalOwnerCents += l.OwnerCents
		rep.TotalReserveCents += l.ReserveCents
		rep.TotalTaxCents += l.TaxCents
	}
	return rep, nil
}

// ListPayments pages through the ledger for the admin payments view.
func (r *Reports) ListPayments(ctx context.Context, status string, page, pageSize int) ([]payments.Payment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	q := r.db.WithContext(ctx).Model(&payments.Payment{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []payments.Payment
	err := q.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error
	return items, total, err
}
