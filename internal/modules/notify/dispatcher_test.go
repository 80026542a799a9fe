package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"westcoastdigital.co.za/app/internal/modules/businesses"
	"westcoastdigital.co.za/app/internal/modules/payments"
)

type sentEmail struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

type emailRecorder struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (r *emailRecorder) SendEmail(ctx context.Context, to, toName, subject, htmlBody, textBody string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentEmail{To: to, ToName: toName, Subject: subject, HTML: htmlBody, Text: textBody})
	return r.err
}

type userDirStub struct {
	name, email string
	err         error
}

func (s *userDirStub) ContactFor(ctx context.Context, id string) (string, string, error) {
	return s.name, s.email, s.err
}

type bizDirStub struct {
	biz businesses.Business
	err error
}

func (s *bizDirStub) Get(ctx context.Context, id string) (businesses.Business, error) {
	return s.biz, s.err
}

func newTestDispatcher(rec *emailRecorder, users *userDirStub, biz *bizDirStub) *Dispatcher {
	d := NewDispatcher(rec, users, biz, "admin@westcoastdigital.co.za",
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	d.SetSynchronous()
	return d
}

func completedPayment() payments.Payment {
	ref := "pf-100"
	paidAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return payments.Payment{
		ID:          "pay-1",
		BusinessID:  "biz-1",
		UserID:      "user-1",
		AmountCents: 19900,
		Type:        payments.TypeSubscription,
		Plan:        "Bronze",
		Status:      payments.StatusCompleted,
		GatewayRef:  &ref,
		PaymentDate: &paidAt,
	}
}

func TestPaymentCompletedNotice(t *testing.T) {
	rec := &emailRecorder{}
	d := newTestDispatcher(rec,
		&userDirStub{name: "Thandi", email: "thandi@example.com"},
		&bizDirStub{biz: businesses.Business{ID: "biz-1", Name: "Langebaan Kite School"}})

	d.PaymentCompleted(context.Background(), completedPayment())

	require.Len(t, rec.sent, 1)
	m := rec.sent[0]
	require.Equal(t, "thandi@example.com", m.To)
	require.Equal(t, "Thandi", m.ToName)
	require.Equal(t, "Payment Confirmation - West Coast Digital", m.Subject)
	require.Contains(t, m.HTML, "Langebaan Kite School")
	require.Contains(t, m.HTML, "R199.00")
	require.Contains(t, m.HTML, "pf-100")
	require.Contains(t, m.Text, "Plan: Bronze")
}

func TestPaymentCompletedPayerLookupFailure(t *testing.T) {
	rec := &emailRecorder{}
	d := newTestDispatcher(rec,
		&userDirStub{err: errors.New("user gone")},
		&bizDirStub{})

	d.PaymentCompleted(context.Background(), completedPayment())
	require.Empty(t, rec.sent)
}

func TestPaymentCompletedFallsBackToBusinessID(t *testing.T) {
	rec := &emailRecorder{}
	d := newTestDispatcher(rec,
		&userDirStub{name: "Thandi", email: "thandi@example.com"},
		&bizDirStub{err: errors.New("not found")})

	d.PaymentCompleted(context.Background(), completedPayment())

	require.Len(t, rec.sent, 1)
	require.Contains(t, rec.sent[0].HTML, "biz-1")
}

func TestFundsDistributedNotice(t *testing.T) {
	rec := &emailRecorder{}
	d := newTestDispatcher(rec, &userDirStub{}, &bizDirStub{})

	p := completedPayment()
	p.Distribution = payments.Distribution{
		OwnerCents:     13930,
		ReserveCents:   5970,
		OwnerAccount:   "62000000001",
		ReserveAccount: "62000000002",
		Transferred:    true,
	}
	p.Tax = payments.Tax{Taxable: true, TaxCents: 2090, RateBP: payments.DefaultTaxRateBP}

	d.FundsDistributed(context.Background(), p)

	require.Len(t, rec.sent, 1)
	m := rec.sent[0]
	require.Equal(t, "admin@westcoastdigital.co.za", m.To)
	require.Contains(t, m.HTML, "R139.30")
	require.Contains(t, m.HTML, "R59.70")
	require.Contains(t, m.HTML, "R20.90")
}

func TestFundsDistributedWithoutAdminEmail(t *testing.T) {
	rec := &emailRecorder{}
	d := NewDispatcher(rec, &userDirStub{}, &bizDirStub{}, "",
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	d.SetSynchronous()

	d.FundsDistributed(context.Background(), completedPayment())
	require.Empty(t, rec.sent)
}

func TestDeliveryErrorIsSwallowed(t *testing.T) {
	rec := &emailRecorder{err: errors.New("smtp down")}
	d := newTestDispatcher(rec,
		&userDirStub{name: "Thandi", email: "thandi@example.com"},
		&bizDirStub{})

	// Must not panic or propagate.
	d.PaymentCompleted(context.Background(), completedPayment())
	require.Len(t, rec.sent, 1)
}
