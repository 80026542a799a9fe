package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"westcoastdigital.co.za/app/internal/modules/payfast"
	"westcoastdigital.co.za/app/internal/modules/payments"
)

const testPassphrase = "itn test phrase"

// memLedger is an in-memory Ledger with the same conditional-write
// semantics as the gorm repo.
type memLedger struct {
	mu    sync.Mutex
	byID  map[string]*payments.Payment
	notes []*payments.GatewayNotification
}

func newMemLedger(ps ...payments.Payment) *memLedger {
	l := &memLedger{byID: map[string]*payments.Payment{}}
	for i := range ps {
		p := ps[i]
		l.byID[p.ID] = &p
	}
	return l
}

func (l *memLedger) Create(ctx context.Context, p *payments.Payment) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byID[p.ID] = p
	return nil
}

func (l *memLedger) Get(ctx context.Context, id string) (payments.Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.byID[id]; ok {
		return *p, nil
	}
	return payments.Payment{}, payments.ErrPaymentNotFound
}

func (l *memLedger) FindByGatewayRef(ctx context.Context, ref string) (payments.Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.byID {
		if p.GatewayRef != nil && *p.GatewayRef == ref {
			return *p, nil
		}
	}
	return payments.Payment{}, payments.ErrPaymentNotFound
}

func (l *memLedger) FindPendingByMerchantRef(ctx context.Context, ref string) (payments.Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.byID {
		if p.MerchantRef == ref && p.Status == payments.StatusPending {
			return *p, nil
		}
	}
	return payments.Payment{}, payments.ErrPaymentNotFound
}

func (l *memLedger) CompleteIfPending(ctx context.Context, id, gatewayRef string, paidAt time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.byID[id]
	if !ok || p.Status != payments.StatusPending {
		return false, nil
	}
	p.Status = payments.StatusCompleted
	p.GatewayRef = &gatewayRef
	p.PaymentDate = &paidAt
	return true, nil
}

func (l *memLedger) MarkFailedIfPending(ctx context.Context, id, reason string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.byID[id]
	if !ok || p.Status != payments.StatusPending {
		return false, nil
	}
	p.Status = payments.StatusFailed
	p.FailureReason = &reason
	return true, nil
}

func (l *memLedger) MarkRefunded(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.byID[id]
	if !ok || p.Status != payments.StatusCompleted {
		return false, nil
	}
	p.Status = payments.StatusRefunded
	return true, nil
}

func (l *memLedger) WriteDistribution(ctx context.Context, id string, d payments.Distribution, t payments.Tax) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.byID[id]; ok {
		p.Distribution = d
		p.Tax = t
	}
	return nil
}

func (l *memLedger) MarkTransferred(ctx context.Context, id string, at time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.byID[id]
	if !ok || p.Status != payments.StatusCompleted || p.Distribution.Transferred {
		return false, nil
	}
	p.Distribution.Transferred = true
	p.Distribution.TransferDate = &at
	return true, nil
}

func (l *memLedger) ListUndistributed(ctx context.Context, limit int) ([]payments.Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []payments.Payment
	for _, p := range l.byID {
		if p.Status == payments.StatusCompleted && !p.Distribution.Transferred {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (l *memLedger) RecordNotification(ctx context.Context, n *payments.GatewayNotification) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notes = append(l.notes, n)
	return nil
}

func (l *memLedger) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]payments.Payment, int64, error) {
	return nil, 0, nil
}

type noopBusinessStore struct{ boosted, subscribed []string }

func (s *noopBusinessStore) ApplySubscription(ctx context.Context, id, plan string, start, end time.Time) error {
	s.subscribed = append(s.subscribed, id)
	return nil
}
func (s *noopBusinessStore) ApplyBoost(ctx context.Context, id string, expiry time.Time) error {
	s.boosted = append(s.boosted, id)
	return nil
}
func (s *noopBusinessStore) ResetSubscription(ctx context.Context, id string) error { return nil }
func (s *noopBusinessStore) ClearBoost(ctx context.Context, id string) error        { return nil }

type noopSubStore struct{}

func (noopSubStore) Activate(ctx context.Context, in payments.SubscriptionActivation) error {
	return nil
}
func (noopSubStore) Cancel(ctx context.Context, businessID string) error { return nil }

type noopBank struct{}

func (noopBank) Transfer(ctx context.Context, req payments.TransferRequest) error { return nil }

type noopDispatcher struct{}

func (noopDispatcher) PaymentCompleted(ctx context.Context, p payments.Payment)  {}
func (noopDispatcher) FundsDistributed(ctx context.Context, p payments.Payment) {}

type itnFixture struct {
	router   *gin.Engine
	ledger   *memLedger
	biz      *noopBusinessStore
	validate *httptest.Server
}

// newITNFixture wires a real engine and verifier against an in-memory
// ledger; validateBody is what the fake PayFast validate endpoint answers.
func newITNFixture(t *testing.T, validateBody string, seed ...payments.Payment) *itnFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	validate := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, validateBody)
	}))
	t.Cleanup(validate.Close)

	cfg := payfast.Config{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		Passphrase:  testPassphrase,
		ValidateURL: validate.URL,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ledger := newMemLedger(seed...)
	biz := &noopBusinessStore{}
	engine := payments.NewEngine(ledger, biz, noopSubStore{}, noopBank{}, noopDispatcher{}, payments.EngineConfig{
		OwnerAccount:   "62000000001",
		ReserveAccount: "62000000002",
		Logger:         logger,
	})

	h := NewITNHandler(logger, payfast.NewVerifier(cfg, logger), engine)
	r := gin.New()
	r.POST("/api/payments/notify", h.Handle)

	return &itnFixture{router: r, ledger: ledger, biz: biz, validate: validate}
}

func signedITNBody(t *testing.T, status, gatewayRef, merchantRef string) string {
	t.Helper()
	var f payfast.Fields
	f.Set(payfast.FieldMPaymentID, merchantRef)
	f.Set(payfast.FieldPFPaymentID, gatewayRef)
	f.Set(payfast.FieldPaymentStatus, status)
	f.Set(payfast.FieldAmountGross, "99.00")
	sig := payfast.Sign(f, testPassphrase)
	return f.Encode() + "&" + payfast.FieldSignature + "=" + sig
}

func postITN(f *itnFixture, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/notify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	f.router.ServeHTTP(w, req)
	return w
}

func seedPending() payments.Payment {
	return payments.Payment{
		ID:          "pay-1",
		BusinessID:  "biz-1",
		UserID:      "user-1",
		AmountCents: 9900,
		Type:        payments.TypeBoost,
		Plan:        payments.PlanBoost,
		Status:      payments.StatusPending,
		MerchantRef: "WCD-1",
	}
}

func TestITNCompletesPayment(t *testing.T) {
	f := newITNFixture(t, "VALID", seedPending())

	w := postITN(f, signedITNBody(t, payfast.StatusComplete, "pf-100", "WCD-1"))
	require.Equal(t, http.StatusOK, w.Code)

	p, err := f.ledger.Get(context.Background(), "pay-1")
	require.NoError(t, err)
	require.Equal(t, payments.StatusCompleted, p.Status)
	require.True(t, p.Distribution.Transferred)
	require.Equal(t, 6930, p.Distribution.OwnerCents)
	require.Equal(t, 2970, p.Distribution.ReserveCents)
	require.Equal(t, []string{"biz-1"}, f.biz.boosted)
}

func TestITNDuplicateDeliveryIsIdempotent(t *testing.T) {
	f := newITNFixture(t, "VALID", seedPending())
	body := signedITNBody(t, payfast.StatusComplete, "pf-100", "WCD-1")

	require.Equal(t, http.StatusOK, postITN(f, body).Code)
	require.Equal(t, http.StatusOK, postITN(f, body).Code)

	// Boost applied exactly once.
	require.Equal(t, []string{"biz-1"}, f.biz.boosted)
	require.Len(t, f.ledger.notes, 2)
}

func TestITNRejectsBadSignature(t *testing.T) {
	f := newITNFixture(t, "VALID", seedPending())
	body := signedITNBody(t, payfast.StatusComplete, "pf-100", "WCD-1")
	body = strings.Replace(body, "amount_gross=99.00", "amount_gross=1.00", 1)

	w := postITN(f, body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	p, _ := f.ledger.Get(context.Background(), "pay-1")
	require.Equal(t, payments.StatusPending, p.Status)
}

func TestITNGatewayRejectionMarksFailed(t *testing.T) {
	f := newITNFixture(t, "INVALID", seedPending())

	w := postITN(f, signedITNBody(t, payfast.StatusComplete, "pf-100", "WCD-1"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	p, _ := f.ledger.Get(context.Background(), "pay-1")
	require.Equal(t, payments.StatusFailed, p.Status)
}

func TestITNGatewayUnreachableLeavesPending(t *testing.T) {
	f := newITNFixture(t, "VALID", seedPending())
	f.validate.Close() // validate endpoint down

	w := postITN(f, signedITNBody(t, payfast.StatusComplete, "pf-100", "WCD-1"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Still pending so the gateway's redelivery can settle it.
	p, _ := f.ledger.Get(context.Background(), "pay-1")
	require.Equal(t, payments.StatusPending, p.Status)
}

func TestITNNonCompleteStatusFailsPayment(t *testing.T) {
	f := newITNFixture(t, "VALID", seedPending())

	w := postITN(f, signedITNBody(t, "CANCELLED", "pf-100", "WCD-1"))
	require.Equal(t, http.StatusOK, w.Code)

	p, _ := f.ledger.Get(context.Background(), "pay-1")
	require.Equal(t, payments.StatusFailed, p.Status)
	require.NotNil(t, p.FailureReason)
}

func TestITNUnknownPaymentAcknowledged(t *testing.T) {
	f := newITNFixture(t, "VALID")

	w := postITN(f, signedITNBody(t, payfast.StatusComplete, "pf-404", "WCD-404"))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.ledger.notes, 1)
	require.NotNil(t, f.ledger.notes[0].ProcessError)
}

func TestITNMalformedBody(t *testing.T) {
	f := newITNFixture(t, "VALID")

	w := postITN(f, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}
