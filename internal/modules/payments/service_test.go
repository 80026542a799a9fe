package payments

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"westcoastdigital.co.za/app/internal/modules/businesses"
	"westcoastdigital.co.za/app/internal/modules/payfast"
)

func newInitiateFixture() (*Service, *ledgerMock, *directoryMock) {
	ledger := &ledgerMock{}
	dir := &directoryMock{}
	svc := NewService(ledger, dir, ServiceConfig{
		Gateway: payfast.Config{
			MerchantID:  "10000100",
			MerchantKey: "46f0cd694581a",
			Passphrase:  "secret phrase",
			ProcessURL:  "https://sandbox.payfast.co.za/eng/process",
		},
		FrontendURL: "https://westcoastdigital.co.za",
		BackendURL:  "https://api.westcoastdigital.co.za",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, ledger, dir
}

func TestInitiateSubscription(t *testing.T) {
	svc, ledger, dir := newInitiateFixture()

	dir.On("Get", mock.Anything, "biz-1").Return(businesses.Business{ID: "biz-1"}, nil)
	ledger.On("Create", mock.Anything, mock.MatchedBy(func(p *Payment) bool {
		return p.Status == StatusPending &&
			p.Type == TypeSubscription &&
			p.Plan == "Gold" &&
			p.AmountCents == 99900 &&
			p.Method == MethodPayFast &&
			strings.HasPrefix(p.MerchantRef, "WCD-")
	})).Return(nil)

	res, err := svc.Initiate(context.Background(), InitiateInput{
		UserID:     "user-1",
		UserEmail:  "owner@example.com",
		UserName:   "Thandi",
		BusinessID: "biz-1",
		Type:       TypeSubscription,
		Plan:       "Gold",
	})
	require.NoError(t, err)
	require.Equal(t, 99900, res.Payment.AmountCents)

	u, err := url.Parse(res.RedirectURL)
	require.NoError(t, err)
	require.Equal(t, "sandbox.payfast.co.za", u.Host)

	q := u.Query()
	require.Equal(t, "10000100", q.Get("merchant_id"))
	require.Equal(t, "999.00", q.Get("amount"))
	require.Equal(t, "West Coast Digital - Gold", q.Get("item_name"))
	require.Equal(t, "https://api.westcoastdigital.co.za/api/payments/notify", q.Get("notify_url"))
	require.Equal(t, res.Payment.MerchantRef, q.Get(payfast.FieldMPaymentID))
	require.Equal(t, "biz-1", q.Get(payfast.FieldCustomInt1))
	require.Equal(t, TypeSubscription, q.Get(payfast.FieldCustomStr1))
	require.NotEmpty(t, q.Get(payfast.FieldSignature))
	ledger.AssertExpectations(t)
}

func TestInitiateRedirectSignatureVerifies(t *testing.T) {
	svc, ledger, dir := newInitiateFixture()

	dir.On("Get", mock.Anything, "biz-1").Return(businesses.Business{ID: "biz-1"}, nil)
	ledger.On("Create", mock.Anything, mock.AnythingOfType("*payments.Payment")).Return(nil)

	res, err := svc.Initiate(context.Background(), InitiateInput{
		UserID:     "user-1",
		UserEmail:  "owner@example.com",
		UserName:   "Thandi",
		BusinessID: "biz-1",
		Type:       TypeBoost,
	})
	require.NoError(t, err)

	// The query string round-trips through the notification parser and the
	// signature holds over it, same as the gateway will check it.
	_, rawQuery, ok := strings.Cut(res.RedirectURL, "?")
	require.True(t, ok)
	itn, err := payfast.ParseITN([]byte(rawQuery))
	require.NoError(t, err)
	require.True(t, payfast.VerifySignature(itn, "secret phrase"))
	require.Equal(t, PlanBoost, itn.Fields.Get(payfast.FieldCustomStr2))
	require.Equal(t, "99.00", itn.Fields.Get("amount"))
}

func TestInitiateBoostIgnoresPlanInput(t *testing.T) {
	svc, ledger, dir := newInitiateFixture()

	dir.On("Get", mock.Anything, "biz-1").Return(businesses.Business{ID: "biz-1"}, nil)
	ledger.On("Create", mock.Anything, mock.MatchedBy(func(p *Payment) bool {
		return p.Plan == PlanBoost && p.AmountCents == businesses.BoostPriceCents
	})).Return(nil)

	res, err := svc.Initiate(context.Background(), InitiateInput{
		UserID:     "user-1",
		BusinessID: "biz-1",
		Type:       TypeBoost,
		Plan:       "Platinum Pro", // must not override the boost price
	})
	require.NoError(t, err)
	require.Equal(t, businesses.BoostPriceCents, res.Payment.AmountCents)
}

func TestInitiateRejectsUnknownPlan(t *testing.T) {
	svc, ledger, _ := newInitiateFixture()

	_, err := svc.Initiate(context.Background(), InitiateInput{
		UserID:     "user-1",
		BusinessID: "biz-1",
		Type:       TypeSubscription,
		Plan:       "Diamond",
	})
	require.ErrorIs(t, err, ErrInvalidPlan)
	ledger.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInitiateRejectsUnknownType(t *testing.T) {
	svc, _, _ := newInitiateFixture()

	_, err := svc.Initiate(context.Background(), InitiateInput{
		UserID:     "user-1",
		BusinessID: "biz-1",
		Type:       "donation",
	})
	require.ErrorIs(t, err, ErrInvalidPlan)
}

func TestInitiateUnknownBusiness(t *testing.T) {
	svc, ledger, dir := newInitiateFixture()

	dir.On("Get", mock.Anything, "missing").Return(businesses.Business{}, context.DeadlineExceeded)

	_, err := svc.Initiate(context.Background(), InitiateInput{
		UserID:     "user-1",
		BusinessID: "missing",
		Type:       TypeBoost,
	})
	require.Error(t, err)
	ledger.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
