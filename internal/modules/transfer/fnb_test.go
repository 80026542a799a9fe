package transfer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"westcoastdigital.co.za/app/internal/modules/payments"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTransferPostsBothPayouts(t *testing.T) {
	var got []payout
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payouts", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var p payout
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		got = append(got, p)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewFNBClient(Config{BaseURL: srv.URL, APIKey: "test-key"}, discardLogger())
	err := c.Transfer(context.Background(), payments.TransferRequest{
		PaymentID:      "pay-1",
		OwnerAccount:   "62000000001",
		OwnerCents:     13930,
		ReserveAccount: "62000000002",
		ReserveCents:   5970,
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	require.Equal(t, payout{Account: "62000000001", AmountCents: 13930, Currency: "ZAR", Reference: "pay-1-owner"}, got[0])
	require.Equal(t, payout{Account: "62000000002", AmountCents: 5970, Currency: "ZAR", Reference: "pay-1-reserve"}, got[1])
}

func TestTransferFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewFNBClient(Config{BaseURL: srv.URL, APIKey: "test-key"}, discardLogger())
	err := c.Transfer(context.Background(), payments.TransferRequest{
		PaymentID:    "pay-1",
		OwnerAccount: "62000000001",
		OwnerCents:   100,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "pay-1-owner")
}

func TestTransferSimulatedModeNeedsNoNetwork(t *testing.T) {
	c := NewFNBClient(Config{}, discardLogger())
	c.SetHTTPClient(nil) // any network use would panic

	err := c.Transfer(context.Background(), payments.TransferRequest{
		PaymentID:      "pay-1",
		OwnerAccount:   "62000000001",
		OwnerCents:     70,
		ReserveAccount: "62000000002",
		ReserveCents:   30,
	})
	require.NoError(t, err)
}

func TestTransferSkipsZeroPayout(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewFNBClient(Config{BaseURL: srv.URL}, discardLogger())
	err := c.Transfer(context.Background(), payments.TransferRequest{
		PaymentID:      "pay-1",
		OwnerAccount:   "62000000001",
		OwnerCents:     0,
		ReserveAccount: "62000000002",
		ReserveCents:   1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}
