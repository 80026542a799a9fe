package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"westcoastdigital.co.za/app/internal/modules/payments"
)

type Config struct {
	BaseURL string // empty means simulated transfers (sandbox/dev)
	APIKey  string
}

// FNBClient executes the owner/reserve payouts for a settled payment.
// Without a configured base URL it runs in simulated mode: the payouts are
// logged and reported successful, matching the sandbox gateway setup.
type FNBClient struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewFNBClient(cfg Config, logger *slog.Logger) *FNBClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &FNBClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// SetHTTPClient overrides the HTTP client (tests).
func (c *FNBClient) SetHTTPClient(hc *http.Client) { c.client = hc }

type payout struct {
	Account     string `json:"account"`
	AmountCents int    `json:"amount_cents"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
}

func (c *FNBClient) Transfer(ctx context.Context, req payments.TransferRequest) error {
	payouts := []payout{
		{Account: req.OwnerAccount, AmountCents: req.OwnerCents, Currency: payments.Currency, Reference: req.PaymentID + "-owner"},
		{Account: req.ReserveAccount, AmountCents: req.ReserveCents, Currency: payments.Currency, Reference: req.PaymentID + "-reserve"},
	}

	if c.cfg.BaseURL == "" {
		for _, p := range payouts {
			c.logger.InfoContext(ctx, "simulated bank transfer",
				"account", p.Account, "amount_cents", p.AmountCents, "reference", p.Reference)
		}
		return nil
	}

	for _, p := range payouts {
		if p.AmountCents == 0 {
			continue
		}
		if err := c.post(ctx, p); err != nil {
			return fmt.Errorf("fnb payout %s: %w", p.Reference, err)
		}
	}
	return nil
}

func (c *FNBClient) post(ctx context.Context, p payout) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/payouts", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	return nil
}
