package payfast

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// VerifyResult classifies a notification after local and remote checks.
type VerifyResult int

const (
	Valid VerifyResult = iota
	SignatureInvalid
	GatewayRejected
	GatewayUnreachable
)

func (r VerifyResult) String() string {
	switch r {
	case Valid:
		return "valid"
	case SignatureInvalid:
		return "signature_invalid"
	case GatewayRejected:
		return "gateway_rejected"
	case GatewayUnreachable:
		return "gateway_unreachable"
	default:
		return "unknown"
	}
}

// validResponse is the literal token the validate endpoint answers with
// when it recognizes the notification.
const validResponse = "VALID"

// Verifier is a pure verification oracle: it recomputes the local signature
// and round-trips the field set to the gateway's validate endpoint. It has
// no side effects beyond the outbound call.
type Verifier struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewVerifier(cfg Config, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		cfg: cfg,
		// The gateway retries delivery on its own schedule; a slow validate
		// endpoint must not pin the notification handler.
		client: &http.Client{Timeout: 5 * time.Second},
		logger: logger,
	}
}

// SetHTTPClient overrides the confirmation client (tests).
func (v *Verifier) SetHTTPClient(c *http.Client) { v.client = c }

// Verify checks an ITN. Signature mismatch short-circuits without any
// network call. Network failure and timeouts are reported as
// GatewayUnreachable so the caller can leave the payment untouched for
// the gateway's redelivery.
func (v *Verifier) Verify(ctx context.Context, itn ITN) VerifyResult {
	if !VerifySignature(itn, v.cfg.Passphrase) {
		return SignatureInvalid
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.ValidateURL,
		strings.NewReader(itn.Fields.Encode()))
	if err != nil {
		return GatewayUnreachable
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.ErrorContext(ctx, "payfast validate call failed", "err", err)
		return GatewayUnreachable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		v.logger.ErrorContext(ctx, "payfast validate read failed", "err", err)
		return GatewayUnreachable
	}

	if strings.TrimSpace(string(body)) != validResponse {
		v.logger.WarnContext(ctx, "payfast rejected notification",
			"status", resp.StatusCode, "body", truncate(string(body), 120))
		return GatewayRejected
	}
	return Valid
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
