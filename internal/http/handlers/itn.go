package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"westcoastdigital.co.za/app/internal/modules/payfast"
	"westcoastdigital.co.za/app/internal/modules/payments"
)

type ITNHandler struct {
	Logger   *slog.Logger
	Verifier *payfast.Verifier
	Engine   *payments.Engine
}

func NewITNHandler(logger *slog.Logger, v *payfast.Verifier, e *payments.Engine) *ITNHandler {
	return &ITNHandler{Logger: logger, Verifier: v, Engine: e}
}

// POST /api/payments/notify
// PayFast posts the ITN form-encoded. The gateway retries on anything but
// 200, so the handler only acknowledges after the settlement transition is
// durable; transfer and notification failures never change the response.
func (h *ITNHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid body")
		return
	}

	itn, err := payfast.ParseITN(body)
	if err != nil {
		h.Logger.Warn("itn parse failed", "err", err)
		c.String(http.StatusBadRequest, "invalid notification")
		return
	}

	ctx := c.Request.Context()
	switch h.Verifier.Verify(ctx, itn) {
	case payfast.Valid:
		// fall through to settlement
	case payfast.SignatureInvalid:
		h.Logger.Warn("itn signature mismatch",
			"gateway_ref", itn.Fields.Get(payfast.FieldPFPaymentID))
		c.String(http.StatusBadRequest, "invalid signature")
		return
	case payfast.GatewayRejected:
		// PayFast disowned the notification; the payment must not complete.
		if _, err := h.Engine.RejectNotification(ctx, itn, "gateway rejected notification"); err != nil {
			h.Logger.Error("itn reject failed", "err", err)
			c.String(http.StatusInternalServerError, "processing failed")
			return
		}
		c.String(http.StatusBadRequest, "notification rejected")
		return
	case payfast.GatewayUnreachable:
		// Leave the payment pending; PayFast redelivers on non-200.
		h.Logger.Warn("itn validation endpoint unreachable",
			"gateway_ref", itn.Fields.Get(payfast.FieldPFPaymentID))
		c.String(http.StatusBadRequest, "validation unavailable")
		return
	}

	res, err := h.Engine.Settle(ctx, itn)
	if err != nil {
		if errors.Is(err, payments.ErrPaymentNotFound) {
			// Nothing to settle here; acknowledging stops pointless retries.
			c.String(http.StatusOK, "unknown payment")
			return
		}
		h.Logger.Error("itn settlement failed", "err", err)
		c.String(http.StatusInternalServerError, "processing failed")
		return
	}

	switch res.Outcome {
	case payments.OutcomeDuplicate:
		c.String(http.StatusOK, "already processed")
	case payments.OutcomeRejected:
		c.String(http.StatusOK, "payment failed recorded")
	default:
		c.String(http.StatusOK, "payment processed")
	}
}
