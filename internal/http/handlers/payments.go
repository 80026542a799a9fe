package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"westcoastdigital.co.za/app/internal/http/middleware"
	"westcoastdigital.co.za/app/internal/http/validation"
	"westcoastdigital.co.za/app/internal/modules/payments"
	"westcoastdigital.co.za/app/internal/shared/apperr"
)

type PaymentsHandler struct {
	Service *payments.Service
	Ledger  payments.Ledger
	Refunds *payments.RefundService
}

func NewPaymentsHandler(svc *payments.Service, ledger payments.Ledger, refunds *payments.RefundService) *PaymentsHandler {
	return &PaymentsHandler{Service: svc, Ledger: ledger, Refunds: refunds}
}

type processRequest struct {
	BusinessID  string `json:"businessId" binding:"required,uuid"`
	PaymentType string `json:"paymentType" binding:"required,oneof=subscription boost"`
	Plan        string `json:"plan" binding:"omitempty,max=16"`
}

// POST /api/payments/process
func (h *PaymentsHandler) Process(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid payment request.", validation.FromBindError(err, &req)))
		return
	}

	res, err := h.Service.Initiate(c.Request.Context(), payments.InitiateInput{
		UserID:     u.ID,
		UserEmail:  u.Email,
		UserName:   u.Name,
		BusinessID: req.BusinessID,
		Type:       req.PaymentType,
		Plan:       req.Plan,
	})
	if err != nil {
		if errors.Is(err, payments.ErrInvalidPlan) {
			middleware.Fail(c, apperr.InvalidErr("Unknown plan or payment type.", nil))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"paymentId":   res.Payment.ID,
		"merchantRef": res.Payment.MerchantRef,
		"amount":      payments.AmountString(res.Payment.AmountCents),
		"redirectUrl": res.RedirectURL,
	})
}

// GET /api/payments/history
func (h *PaymentsHandler) History(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	items, total, err := h.Ledger.ListByUser(c.Request.Context(), u.ID, page, pageSize)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": paymentViews(items),
		"total":    total,
		"page":     page,
	})
}

// GET /api/payments/:id
func (h *PaymentsHandler) Get(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	p, err := h.Ledger.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, payments.ErrPaymentNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Payment not found."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	if p.UserID != u.ID && u.Role != "admin" {
		middleware.Fail(c, apperr.NotFoundErr("Payment not found."))
		return
	}

	c.JSON(http.StatusOK, paymentView(p))
}

// POST /api/payments/:id/refund (admin)
func (h *PaymentsHandler) Refund(c *gin.Context) {
	p, err := h.Refunds.Refund(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrPaymentNotFound):
			middleware.Fail(c, apperr.NotFoundErr("Payment not found."))
		case errors.Is(err, payments.ErrNotRefundable):
			middleware.Fail(c, apperr.ConflictErr("Only completed payments can be refunded."))
		default:
			middleware.Fail(c, apperr.Wrap(err))
		}
		return
	}

	c.JSON(http.StatusOK, paymentView(p))
}

func paymentView(p payments.Payment) gin.H {
	v := gin.H{
		"id":          p.ID,
		"businessId":  p.BusinessID,
		"amount":      payments.AmountString(p.AmountCents),
		"currency":    p.Currency,
		"paymentType": p.Type,
		"plan":        p.Plan,
		"status":      p.Status,
		"method":      p.Method,
		"merchantRef": p.MerchantRef,
		"createdAt":   p.CreatedAt,
	}
	if p.GatewayRef != nil {
		v["gatewayRef"] = *p.GatewayRef
	}
	if p.PaymentDate != nil {
		v["paymentDate"] = *p.PaymentDate
	}
	return v
}

func paymentViews(items []payments.Payment) []gin.H {
	out := make([]gin.H, 0, len(items))
	for _, p := range items {
		out = append(out, paymentView(p))
	}
	return out
}
