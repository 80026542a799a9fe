package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"westcoastdigital.co.za/app/internal/http/middleware"
	"westcoastdigital.co.za/app/internal/modules/admin"
	"westcoastdigital.co.za/app/internal/modules/businesses"
	"westcoastdigital.co.za/app/internal/shared/apperr"
)

type AdminHandler struct {
	Reports    *admin.Reports
	Businesses *businesses.Repo
}

func NewAdminHandler(reports *admin.Reports, biz *businesses.Repo) *AdminHandler {
	return &AdminHandler{Reports: reports, Businesses: biz}
}

// GET /api/admin/dashboard/stats
func (h *AdminHandler) DashboardStats(c *gin.Context) {
	stats, err := h.Reports.DashboardStats(c.Request.Context())
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /api/admin/reports/financial?from=2025-01-01&to=2025-02-01
func (h *AdminHandler) FinancialReport(c *gin.Context) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			middleware.Fail(c, apperr.InvalidErr("Invalid 'from' date, expected YYYY-MM-DD.", nil))
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			middleware.Fail(c, apperr.InvalidErr("Invalid 'to' date, expected YYYY-MM-DD.", nil))
			return
		}
		to = t
	}
	if !to.After(from) {
		middleware.Fail(c, apperr.InvalidErr("'to' must be after 'from'.", nil))
		return
	}

	rep, err := h.Reports.Financial(c.Request.Context(), from, to)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, rep)
}

// GET /api/admin/payments
func (h *AdminHandler) ListPayments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	items, total, err := h.Reports.ListPayments(c.Request.Context(), c.Query("status"), page, pageSize)
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

type businessStatusRequest struct {
	IsActive bool `json:"isActive"`
}

// PUT /api/admin/businesses/:id/status
func (h *AdminHandler) SetBusinessStatus(c *gin.Context) {
	var req businessStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid status payload.", nil))
		return
	}

	if err := h.Businesses.Update(c.Request.Context(), c.Param("id"), map[string]any{
		"is_active": req.IsActive,
	}); err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
