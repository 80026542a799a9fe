package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"westcoastdigital.co.za/app/internal/config"
	"westcoastdigital.co.za/app/internal/http/handlers"
	"westcoastdigital.co.za/app/internal/http/middleware"
)

// Deps carries the constructed handlers into the router.
type Deps struct {
	ITN        *handlers.ITNHandler
	Payments   *handlers.PaymentsHandler
	Businesses *handlers.BusinessesHandler
	Admin      *handlers.AdminHandler
}

func NewRouter(logger *slog.Logger, db *gorm.DB, cfg config.Config, d Deps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.SessionMiddleware(middleware.SessionCfg{
		DB:         db,
		CookieName: cfg.SessionCookie,
		Secure:     cfg.SecureCookies,
	}))

	api := r.Group("/api")

	// Gateway callback, no auth: PayFast authenticates by signature.
	api.POST("/payments/notify", d.ITN.Handle)

	pay := api.Group("/payments", middleware.RequireAuth())
	{
		pay.POST("/process", d.Payments.Process)
		pay.GET("/history", d.Payments.History)
		pay.GET("/:id", d.Payments.Get)
		pay.POST("/:id/refund", middleware.RequireAdmin(), d.Payments.Refund)
	}

	biz := api.Group("/businesses")
	{
		biz.GET("", d.Businesses.List)
		biz.GET("/:id", d.Businesses.Get)
		biz.POST("/:id/click", d.Businesses.Click)

		auth := biz.Group("", middleware.RequireAuth())
		{
			auth.POST("", d.Businesses.Create)
			auth.PUT("/:id", d.Businesses.Update)
			auth.DELETE("/:id", d.Businesses.Delete)
			auth.POST("/:id/images", d.Businesses.UploadImage)
			auth.GET("/user/my-businesses", d.Businesses.MyBusinesses)
		}
	}

	adm := api.Group("/admin", middleware.RequireAdmin())
	{
		adm.GET("/dashboard/stats", d.Admin.DashboardStats)
		adm.GET("/reports/financial", d.Admin.FinancialReport)
		adm.GET("/payments", d.Admin.ListPayments)
		adm.PUT("/businesses/:id/status", d.Admin.SetBusinessStatus)
	}

	return r
}
