package handlers

import (
	"pos_backoffice_go/middleware"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the pages, partials and API routes. Client identity and locale
// middleware are expected to run before them.
func (h *Handler) RegisterRoutes(e *echo.Echo, loginLimiter *middleware.RateLimiter) {
	e.GET("/healthz", Healthz)

	// View switcher and session
	e.GET("/", h.HomeHandler)
	if loginLimiter != nil {
		e.POST("/login", h.LoginPostHandler, loginLimiter.Middleware())
	} else {
		e.POST("/login", h.LoginPostHandler)
	}
	e.POST("/logout", h.LogoutHandler)

	// Toasts are per browser, with or without a session
	e.GET("/htmx/notifications", h.GetNotificationsHTMX)

	// Sale registration reports a missing session itself
	e.POST("/api/sales", h.RegisterSaleHandler)

	protected := e.Group("")
	protected.Use(middleware.RequireSession(h.Sessions))
	{
		protected.GET("/htmx/dashboard/sales", h.SalesWidgetHTMX)
		protected.GET("/htmx/dashboard/alerts", h.AlertsWidgetHTMX)
		protected.GET("/htmx/dashboard/top-products", h.TopProductsWidgetHTMX)
		protected.GET("/dashboard/top-products.xlsx", h.ExportTopProductsHandler)
		protected.GET("/dashboard/top-products.csv", h.ExportTopProductsCSVHandler)
		protected.GET("/api/activity", h.GetActivityHandler)
	}
}
