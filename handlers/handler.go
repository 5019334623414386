package handlers

import (
	"net/http"
	"pos_backoffice_go/config"
	"pos_backoffice_go/middleware"
	"pos_backoffice_go/models"
	"pos_backoffice_go/services"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Handler serves the back-office pages and their htmx partials
type Handler struct {
	Config   *config.Config
	Sessions *services.SessionController
	Loader   *services.DashboardLoader
	Notifier *services.Notifier
	Sales    *services.SaleService
	Audit    *services.AuditService
}

func New(cfg *config.Config, sessions *services.SessionController, loader *services.DashboardLoader, notifier *services.Notifier, sales *services.SaleService, audit *services.AuditService) *Handler {
	return &Handler{
		Config:   cfg,
		Sessions: sessions,
		Loader:   loader,
		Notifier: notifier,
		Sales:    sales,
		Audit:    audit,
	}
}

// render writes an HTML component with the given status
func render(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

// redirectHome sends the browser back to the view switcher
func redirectHome(c echo.Context) error {
	if isHTMX(c) {
		c.Response().Header().Set("HX-Redirect", "/")
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// reportPeriod reads the optional report range. Dates that do not parse are ignored.
func reportPeriod(c echo.Context) models.ReportPeriod {
	return services.NewReportPeriod(c.QueryParam("fecha_inicio"), c.QueryParam("fecha_fin"))
}

func (h *Handler) drainToasts(c echo.Context) []models.Notification {
	toasts, err := h.Notifier.Drain(c.Request().Context(), middleware.GetClientID(c))
	if err != nil {
		logrus.WithError(err).Error("failed to load notifications")
		return nil
	}
	return toasts
}

// Healthz reports liveness
func Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
