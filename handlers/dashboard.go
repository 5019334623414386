package handlers

import (
	"context"
	"net/http"
	"pos_backoffice_go/middleware"
	"pos_backoffice_go/services"
	"pos_backoffice_go/templates/components"
	"pos_backoffice_go/templates/partials"

	"github.com/labstack/echo/v4"
	"golang.org/x/net/html"
)

// SalesWidgetHTMX refreshes the sales counters
func (h *Handler) SalesWidgetHTMX(c echo.Context) error {
	session := middleware.GetCurrentSession(c)
	w := h.Loader.LoadSales(c.Request().Context(), session)
	if w.Failed() {
		return h.widgetFailed(c, w.Err)
	}

	view := partials.NewSalesView(w.Data, nil)
	return h.renderNodes(c, func(ctx context.Context) []*html.Node {
		return []*html.Node{partials.SalesSummary(ctx, view)}
	})
}

// AlertsWidgetHTMX refreshes the alert counter and, when there are alerts, the alert list
func (h *Handler) AlertsWidgetHTMX(c echo.Context) error {
	session := middleware.GetCurrentSession(c)
	w := h.Loader.LoadAlerts(c.Request().Context(), session)
	if w.Failed() {
		return h.widgetFailed(c, w.Err)
	}

	view := partials.NewAlertsView(w.Data, nil)
	return h.renderNodes(c, func(ctx context.Context) []*html.Node {
		return partials.InventoryAlertRefresh(ctx, view)
	})
}

// TopProductsWidgetHTMX refreshes the best sellers ranking
func (h *Handler) TopProductsWidgetHTMX(c echo.Context) error {
	session := middleware.GetCurrentSession(c)
	period := reportPeriod(c)
	w := h.Loader.LoadTopProducts(c.Request().Context(), session, period)
	if w.Failed() {
		return h.widgetFailed(c, w.Err)
	}

	view := partials.NewTopProductsView(w.Data, nil)
	view.Period = period
	return h.renderNodes(c, func(ctx context.Context) []*html.Node {
		return []*html.Node{partials.TopProducts(ctx, view)}
	})
}

// widgetFailed keeps the widget on screen as it was. A rejected token ends the session instead.
func (h *Handler) widgetFailed(c echo.Context, err error) error {
	if services.IsUnauthorized(err) {
		h.Sessions.Expire(c.Request().Context(), middleware.GetClientID(c))
		return redirectHome(c)
	}
	c.Response().Header().Set("HX-Reswap", "none")
	return c.NoContent(http.StatusOK)
}

func (h *Handler) renderNodes(c echo.Context, build components.Builder) error {
	return render(c, http.StatusOK, components.Component(build))
}
