package handlers

import (
	"net/http"
	"pos_backoffice_go/middleware"
	"pos_backoffice_go/services/i18n"
	"pos_backoffice_go/templates/pages"

	"github.com/labstack/echo/v4"
)

// HomeHandler is the view switcher: the login view without a session, the dashboard with one
func (h *Handler) HomeHandler(c echo.Context) error {
	ctx := c.Request().Context()
	clientID := middleware.GetClientID(c)

	session, err := h.Sessions.Current(ctx, clientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read session")
	}

	view := pages.HomeView{
		Layout: layoutView(c, i18n.T(ctx, "app.title")),
		Period: reportPeriod(c),
	}

	if session != nil {
		dashboard := h.Loader.Load(ctx, session, view.Period)
		if dashboard.Unauthorized() {
			h.Sessions.Expire(ctx, clientID)
		} else {
			view.Session = session
			view.Dashboard = pages.NewDashboardView(dashboard)
		}
	}

	view.Toasts = h.drainToasts(c)
	return render(c, http.StatusOK, pages.Home(view))
}

// layoutView carries the per-request CSRF token and script nonce into the page shell
func layoutView(c echo.Context, title string) pages.LayoutView {
	return pages.LayoutView{
		Title:     title,
		CSRFToken: middleware.CSRFToken(c),
		Nonce:     middleware.Nonce(c.Request().Context()),
	}
}
