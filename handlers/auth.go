package handlers

import (
	"errors"
	"net/http"
	"pos_backoffice_go/middleware"
	"pos_backoffice_go/models"
	"pos_backoffice_go/services"
	"pos_backoffice_go/services/i18n"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginPostHandler exchanges the submitted credentials for a back-office session.
// Form posts go back to the view switcher; the outcome arrives as a toast.
// JSON posts get the login result as JSON.
func (h *Handler) LoginPostHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid login request")
	}

	ctx := c.Request().Context()
	session, err := h.Sessions.Login(ctx, middleware.GetClientID(c), strings.TrimSpace(req.Email), req.Password, middleware.RequestMeta(c))

	if wantsJSON(c) {
		if err != nil {
			return loginErrorJSON(c, err)
		}
		return c.JSON(http.StatusOK, models.LoginResponse{
			Message:   i18n.T(ctx, "notify.login_success"),
			SessionID: session.Token,
			User:      &session.User,
		})
	}

	return redirectHome(c)
}

// LogoutHandler clears the stored session. Logging out without a session just redirects.
func (h *Handler) LogoutHandler(c echo.Context) error {
	if err := h.Sessions.Logout(c.Request().Context(), middleware.GetClientID(c), middleware.RequestMeta(c)); err != nil {
		logrus.WithError(err).Error("logout failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to log out")
	}
	return redirectHome(c)
}

// LoginRateLimited answers a login attempt over the limit
func (h *Handler) LoginRateLimited(c echo.Context) error {
	ctx := c.Request().Context()
	message := i18n.T(ctx, "notify.too_many_attempts")

	if wantsJSON(c) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"detail": message})
	}
	if err := h.Notifier.Notify(ctx, middleware.GetClientID(c), message, models.NotificationWarning); err != nil {
		logrus.WithError(err).Error("failed to queue notification")
	}
	return redirectHome(c)
}

func wantsJSON(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

// loginErrorJSON mirrors the back office answer for API callers
func loginErrorJSON(c echo.Context, err error) error {
	ctx := c.Request().Context()

	var apiErr *services.APIError
	switch {
	case errors.As(err, &apiErr):
		detail := apiErr.Detail
		if detail == "" {
			detail = i18n.T(ctx, "notify.login_error")
		}
		return c.JSON(apiErr.StatusCode, map[string]string{"detail": detail})
	case errors.Is(err, services.ErrConnection):
		return c.JSON(http.StatusBadGateway, map[string]string{"detail": i18n.T(ctx, "notify.connection_error")})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": i18n.T(ctx, "notify.login_error")})
	}
}
