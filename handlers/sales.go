package handlers

import (
	"errors"
	"io"
	"net/http"
	"pos_backoffice_go/middleware"
	"pos_backoffice_go/services"
	"pos_backoffice_go/services/i18n"
	"pos_backoffice_go/templates/components"

	"github.com/labstack/echo/v4"
)

// maxSaleBody bounds the sale payload read from the browser
const maxSaleBody = 1 << 20

// RegisterSaleHandler forwards a sale to the back office unchanged.
// The outcome is also queued as a toast; HX-Trigger tells the page to show it.
func (h *Handler) RegisterSaleHandler(c echo.Context) error {
	ctx := c.Request().Context()

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxSaleBody+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body")
	}
	if len(payload) > maxSaleBody {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Sale payload too large")
	}

	created, err := h.Sales.Register(ctx, middleware.GetClientID(c), payload, middleware.RequestMeta(c))
	c.Response().Header().Set("HX-Trigger", components.ToastsRefreshEvent)
	if err != nil {
		var apiErr *services.APIError
		switch {
		case errors.Is(err, services.ErrNotAuthenticated):
			return c.JSON(http.StatusUnauthorized, map[string]string{"detail": i18n.T(ctx, "notify.not_authenticated")})
		case errors.Is(err, services.ErrInvalidSale):
			return c.JSON(http.StatusBadRequest, map[string]string{"detail": err.Error()})
		case errors.As(err, &apiErr):
			detail := apiErr.Detail
			if detail == "" {
				detail = i18n.T(ctx, "notify.sale_error")
			}
			return c.JSON(apiErr.StatusCode, map[string]string{"detail": detail})
		case errors.Is(err, services.ErrConnection):
			return c.JSON(http.StatusBadGateway, map[string]string{"detail": i18n.T(ctx, "notify.connection_error")})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"detail": i18n.T(ctx, "notify.sale_error")})
		}
	}

	return c.JSON(http.StatusCreated, created)
}
