package handlers

import (
	"net/http"
	"pos_backoffice_go/middleware"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// GetActivityHandler returns this browser's latest session activity, newest first
func (h *Handler) GetActivityHandler(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	logs, err := h.Audit.Recent(c.Request().Context(), middleware.GetClientID(c), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch activity")
	}
	return c.JSON(http.StatusOK, logs)
}
