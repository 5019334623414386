package handlers

import (
	"context"
	"pos_backoffice_go/templates/components"

	"github.com/labstack/echo/v4"
	"golang.org/x/net/html"
)

// GetNotificationsHTMX returns the queued toasts and marks them shown
func (h *Handler) GetNotificationsHTMX(c echo.Context) error {
	toasts := h.drainToasts(c)
	return h.renderNodes(c, func(ctx context.Context) []*html.Node {
		return []*html.Node{components.Toasts(toasts)}
	})
}
