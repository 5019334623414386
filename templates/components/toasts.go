package components

import (
	"pos_backoffice_go/models"

	"golang.org/x/net/html"
)

// ToastsID is the container the layout and the notifications partial share
const ToastsID = "toasts"

// ToastsRefreshEvent is the HX-Trigger event that makes the stack fetch new toasts
const ToastsRefreshEvent = "refreshToasts"

// Toasts renders queued notifications as a non-blocking stack, oldest on top
func Toasts(notifications []models.Notification) *html.Node {
	container := El("div", Attrs{
		"id":         ToastsID,
		"class":      "toast-stack",
		"aria-live":  "polite",
		"hx-get":     "/htmx/notifications",
		"hx-trigger": ToastsRefreshEvent + " from:body",
		"hx-swap":    "outerHTML",
	})

	for _, n := range notifications {
		role := "status"
		if n.Kind == models.NotificationError {
			role = "alert"
		}
		Append(container, El("div", Attrs{
			"class":     "toast toast-" + string(n.Kind),
			"role":      role,
			"data-kind": string(n.Kind),
		}, Text(n.Message)))
	}

	return container
}
