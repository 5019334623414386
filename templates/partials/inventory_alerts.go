package partials

import (
	"context"
	"pos_backoffice_go/models"
	"pos_backoffice_go/services/i18n"
	"pos_backoffice_go/templates/components"

	"golang.org/x/net/html"
)

// AlertsSectionID is the lazily filled section inside the dashboard view
const AlertsSectionID = "alertasSection"

// AlertsView is the inventory alert widget
type AlertsView struct {
	Count    int
	Alerts   []models.InventoryAlert
	Degraded bool
}

// NewAlertsView keeps the server's order
func NewAlertsView(alerts []models.InventoryAlert, err error) AlertsView {
	if err != nil {
		return AlertsView{Degraded: true}
	}
	return AlertsView{Count: len(alerts), Alerts: alerts}
}

// InventoryAlertCount renders the alertasInventario counter card
func InventoryAlertCount(ctx context.Context, view AlertsView) *html.Node {
	value := formatCount(int64(view.Count))
	if view.Degraded {
		value = "-"
	}

	card := components.El("div", refreshAttrs(components.Attrs{
		"id":    "alertsWidget",
		"class": "stat-card",
	}, "/htmx/dashboard/alerts"),
		components.El("h4", nil, components.Text(i18n.T(ctx, "dashboard.inventory_alerts"))),
		components.El("span", components.Attrs{"id": "alertasInventario", "class": "stat-value"}, components.Text(value)),
	)
	if view.Degraded {
		components.Append(card, degradedBadge(ctx))
	}
	return card
}

// InventoryAlertSection renders the alert list. With no alerts the section stays an empty
// placeholder, so it is only filled once there is something to show.
func InventoryAlertSection(ctx context.Context, view AlertsView) *html.Node {
	section := components.El("div", components.Attrs{"id": AlertsSectionID})
	if view.Degraded || view.Count == 0 {
		return section
	}

	container := components.El("div", components.Attrs{"id": "alertasContainer"})
	for _, a := range view.Alerts {
		components.Append(container, components.El("div", components.Attrs{"class": "alert alert-warning"},
			components.El("strong", nil, components.Text(a.Name)),
			components.Textf(" - %s: %d (%s: %d)",
				i18n.T(ctx, "alerts.current_stock"), a.CurrentStock,
				i18n.T(ctx, "alerts.min_stock"), a.MinStock),
		))
	}

	return components.Append(section,
		components.El("h3", nil, components.Text(i18n.T(ctx, "alerts.title"))),
		container,
	)
}

// InventoryAlertRefresh is the htmx answer for the alerts widget: the counter card, plus the
// list swapped out-of-band when there are alerts. With zero alerts the list on screen is left alone.
func InventoryAlertRefresh(ctx context.Context, view AlertsView) []*html.Node {
	nodes := []*html.Node{InventoryAlertCount(ctx, view)}
	if view.Count > 0 {
		section := InventoryAlertSection(ctx, view)
		section.Attr = append(section.Attr, html.Attribute{Key: "hx-swap-oob", Val: "true"})
		nodes = append(nodes, section)
	}
	return nodes
}
