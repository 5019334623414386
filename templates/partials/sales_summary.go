package partials

import (
	"context"
	"pos_backoffice_go/models"
	"pos_backoffice_go/services/i18n"
	"pos_backoffice_go/templates/components"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
)

// SalesView is today's consolidated sales, ready to print
type SalesView struct {
	Count    string
	Amount   string
	Degraded bool
}

// NewSalesView formats a summary. Missing values print as zero.
func NewSalesView(summary *models.SalesSummary, err error) SalesView {
	view := SalesView{Count: "0", Amount: formatCurrency(decimal.Zero), Degraded: err != nil}
	if summary == nil {
		return view
	}
	view.Count = formatCount(summary.TotalSales)
	view.Amount = formatCurrency(summary.TotalAmount)
	return view
}

// SalesSummary renders the two sales slots: ventasHoy and montoHoy
func SalesSummary(ctx context.Context, view SalesView) *html.Node {
	widget := components.El("div", refreshAttrs(components.Attrs{
		"id":    "salesWidget",
		"class": "stat-group",
	}, "/htmx/dashboard/sales"),
		components.El("div", components.Attrs{"class": "stat-card"},
			components.El("h4", nil, components.Text(i18n.T(ctx, "dashboard.sales_today"))),
			components.El("span", components.Attrs{"id": "ventasHoy", "class": "stat-value"}, components.Text(view.Count)),
		),
		components.El("div", components.Attrs{"class": "stat-card"},
			components.El("h4", nil, components.Text(i18n.T(ctx, "dashboard.amount_today"))),
			components.El("span", components.Attrs{"id": "montoHoy", "class": "stat-value"}, components.Text(view.Amount)),
		),
	)
	if view.Degraded {
		components.Append(widget, degradedBadge(ctx))
	}
	return widget
}
