package partials

import (
	"context"
	"net/url"
	"pos_backoffice_go/models"
	"pos_backoffice_go/services/i18n"
	"pos_backoffice_go/templates/components"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
)

// formatCurrency renders an amount as "$1234.50"
func formatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

func formatCount(n int64) string {
	return strconv.FormatInt(n, 10)
}

// degradedBadge marks a widget whose last fetch failed
func degradedBadge(ctx context.Context) *html.Node {
	return components.El("span", components.Attrs{
		"class": "widget-degraded",
		"title": i18n.T(ctx, "dashboard.degraded"),
	}, components.Text("⚠"))
}

// refreshAttrs wires a widget to the dashboard refresh button
func refreshAttrs(attrs components.Attrs, url string) components.Attrs {
	attrs["hx-get"] = url
	attrs["hx-trigger"] = "click from:#" + RefreshButtonID
	attrs["hx-swap"] = "outerHTML"
	return attrs
}

// RefreshButtonID is the button every widget listens to
const RefreshButtonID = "refreshDashboard"

// PeriodQuery encodes the report period the way the dashboard routes read it back
func PeriodQuery(p models.ReportPeriod) string {
	q := url.Values{}
	if p.From != "" {
		q.Set("fecha_inicio", p.From)
	}
	if p.To != "" {
		q.Set("fecha_fin", p.To)
	}
	return q.Encode()
}

// WithPeriod appends the period query to path, if there is one
func WithPeriod(path string, p models.ReportPeriod) string {
	if q := PeriodQuery(p); q != "" {
		return path + "?" + q
	}
	return path
}
