package partials

import (
	"context"
	"pos_backoffice_go/models"
	"pos_backoffice_go/services"
	"pos_backoffice_go/services/i18n"
	"pos_backoffice_go/templates/components"

	"golang.org/x/net/html"
)

// MaxRankingRows caps the ranking table; the footer totals still cover every sold product
const MaxRankingRows = 10

// TopProductsState selects which rendering applies
type TopProductsState int

const (
	TopProductsServerError TopProductsState = iota + 1
	TopProductsNoSales
	TopProductsNoneSold
	TopProductsRanking
	// TopProductsUnavailable means the fetch itself failed, so nothing is known about sales
	TopProductsUnavailable
)

// RankingRow is one printed ranking line
type RankingRow struct {
	Position int
	Name     string
	Code     string
	Category string
	Units    int64
	Revenue  string
}

// TopProductsView is the best sellers widget
type TopProductsView struct {
	State        TopProductsState
	ErrorMessage string
	Rows         []RankingRow
	TotalUnits   int64
	TotalRevenue string
	Degraded     bool
	// Period is carried into the refresh URL so a refresh shows the same range
	Period models.ReportPeriod
}

// NewTopProductsView applies the widget's rules: a server error wins, then an empty report,
// then a report where nothing sold. Otherwise the first MaxRankingRows sold products are listed
// in server order and the totals sum all sold products.
func NewTopProductsView(report *models.TopProductsReport, err error) TopProductsView {
	if err != nil {
		return TopProductsView{State: TopProductsUnavailable, Degraded: true}
	}
	if report != nil && report.HasError() {
		return TopProductsView{State: TopProductsServerError, ErrorMessage: report.Error}
	}
	if report == nil || len(report.Products) == 0 {
		return TopProductsView{State: TopProductsNoSales}
	}

	sold := report.SoldProducts()
	if len(sold) == 0 {
		return TopProductsView{State: TopProductsNoneSold}
	}

	totals := services.SumRanking(sold)
	view := TopProductsView{
		State:        TopProductsRanking,
		TotalUnits:   totals.Units,
		TotalRevenue: formatCurrency(totals.Revenue),
	}

	top := sold
	if len(top) > MaxRankingRows {
		top = top[:MaxRankingRows]
	}
	for i, p := range top {
		view.Rows = append(view.Rows, RankingRow{
			Position: i + 1,
			Name:     p.Name,
			Code:     p.Code,
			Category: p.Category,
			Units:    p.UnitsSold,
			Revenue:  formatCurrency(p.Revenue),
		})
	}
	return view
}

// TopProducts renders the topProductos container for the widget's state
func TopProducts(ctx context.Context, view TopProductsView) *html.Node {
	widget := components.El("div", refreshAttrs(components.Attrs{
		"id":    "topProductosWidget",
		"class": "widget",
	}, TopProductsRefreshURL(view.Period)),
		components.El("h3", nil, components.Text(i18n.T(ctx, "dashboard.top_products"))),
	)
	if view.Degraded {
		components.Append(widget, degradedBadge(ctx))
	}

	container := components.El("div", components.Attrs{"id": "topProductos"})
	switch view.State {
	case TopProductsUnavailable:
		components.Append(container, emptyState("⚠",
			i18n.T(ctx, "top_products.unavailable_title"),
			i18n.T(ctx, "top_products.unavailable_body"), ""))
	case TopProductsServerError:
		components.Append(container, emptyState("🏆",
			i18n.T(ctx, "top_products.error_title"), view.ErrorMessage, ""))
	case TopProductsNoSales:
		components.Append(container, emptyState("📦",
			i18n.T(ctx, "top_products.empty_title"),
			i18n.T(ctx, "top_products.empty_body"),
			i18n.T(ctx, "top_products.empty_hint")))
	case TopProductsNoneSold:
		components.Append(container, emptyState("📊",
			i18n.T(ctx, "top_products.none_sold_title"),
			i18n.T(ctx, "top_products.none_sold_body"), ""))
	case TopProductsRanking:
		components.Append(container, rankingTable(ctx, view), rankingSummary(ctx, view))
	}

	return components.Append(widget, container)
}

// TopProductsRefreshURL is the widget's htmx endpoint for the given period
func TopProductsRefreshURL(period models.ReportPeriod) string {
	return WithPeriod("/htmx/dashboard/top-products", period)
}

func emptyState(icon, title, body, hint string) *html.Node {
	n := components.El("div", components.Attrs{"class": "sin-datos"},
		components.El("i", nil, components.Text(icon)),
		components.El("h4", nil, components.Text(title)),
		components.El("p", nil, components.Text(body)),
	)
	if hint != "" {
		components.Append(n, components.El("small", nil, components.Text(hint)))
	}
	return n
}

func rankingTable(ctx context.Context, view TopProductsView) *html.Node {
	table := components.El("div", components.Attrs{"class": "productos-ranking"},
		components.El("div", components.Attrs{"class": "ranking-header"},
			components.El("span", nil, components.Text("#")),
			components.El("span", nil, components.Text(i18n.T(ctx, "top_products.product"))),
			components.El("span", nil, components.Text(i18n.T(ctx, "top_products.units"))),
			components.El("span", nil, components.Text(i18n.T(ctx, "top_products.revenue"))),
		),
	)

	for _, row := range view.Rows {
		components.Append(table, components.El("div", components.Attrs{"class": "producto-ranking"},
			components.El("div", components.Attrs{"class": "ranking-posicion"}, components.Textf("%d", row.Position)),
			components.El("div", components.Attrs{"class": "ranking-info"},
				components.El("strong", nil, components.Text(row.Name)),
				components.El("div", components.Attrs{"class": "producto-detalle"},
					components.El("small", nil, components.Textf("%s: %s | %s: %s",
						i18n.T(ctx, "top_products.code"), row.Code,
						i18n.T(ctx, "top_products.category"), row.Category)),
				),
			),
			components.El("div", components.Attrs{"class": "ranking-cantidad"},
				components.Textf("%d %s", row.Units, i18n.T(ctx, "top_products.units_suffix"))),
			components.El("div", components.Attrs{"class": "ranking-ingresos"}, components.Text(row.Revenue)),
		))
	}
	return table
}

func rankingSummary(ctx context.Context, view TopProductsView) *html.Node {
	return components.El("div", components.Attrs{"class": "resumen-productos"},
		components.El("div", components.Attrs{"class": "resumen-grid"},
			components.El("div", nil,
				components.El("strong", nil, components.Text(i18n.T(ctx, "top_products.total_units")+":")),
				components.Textf(" %d", view.TotalUnits),
			),
			components.El("div", nil,
				components.El("strong", nil, components.Text(i18n.T(ctx, "top_products.total_revenue")+":")),
				components.Text(" "+view.TotalRevenue),
			),
		),
	)
}
