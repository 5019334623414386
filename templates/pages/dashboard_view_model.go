package pages

import (
	"pos_backoffice_go/services"
	"pos_backoffice_go/templates/partials"
)

// DashboardView holds the three widgets ready to render
type DashboardView struct {
	Sales       partials.SalesView
	Alerts      partials.AlertsView
	TopProducts partials.TopProductsView
}

// NewDashboardView maps a dashboard load onto its widgets. A nil load renders every widget at zero.
func NewDashboardView(d *services.Dashboard) DashboardView {
	if d == nil {
		return DashboardView{
			Sales:       partials.NewSalesView(nil, nil),
			Alerts:      partials.NewAlertsView(nil, nil),
			TopProducts: partials.NewTopProductsView(nil, nil),
		}
	}
	return DashboardView{
		Sales:       partials.NewSalesView(d.Sales.Data, d.Sales.Err),
		Alerts:      partials.NewAlertsView(d.Alerts.Data, d.Alerts.Err),
		TopProducts: partials.NewTopProductsView(d.TopProducts.Data, d.TopProducts.Err),
	}
}
