package pages

import (
	"context"
	"pos_backoffice_go/middleware"
	"pos_backoffice_go/models"
	"pos_backoffice_go/services/i18n"
	"pos_backoffice_go/templates/components"
	"pos_backoffice_go/templates/partials"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
)

// HomeView is everything the single page depends on. With no session the login view is shown.
type HomeView struct {
	Layout    LayoutView
	Session   *models.Session
	Dashboard DashboardView
	Toasts    []models.Notification
	Period    models.ReportPeriod
}

// Authenticated reports which of the two views is visible
func (v HomeView) Authenticated() bool {
	return v.Session != nil && v.Session.IsComplete()
}

// Home renders the page for the given view. Both views are always present and only one is
// visible, so the same DOM ids exist whichever state the browser is in.
func Home(view HomeView) templ.Component {
	return components.Component(func(ctx context.Context) []*html.Node {
		authenticated := view.Authenticated()

		body := []*html.Node{
			header(ctx, view),
			components.El("main", nil,
				loginSection(ctx, view, authenticated),
				dashboardContent(ctx, view, authenticated),
			),
			components.Toasts(view.Toasts),
		}
		return []*html.Node{layout(ctx, view.Layout, body...)}
	})
}

func header(ctx context.Context, view HomeView) *html.Node {
	userName := i18n.T(ctx, "auth.anonymous")
	if view.Authenticated() {
		userName = view.Session.Label()
	}

	h := components.El("header", components.Attrs{"class": "topbar"},
		components.El("h1", nil, components.Text(i18n.T(ctx, "app.brand"))),
		components.El("div", components.Attrs{"id": "userInfo"},
			components.El("span", components.Attrs{"id": "userName"}, components.Text(userName)),
		),
	)

	if view.Authenticated() {
		components.Append(h.LastChild, components.El("form", components.Attrs{
			"id":     "logoutForm",
			"method": "post",
			"action": "/logout",
		},
			csrfField(view.Layout.CSRFToken),
			components.El("button", components.Attrs{"type": "submit", "class": "btn btn-secondary"},
				components.Text(i18n.T(ctx, "auth.logout"))),
		))
	}
	return h
}

func loginSection(ctx context.Context, view HomeView, authenticated bool) *html.Node {
	return components.El("section", components.Hidden(components.Attrs{"id": "loginSection"}, authenticated),
		components.El("h2", nil, components.Text(i18n.T(ctx, "auth.login_title"))),
		components.El("form", components.Attrs{
			"id":     "loginForm",
			"method": "post",
			"action": "/login",
		},
			csrfField(view.Layout.CSRFToken),
			components.El("label", components.Attrs{"for": "email"}, components.Text(i18n.T(ctx, "auth.email"))),
			components.El("input", components.Attrs{"type": "email", "id": "email", "name": "email", "required": "", "autocomplete": "username"}),
			components.El("label", components.Attrs{"for": "password"}, components.Text(i18n.T(ctx, "auth.password"))),
			components.El("input", components.Attrs{"type": "password", "id": "password", "name": "password", "required": "", "autocomplete": "current-password"}),
			components.El("button", components.Attrs{"type": "submit", "class": "btn btn-primary"},
				components.Text(i18n.T(ctx, "auth.submit"))),
		),
	)
}

func dashboardContent(ctx context.Context, view HomeView, authenticated bool) *html.Node {
	content := components.El("section", components.Hidden(components.Attrs{"id": "dashboardContent"}, !authenticated))
	if !authenticated {
		return content
	}

	topProducts := view.Dashboard.TopProducts
	topProducts.Period = view.Period

	return components.Append(content,
		components.El("div", components.Attrs{"class": "toolbar"},
			components.El("button", components.Attrs{
				"id":    partials.RefreshButtonID,
				"type":  "button",
				"class": "btn btn-secondary",
			}, components.Text(i18n.T(ctx, "dashboard.refresh"))),
			components.El("a", components.Attrs{
				"href":  partials.WithPeriod("/dashboard/top-products.xlsx", view.Period),
				"class": "btn btn-link",
			}, components.Text(i18n.T(ctx, "dashboard.export"))),
			components.El("a", components.Attrs{
				"href":  partials.WithPeriod("/dashboard/top-products.csv", view.Period),
				"class": "btn btn-link",
			}, components.Text(i18n.T(ctx, "dashboard.export_csv"))),
		),
		components.El("div", components.Attrs{"class": "stats"},
			partials.SalesSummary(ctx, view.Dashboard.Sales),
			partials.InventoryAlertCount(ctx, view.Dashboard.Alerts),
		),
		partials.InventoryAlertSection(ctx, view.Dashboard.Alerts),
		partials.TopProducts(ctx, topProducts),
	)
}

func csrfField(token string) *html.Node {
	return components.El("input", components.Attrs{"type": "hidden", "name": middleware.CSRFFormField, "value": token})
}
