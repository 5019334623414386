package pages

import (
	"context"
	"encoding/json"
	"pos_backoffice_go/middleware"
	"pos_backoffice_go/services/i18n"
	"pos_backoffice_go/templates/components"

	"golang.org/x/net/html"
)

// HTMXOrigin serves the htmx script, so the CSP must allow scripts from it
const HTMXOrigin = "https://unpkg.com"

const htmxSrc = HTMXOrigin + "/htmx.org@2.0.4"

// LayoutView carries what every full page needs
type LayoutView struct {
	Title     string
	CSRFToken string
	Nonce     string
}

// layout wraps the body content in the document shell. The CSRF token rides on every htmx
// request through hx-headers.
func layout(ctx context.Context, view LayoutView, body ...*html.Node) *html.Node {
	head := components.El("head", nil,
		components.El("meta", components.Attrs{"charset": "utf-8"}),
		components.El("meta", components.Attrs{"name": "viewport", "content": "width=device-width, initial-scale=1"}),
		components.El("title", nil, components.Text(view.Title)),
		components.El("link", components.Attrs{"rel": "stylesheet", "href": "/static/css/dashboard.css"}),
		components.El("script", components.Attrs{"src": htmxSrc, "nonce": view.Nonce}),
	)

	bodyNode := components.El("body", components.Attrs{"hx-headers": hxHeaders(view.CSRFToken)}, body...)

	return components.Document(components.El("html", components.Attrs{"lang": i18n.GetLocale(ctx)}, head, bodyNode))
}

func hxHeaders(csrfToken string) string {
	// marshalling a map of strings cannot fail
	b, _ := json.Marshal(map[string]string{middleware.CSRFHeader: csrfToken})
	return string(b)
}
