package services

import (
	"context"
	"errors"
	"pos_backoffice_go/models"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Widget is the outcome of one dashboard fetch. A failed widget keeps Err set and a zero Data.
type Widget[T any] struct {
	Data T
	Err  error
}

// Failed reports whether the fetch behind this widget failed
func (w Widget[T]) Failed() bool {
	return w.Err != nil
}

// Dashboard is what one load produced, widget by widget
type Dashboard struct {
	Sales       Widget[*models.SalesSummary]
	Alerts      Widget[[]models.InventoryAlert]
	TopProducts Widget[*models.TopProductsReport]
}

// Unauthorized reports whether any widget was rejected because the token is no longer valid
func (d *Dashboard) Unauthorized() bool {
	for _, err := range []error{d.Sales.Err, d.Alerts.Err, d.TopProducts.Err} {
		if IsUnauthorized(err) {
			return true
		}
	}
	return false
}

// IsUnauthorized reports whether err is the back office rejecting the session token
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsUnauthorized()
}

// DashboardLoader runs the three dashboard fetches
type DashboardLoader struct {
	client BackofficeClient
}

func NewDashboardLoader(client BackofficeClient) *DashboardLoader {
	return &DashboardLoader{client: client}
}

// Load fetches the three widgets in parallel. Each fetch is isolated: an error or panic in one
// leaves the others untouched. Canceling ctx cancels every in-flight request.
func (l *DashboardLoader) Load(ctx context.Context, session *models.Session, period models.ReportPeriod) *Dashboard {
	dashboard := &Dashboard{}

	var wg conc.WaitGroup
	wg.Go(func() { dashboard.Sales = l.LoadSales(ctx, session) })
	wg.Go(func() { dashboard.Alerts = l.LoadAlerts(ctx, session) })
	wg.Go(func() { dashboard.TopProducts = l.LoadTopProducts(ctx, session, period) })
	wg.Wait()

	return dashboard
}

// LoadSales fetches the consolidated sales widget
func (l *DashboardLoader) LoadSales(ctx context.Context, session *models.Session) Widget[*models.SalesSummary] {
	var w Widget[*models.SalesSummary]
	w.Err = guard("sales", func() error {
		summary, err := l.client.SalesSummary(ctx, session.Token)
		if err != nil {
			return err
		}
		if summary.Error != "" {
			// The count and amount still render as zero
			logrus.WithField("widget", "sales").Warnf("back office reported: %s", summary.Error)
		}
		w.Data = summary
		return nil
	})
	return w
}

// LoadAlerts fetches the inventory alerts widget
func (l *DashboardLoader) LoadAlerts(ctx context.Context, session *models.Session) Widget[[]models.InventoryAlert] {
	var w Widget[[]models.InventoryAlert]
	w.Err = guard("alerts", func() error {
		alerts, err := l.client.InventoryAlerts(ctx, session.Token)
		if err != nil {
			return err
		}
		w.Data = alerts
		return nil
	})
	return w
}

// LoadTopProducts fetches the best sellers widget
func (l *DashboardLoader) LoadTopProducts(ctx context.Context, session *models.Session, period models.ReportPeriod) Widget[*models.TopProductsReport] {
	var w Widget[*models.TopProductsReport]
	w.Err = guard("top_products", func() error {
		report, err := l.client.TopProducts(ctx, session.Token, period)
		if err != nil {
			return err
		}
		w.Data = report
		return nil
	})
	return w
}

// guard runs one fetch, turns a panic into an error and logs failures. Widget failures are
// never shown as toasts; the widget renders its degraded state instead.
func guard(widget string, fetch func() error) error {
	start := time.Now()

	var catcher panics.Catcher
	var err error
	catcher.Try(func() { err = fetch() })
	if r := catcher.Recovered(); r != nil {
		err = r.AsError()
	}

	entry := logrus.WithFields(logrus.Fields{
		"widget":      widget,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("dashboard widget failed")
		return err
	}
	entry.Debug("dashboard widget loaded")
	return nil
}
