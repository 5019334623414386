package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"pos_backoffice_go/middleware"
	"pos_backoffice_go/models"
	"pos_backoffice_go/services"
	"pos_backoffice_go/services/i18n"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportTopProductsHandler downloads the best sellers ranking as a workbook
func (h *Handler) ExportTopProductsHandler(c echo.Context) error {
	report, err := h.loadReport(c)
	if err != nil {
		return h.exportFailed(c, err)
	}

	buf, err := services.ExportTopProducts(c.Request().Context(), report)
	if err != nil {
		return h.exportFailed(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, attachment("xlsx"))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// csvCell stops spreadsheet apps from evaluating upstream text as a formula
func csvCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

// ExportTopProductsCSVHandler streams the same ranking as CSV
func (h *Handler) ExportTopProductsCSVHandler(c echo.Context) error {
	report, err := h.loadReport(c)
	if err == nil && (report == nil || report.HasError()) {
		err = fmt.Errorf("no product ranking to export")
	}
	if err != nil {
		return h.exportFailed(c, err)
	}

	ctx := c.Request().Context()
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, attachment("csv"))
	c.Response().WriteHeader(http.StatusOK)

	writer := csv.NewWriter(c.Response().Writer)
	defer writer.Flush()

	writer.Write([]string{
		"#",
		i18n.T(ctx, "top_products.product"),
		i18n.T(ctx, "top_products.code"),
		i18n.T(ctx, "top_products.category"),
		i18n.T(ctx, "top_products.units"),
		i18n.T(ctx, "top_products.revenue"),
	})

	sold := report.SoldProducts()
	for i, p := range sold {
		writer.Write([]string{
			strconv.Itoa(i + 1),
			csvCell(p.Name),
			csvCell(p.Code),
			csvCell(p.Category),
			strconv.FormatInt(p.UnitsSold, 10),
			p.Revenue.StringFixed(2),
		})
	}

	totals := services.SumRanking(sold)
	writer.Write([]string{
		"",
		i18n.T(ctx, "export.total"),
		"",
		"",
		strconv.FormatInt(totals.Units, 10),
		totals.Revenue.StringFixed(2),
	})

	return writer.Error()
}

// loadReport fetches the ranking for the requested period. A rejected token ends the session.
func (h *Handler) loadReport(c echo.Context) (*models.TopProductsReport, error) {
	ctx := c.Request().Context()
	w := h.Loader.LoadTopProducts(ctx, middleware.GetCurrentSession(c), reportPeriod(c))
	if services.IsUnauthorized(w.Err) {
		h.Sessions.Expire(ctx, middleware.GetClientID(c))
	}
	return w.Data, w.Err
}

// exportFailed sends the browser back to the dashboard with an error toast
func (h *Handler) exportFailed(c echo.Context, err error) error {
	ctx := c.Request().Context()
	clientID := middleware.GetClientID(c)

	logrus.WithError(err).WithField("client_id", clientID).Warn("top products export failed")
	if !services.IsUnauthorized(err) {
		if nerr := h.Notifier.Notify(ctx, clientID, i18n.T(ctx, "export.error"), models.NotificationError); nerr != nil {
			logrus.WithError(nerr).Error("failed to queue notification")
		}
	}
	return redirectHome(c)
}

func attachment(ext string) string {
	return fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("productos-mas-vendidos-%s.%s", time.Now().Format(services.DateLayout), ext))
}
