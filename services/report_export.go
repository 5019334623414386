package services

import (
	"bytes"
	"context"
	"fmt"
	"pos_backoffice_go/models"
	"pos_backoffice_go/services/i18n"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// RankingTotals sums the sold products of a report
type RankingTotals struct {
	Units   int64
	Revenue decimal.Decimal
}

// SumRanking adds up units and revenue over every entry given
func SumRanking(entries []models.ProductRankingEntry) RankingTotals {
	totals := RankingTotals{Revenue: decimal.Zero}
	for _, e := range entries {
		totals.Units += e.UnitsSold
		totals.Revenue = totals.Revenue.Add(e.Revenue)
	}
	return totals
}

// ExportTopProducts writes every sold product of the report to a single-sheet workbook,
// followed by a totals row.
func ExportTopProducts(ctx context.Context, report *models.TopProductsReport) (*bytes.Buffer, error) {
	if report == nil || report.HasError() {
		return nil, fmt.Errorf("no product ranking to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := i18n.T(ctx, "export.sheet")
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"#",
		i18n.T(ctx, "top_products.product"),
		i18n.T(ctx, "top_products.code"),
		i18n.T(ctx, "top_products.category"),
		i18n.T(ctx, "top_products.units"),
		i18n.T(ctx, "top_products.revenue"),
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	sold := report.SoldProducts()
	for i, p := range sold {
		row := i + 2
		revenue, _ := p.Revenue.Round(2).Float64()
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), p.Code)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), p.Category)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), p.UnitsSold)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), revenue)
	}

	totals := SumRanking(sold)
	totalRow := len(sold) + 2
	totalRevenue, _ := totals.Revenue.Round(2).Float64()
	f.SetCellValue(sheet, fmt.Sprintf("B%d", totalRow), i18n.T(ctx, "export.total"))
	f.SetCellValue(sheet, fmt.Sprintf("E%d", totalRow), totals.Units)
	f.SetCellValue(sheet, fmt.Sprintf("F%d", totalRow), totalRevenue)

	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "F1", boldStyle)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("F%d", totalRow), boldStyle)

	moneyFmt := "#,##0.00"
	moneyStyle, _ := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	f.SetCellStyle(sheet, "F2", fmt.Sprintf("F%d", totalRow-1), moneyStyle)

	f.SetColWidth(sheet, "B", "B", 32)
	f.SetColWidth(sheet, "C", "F", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}

	return buf, nil
}
