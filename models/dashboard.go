package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// SalesSummary is the consolidated sales figure for today
type SalesSummary struct {
	TotalSales  int64           `json:"total_ventas"`
	TotalAmount decimal.Decimal `json:"monto_total"`
	Date        string          `json:"fecha,omitempty"`
	Branch      string          `json:"sucursal,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// InventoryAlert is a product at or below its minimum stock
type InventoryAlert struct {
	Name         string `json:"nombre"`
	CurrentStock int64  `json:"stock_actual"`
	MinStock     int64  `json:"stock_minimo"`
}

// ProductRankingEntry is one row of the best sellers report
type ProductRankingEntry struct {
	ProductID int64           `json:"producto_id,omitempty"`
	Code      string          `json:"codigo"`
	Name      string          `json:"nombre"`
	Category  string          `json:"categoria"`
	UnitsSold int64           `json:"total_vendido"`
	Revenue   decimal.Decimal `json:"total_ingresos"`
}

// TopProductsReport holds either the ranking or the error the server reported.
// The endpoint answers with a JSON array on success and an {"error": "..."} object otherwise.
type TopProductsReport struct {
	Products []ProductRankingEntry
	Error    string
}

// HasError reports whether the server flagged the report as failed
func (r *TopProductsReport) HasError() bool {
	return r.Error != ""
}

func (r *TopProductsReport) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.Products = nil
		r.Error = ""
		return nil
	}

	switch trimmed[0] {
	case '[':
		var products []ProductRankingEntry
		if err := json.Unmarshal(trimmed, &products); err != nil {
			return fmt.Errorf("failed to decode product ranking: %w", err)
		}
		r.Products = products
		r.Error = ""
		return nil
	case '{':
		var payload struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return fmt.Errorf("failed to decode product ranking error: %w", err)
		}
		r.Products = nil
		r.Error = payload.Error
		if r.Error == "" {
			r.Error = payload.Detail
		}
		return nil
	default:
		return fmt.Errorf("unexpected product ranking payload starting with %q", trimmed[0])
	}
}

func (r TopProductsReport) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(map[string]string{"error": r.Error})
	}
	if r.Products == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Products)
}

// SoldProducts returns the entries with at least one unit sold, in server order
func (r *TopProductsReport) SoldProducts() []ProductRankingEntry {
	sold := make([]ProductRankingEntry, 0, len(r.Products))
	for _, p := range r.Products {
		if p.UnitsSold > 0 {
			sold = append(sold, p)
		}
	}
	return sold
}

// ReportPeriod narrows the best sellers report. Zero values let the server pick its default range.
type ReportPeriod struct {
	From string
	To   string
}
