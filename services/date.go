package services

import (
	"fmt"
	"pos_backoffice_go/models"
	"time"
)

// DateLayout is the format the report endpoints take for fecha_inicio and fecha_fin
const DateLayout = "2006-01-02"

// ParseDate parses a date string in typical formats (YYYY-MM-DD)
func ParseDate(dateStr string) (time.Time, error) {
	parsedTime, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: expected YYYY-MM-DD")
	}

	return parsedTime, nil
}

// NewReportPeriod keeps the bounds that parse. A dropped bound lets the back office pick its
// default, and an inverted range is swapped rather than sent as-is.
func NewReportPeriod(from, to string) models.ReportPeriod {
	var period models.ReportPeriod

	fromDate, fromErr := ParseDate(from)
	if fromErr == nil {
		period.From = from
	}
	toDate, toErr := ParseDate(to)
	if toErr == nil {
		period.To = to
	}

	if fromErr == nil && toErr == nil && toDate.Before(fromDate) {
		period.From, period.To = period.To, period.From
	}
	return period
}
