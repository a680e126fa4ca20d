package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyCategorySummary is one row of the month-by-category rollup:
// expense and income totals plus the net for a single category in a single
// month.
type MonthlyCategorySummary struct {
	Month    time.Time
	Category string
	Count    int64
	Expenses decimal.Decimal
	Income   decimal.Decimal
	Net      decimal.Decimal
}

// MonthString returns the month in YYYY-MM form.
func (s *MonthlyCategorySummary) MonthString() string {
	return s.Month.Format("2006-01")
}

// SummarySheetRow is the CSV shape of `summary --out`.
type SummarySheetRow struct {
	Month    string          `csv:"Month"`
	Category string          `csv:"Category"`
	Count    int64           `csv:"Count"`
	Expenses decimal.Decimal `csv:"Expenses"`
	Income   decimal.Decimal `csv:"Income"`
	Net      decimal.Decimal `csv:"Net"`
}

// ToSheetRow converts a summary row into its CSV export shape.
func (s *MonthlyCategorySummary) ToSheetRow() SummarySheetRow {
	return SummarySheetRow{
		Month:    s.MonthString(),
		Category: s.Category,
		Count:    s.Count,
		Expenses: s.Expenses,
		Income:   s.Income,
		Net:      s.Net,
	}
}
