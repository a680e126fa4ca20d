package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMonthlyCategorySummarySheetRow(t *testing.T) {
	s := &MonthlyCategorySummary{
		Month:    time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Category: "Dining",
		Count:    4,
		Expenses: decimal.RequireFromString("120.50"),
		Income:   decimal.Zero,
		Net:      decimal.RequireFromString("-120.50"),
	}

	assert.Equal(t, "2024-07", s.MonthString())

	row := s.ToSheetRow()
	assert.Equal(t, "2024-07", row.Month)
	assert.Equal(t, "Dining", row.Category)
	assert.Equal(t, int64(4), row.Count)
	assert.True(t, row.Expenses.Equal(s.Expenses))
	assert.True(t, row.Net.Equal(s.Net))
}
