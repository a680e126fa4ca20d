// Package models provides the data structures shared by the import pipeline,
// the record store and the CLI commands.
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CanonicalTransaction is the normalized record shape every bank export is
// reduced to. Date and Amount are always present; the remaining fields are
// optional metadata preserved from the source row. Amount follows the
// expense-negative / income-positive convention.
type CanonicalTransaction struct {
	ID          int64
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Category    string
	Vendor      string
	Source      string
	TxnID       string
	Reference   string
	Account     string
	Balance     decimal.NullDecimal
	TimePart    string

	// Fingerprints, filled in after normalization.
	RowHash          string
	OriginalHash     string
	PossibleDupGroup string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the invariants every canonical transaction must satisfy
// before it may enter the store.
func (t *CanonicalTransaction) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("transaction has no date")
	}
	if t.Description == "" {
		return fmt.Errorf("transaction has no description")
	}
	return nil
}

// DateString returns the date in ISO format (YYYY-MM-DD), the form used by
// fingerprints and the store.
func (t *CanonicalTransaction) DateString() string {
	return t.Date.Format("2006-01-02")
}

// AmountString returns the amount with fixed two-decimal precision.
func (t *CanonicalTransaction) AmountString() string {
	return t.Amount.StringFixed(2)
}

// IsExpense reports whether the transaction is an outflow.
func (t *CanonicalTransaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// IsIncome reports whether the transaction is an inflow.
func (t *CanonicalTransaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// IsCategorized reports whether a category has been assigned.
func (t *CanonicalTransaction) IsCategorized() bool {
	return t.Category != "" && t.Category != CategoryUncategorized
}
