// Package classifier sends batches of uncategorized transactions to an
// external AI model and maps the suggestions back by row hash. Only the
// date, description, amount and row hash ever cross the network
// boundary; the Row type carries nothing else, so account numbers,
// balances and references cannot leak by accident.
package classifier

import (
	"context"

	"finbook/csv-import/internal/models"

	"github.com/shopspring/decimal"
)

// Row is the anonymized view of a transaction handed to a classifier.
type Row struct {
	Date        string
	Description string
	Amount      decimal.Decimal
	RowHash     string
}

// Result is one suggestion keyed back to its transaction by row hash.
type Result struct {
	RowHash  string
	Vendor   string
	Category string
	Notes    string
}

// Classifier is implemented per provider backend.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, batch []Row) ([]Result, error)
}

// RowFromTransaction narrows a canonical transaction to the fields a
// classifier is allowed to see.
func RowFromTransaction(t *models.CanonicalTransaction) Row {
	return Row{
		Date:        t.DateString(),
		Description: t.Description,
		Amount:      t.Amount,
		RowHash:     t.RowHash,
	}
}
