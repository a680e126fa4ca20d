// Package store persists canonical transactions and the records that
// accompany them: vendor mapping rules, duplicate review queues and the
// processing log. PostgresStore is the production implementation;
// MemoryStore backs tests and dry runs.
package store

import (
	"context"
	"time"

	"finbook/csv-import/internal/models"

	"github.com/shopspring/decimal"
)

// ReviewStaging flags one transaction of a duplicate group for manual
// review. Rows that are part of the batch being inserted are addressed
// by RowIndex; rows already in the store by TransactionID.
type ReviewStaging struct {
	GroupID       string
	RowIndex      int
	TransactionID int64
	Similarity    decimal.Decimal
	Notes         string
}

// GroupTag assigns a duplicate group id to a transaction that is
// already stored, so that existing rows join groups discovered later.
type GroupTag struct {
	TransactionID int64
	GroupID       string
}

// ImportBatch is the unit of persistence for one source file. The
// whole batch is written in a single transaction: either every row,
// tag and review lands or none do.
type ImportBatch struct {
	SourceFile string
	Rows       []*models.CanonicalTransaction
	Reviews    []ReviewStaging
	GroupTags  []GroupTag
}

// RecordStore is the persistence boundary of the import pipeline.
type RecordStore interface {
	// Setup creates the schema and seed data if they do not exist.
	Setup(ctx context.Context) error
	Close()

	// Duplicate lookups, in the order the resolver consults them.
	HasTxnID(ctx context.Context, txnID, account string) (bool, error)
	HasReference(ctx context.Context, reference string, date time.Time, amount decimal.Decimal) (bool, error)
	HasRowHash(ctx context.Context, rowHash string) (bool, error)
	FindByDateAmount(ctx context.Context, date time.Time, amount decimal.Decimal) ([]models.CanonicalTransaction, error)

	InsertBatch(ctx context.Context, batch *ImportBatch) (int, error)

	// NextDupGroupID draws a fresh group id from the store sequence.
	NextDupGroupID(ctx context.Context) (string, error)
	// CurrentDupGroupSeq reports the last value the sequence handed
	// out, 0 if it was never used. Dry runs preview ids from here.
	CurrentDupGroupSeq(ctx context.Context) (int64, error)

	ActiveVendorRules(ctx context.Context) ([]models.VendorMappingRule, error)
	AddVendorRule(ctx context.Context, rule *models.VendorMappingRule) error

	UncategorizedTransactions(ctx context.Context, limit int) ([]models.CanonicalTransaction, error)
	UpdateCategory(ctx context.Context, id int64, category, vendor string) error

	PendingReviewRows(ctx context.Context) ([]models.ReviewSheetRow, error)
	ResolveReviewGroup(ctx context.Context, groupID, action string, keepID int64, reviewedBy, notes string) (*models.ReviewResolution, error)

	StartRun(ctx context.Context, entry *models.ProcessingLogEntry) error
	FinishRun(ctx context.Context, entry *models.ProcessingLogEntry) error
	RecentRuns(ctx context.Context, limit int) ([]models.ProcessingLogEntry, error)

	MonthlySummary(ctx context.Context, months int) ([]models.MonthlyCategorySummary, error)
}
