package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DuplicateReview is one staged entry in the review queue: a transaction
// that shares a date and amount with at least one other row. Entries stay
// pending until a reviewer resolves the whole group.
type DuplicateReview struct {
	ID            int64
	GroupID       string
	TransactionID int64
	Similarity    decimal.Decimal
	Reviewed      bool
	ActionTaken   string
	ReviewedBy    string
	ReviewedAt    time.Time
	Notes         string
	CreatedAt     time.Time
}

// ReviewSheetRow is the CSV shape of `dupes report`: one row per pending
// review entry, joined with its transaction. Decision and Reason come
// first so a reviewer can fill them in a spreadsheet without scrolling.
type ReviewSheetRow struct {
	Decision     string          `csv:"Decision"`
	Reason       string          `csv:"Reason"`
	GroupCount   int             `csv:"GroupCount"`
	GroupID      string          `csv:"PossibleDupGroup"`
	Date         string          `csv:"Date"`
	Time         string          `csv:"Time"`
	Description  string          `csv:"Description"`
	Amount       decimal.Decimal `csv:"Amount"`
	Account      string          `csv:"Account"`
	Source       string          `csv:"Source"`
	TxnID        string          `csv:"TxnId"`
	Reference    string          `csv:"Reference"`
	Balance      string          `csv:"Balance"`
	Similarity   decimal.Decimal `csv:"Similarity"`
	OriginalHash string          `csv:"OriginalHash"`
}

// ReviewResolution summarizes the effect of resolving one duplicate group.
type ReviewResolution struct {
	GroupID string
	Action  string
	Members int
	Kept    int64
	Deleted int
}
