package models

import "fmt"

// CategoryUncategorized is the display name used for transactions that have
// no category assigned yet. In the store this state is an empty or NULL
// category column, never the literal string.
const CategoryUncategorized = "Uncategorized"

// FormatDupGroup renders the nth duplicate group sequence value as a group
// id, e.g. DUP_0007. Width grows past four digits rather than truncating.
func FormatDupGroup(n int64) string {
	return fmt.Sprintf("DUP_%04d", n)
}

// MasterCategories is the closed set of categories the rule engine and the
// AI classifier may assign. The store seeds its category table from this
// list.
var MasterCategories = []string{
	"Groceries",
	"Dining",
	"Utilities",
	"Subscriptions",
	"Transportation",
	"Housing",
	"Healthcare",
	"Insurance",
	"Income",
	"Shopping",
	"Misc",
}

// IsMasterCategory reports whether name is one of the known categories.
func IsMasterCategory(name string) bool {
	for _, c := range MasterCategories {
		if c == name {
			return true
		}
	}
	return false
}

// Operation types recorded in the processing log.
const (
	OperationCSVImport        = "csv_import"
	OperationAICategorization = "ai_categorization"
	OperationDuplicateReview  = "duplicate_review"
)

// Processing run statuses.
const (
	RunStatusPending   = "pending"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusPartial   = "partial"
)

// Actions a reviewer may take on a duplicate group.
const (
	ReviewActionKeep   = "keep"
	ReviewActionMerge  = "merge"
	ReviewActionDelete = "delete"
	ReviewActionIgnore = "ignore"
)

// ReviewActions lists the valid resolution actions in display order.
var ReviewActions = []string{
	ReviewActionKeep,
	ReviewActionMerge,
	ReviewActionDelete,
	ReviewActionIgnore,
}

// IsReviewAction reports whether action is a valid duplicate resolution.
func IsReviewAction(action string) bool {
	for _, a := range ReviewActions {
		if a == action {
			return true
		}
	}
	return false
}
