package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"finbook/csv-import/internal/models"

	"github.com/shopspring/decimal"
)

// MemoryStore is a RecordStore kept entirely in memory. It mirrors the
// Postgres semantics closely enough for pipeline tests, including row
// hash uniqueness and cascade deletion of review entries.
type MemoryStore struct {
	mu           sync.Mutex
	nextTxnID    int64
	nextRuleID   int64
	nextRunID    int64
	nextReviewID int64
	groupSeq     int64

	transactions []*models.CanonicalTransaction
	rules        []models.VendorMappingRule
	reviews      []*models.DuplicateReview
	runs         []*models.ProcessingLogEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Setup(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() {}

func (s *MemoryStore) HasTxnID(ctx context.Context, txnID, account string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.TxnID == txnID && t.Account == account {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) HasReference(ctx context.Context, reference string, date time.Time, amount decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.Reference == reference && sameDay(t.Date, date) && t.Amount.Equal(amount) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) HasRowHash(ctx context.Context, rowHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findByRowHash(rowHash) != nil, nil
}

func (s *MemoryStore) FindByDateAmount(ctx context.Context, date time.Time, amount decimal.Decimal) ([]models.CanonicalTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CanonicalTransaction
	for _, t := range s.transactions {
		if sameDay(t.Date, date) && t.Amount.Equal(amount) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *MemoryStore) InsertBatch(ctx context.Context, batch *ImportBatch) (int, error) {
	if batch == nil {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// All-or-nothing, like the Postgres transaction: validate before
	// touching state.
	seen := make(map[string]bool, len(batch.Rows))
	for i, row := range batch.Rows {
		if s.findByRowHash(row.RowHash) != nil || seen[row.RowHash] {
			return 0, fmt.Errorf("insert row %d of %s: duplicate row hash %s", i+1, batch.SourceFile, row.RowHash)
		}
		seen[row.RowHash] = true
	}
	for _, review := range batch.Reviews {
		if review.TransactionID == 0 && (review.RowIndex < 0 || review.RowIndex >= len(batch.Rows)) {
			return 0, fmt.Errorf("review row index %d out of range for %s", review.RowIndex, batch.SourceFile)
		}
	}

	now := time.Now()
	ids := make([]int64, len(batch.Rows))
	for i, row := range batch.Rows {
		s.nextTxnID++
		row.ID = s.nextTxnID
		row.CreatedAt = now
		row.UpdatedAt = now
		stored := *row
		s.transactions = append(s.transactions, &stored)
		ids[i] = row.ID
	}

	for _, tag := range batch.GroupTags {
		for _, t := range s.transactions {
			if t.ID == tag.TransactionID && t.PossibleDupGroup == "" {
				t.PossibleDupGroup = tag.GroupID
				t.UpdatedAt = now
			}
		}
	}

	for _, review := range batch.Reviews {
		txnID := review.TransactionID
		if txnID == 0 {
			txnID = ids[review.RowIndex]
		}
		s.nextReviewID++
		s.reviews = append(s.reviews, &models.DuplicateReview{
			ID:            s.nextReviewID,
			GroupID:       review.GroupID,
			TransactionID: txnID,
			Similarity:    review.Similarity,
			Notes:         review.Notes,
			CreatedAt:     now,
		})
	}

	return len(batch.Rows), nil
}

func (s *MemoryStore) NextDupGroupID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupSeq++
	return models.FormatDupGroup(s.groupSeq), nil
}

func (s *MemoryStore) CurrentDupGroupSeq(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupSeq, nil
}

func (s *MemoryStore) ActiveVendorRules(ctx context.Context) ([]models.VendorMappingRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.VendorMappingRule
	for _, r := range s.rules {
		if r.Active {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) AddVendorRule(ctx context.Context, rule *models.VendorMappingRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRuleID++
	rule.ID = s.nextRuleID
	rule.CreatedAt = time.Now()
	s.rules = append(s.rules, *rule)
	return nil
}

func (s *MemoryStore) UncategorizedTransactions(ctx context.Context, limit int) ([]models.CanonicalTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CanonicalTransaction
	for _, t := range s.transactions {
		if t.Category == "" {
			out = append(out, *t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) UpdateCategory(ctx context.Context, id int64, category, vendor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.ID == id {
			t.Category = category
			t.Vendor = vendor
			t.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("transaction %d not found", id)
}

func (s *MemoryStore) PendingReviewRows(ctx context.Context) ([]models.ReviewSheetRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int)
	for _, r := range s.reviews {
		if !r.Reviewed {
			counts[r.GroupID]++
		}
	}

	type joined struct {
		row models.ReviewSheetRow
		id  int64
	}
	var rows []joined
	for _, r := range s.reviews {
		if r.Reviewed {
			continue
		}
		t := s.findByID(r.TransactionID)
		if t == nil {
			continue
		}
		sheet := models.ReviewSheetRow{
			GroupCount:   counts[r.GroupID],
			GroupID:      r.GroupID,
			Date:         t.DateString(),
			Time:         t.TimePart,
			Description:  t.Description,
			Amount:       t.Amount,
			Account:      t.Account,
			Source:       t.Source,
			TxnID:        t.TxnID,
			Reference:    t.Reference,
			Similarity:   r.Similarity,
			OriginalHash: t.OriginalHash,
		}
		if t.Balance.Valid {
			sheet.Balance = t.Balance.Decimal.StringFixed(2)
		}
		rows = append(rows, joined{row: sheet, id: t.ID})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.row.GroupCount != b.row.GroupCount {
			return a.row.GroupCount > b.row.GroupCount
		}
		if a.row.GroupID != b.row.GroupID {
			return a.row.GroupID < b.row.GroupID
		}
		if a.row.Date != b.row.Date {
			return a.row.Date < b.row.Date
		}
		return a.id < b.id
	})

	out := make([]models.ReviewSheetRow, len(rows))
	for i, r := range rows {
		out[i] = r.row
	}
	return out, nil
}

func (s *MemoryStore) ResolveReviewGroup(ctx context.Context, groupID, action string, keepID int64, reviewedBy, notes string) (*models.ReviewResolution, error) {
	if !models.IsReviewAction(action) {
		return nil, fmt.Errorf("unknown review action %q", action)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var members []int64
	for _, r := range s.reviews {
		if r.GroupID == groupID && !r.Reviewed {
			members = append(members, r.TransactionID)
		}
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("no pending review entries for group %s", groupID)
	}

	destructive := action == models.ReviewActionDelete
	if destructive {
		found := false
		for _, id := range members {
			if id == keepID {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("keep id %d is not a member of group %s", keepID, groupID)
		}
	}

	now := time.Now()
	for _, r := range s.reviews {
		if r.GroupID == groupID && !r.Reviewed {
			r.Reviewed = true
			r.ActionTaken = action
			r.ReviewedBy = reviewedBy
			r.ReviewedAt = now
			r.Notes = notes
		}
	}

	deleted := 0
	if destructive {
		doomed := make(map[int64]bool)
		for _, id := range members {
			if id != keepID {
				doomed[id] = true
			}
		}
		kept := s.transactions[:0]
		for _, t := range s.transactions {
			if doomed[t.ID] {
				deleted++
				continue
			}
			kept = append(kept, t)
		}
		s.transactions = kept

		// Review entries cascade with their transactions.
		keptReviews := s.reviews[:0]
		for _, r := range s.reviews {
			if doomed[r.TransactionID] {
				continue
			}
			keptReviews = append(keptReviews, r)
		}
		s.reviews = keptReviews
	}

	s.nextRunID++
	s.runs = append(s.runs, &models.ProcessingLogEntry{
		ID:               s.nextRunID,
		OperationType:    models.OperationDuplicateReview,
		SourceFile:       groupID,
		RecordsProcessed: len(members),
		RecordsUpdated:   deleted,
		Status:           models.RunStatusCompleted,
		Details: map[string]any{
			"action":      action,
			"kept":        keepID,
			"deleted":     deleted,
			"reviewed_by": reviewedBy,
			"notes":       notes,
		},
		StartedAt:   now,
		CompletedAt: now,
	})

	res := &models.ReviewResolution{
		GroupID: groupID,
		Action:  action,
		Members: len(members),
		Deleted: deleted,
	}
	if destructive {
		res.Kept = keepID
	}
	return res, nil
}

func (s *MemoryStore) StartRun(ctx context.Context, entry *models.ProcessingLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRunID++
	entry.ID = s.nextRunID
	entry.StartedAt = time.Now()
	stored := *entry
	s.runs = append(s.runs, &stored)
	return nil
}

func (s *MemoryStore) FinishRun(ctx context.Context, entry *models.ProcessingLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.runs {
		if r.ID == entry.ID {
			entry.CompletedAt = time.Now()
			*r = *entry
			return nil
		}
	}
	return fmt.Errorf("run %d not found", entry.ID)
}

func (s *MemoryStore) RecentRuns(ctx context.Context, limit int) ([]models.ProcessingLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ProcessingLogEntry, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) MonthlySummary(ctx context.Context, months int) ([]models.MonthlyCategorySummary, error) {
	if months <= 0 {
		months = 3
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	type key struct {
		month    time.Time
		category string
	}
	agg := make(map[key]*models.MonthlyCategorySummary)
	for _, t := range s.transactions {
		month := time.Date(t.Date.Year(), t.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		if month.Before(cutoff) {
			continue
		}
		category := t.Category
		if category == "" {
			category = models.CategoryUncategorized
		}
		k := key{month: month, category: category}
		row := agg[k]
		if row == nil {
			row = &models.MonthlyCategorySummary{Month: month, Category: category}
			agg[k] = row
		}
		row.Count++
		row.Net = row.Net.Add(t.Amount)
		if t.Amount.IsNegative() {
			row.Expenses = row.Expenses.Add(t.Amount.Neg())
		} else if t.Amount.IsPositive() {
			row.Income = row.Income.Add(t.Amount)
		}
	}

	out := make([]models.MonthlyCategorySummary, 0, len(agg))
	for _, row := range agg {
		out = append(out, *row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Month.Equal(out[j].Month) {
			return out[i].Month.After(out[j].Month)
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (s *MemoryStore) findByRowHash(rowHash string) *models.CanonicalTransaction {
	for _, t := range s.transactions {
		if t.RowHash == rowHash {
			return t
		}
	}
	return nil
}

func (s *MemoryStore) findByID(id int64) *models.CanonicalTransaction {
	for _, t := range s.transactions {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
