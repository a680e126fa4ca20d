package categorize

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbook/csv-import/internal/classifier"
	"finbook/csv-import/internal/fingerprint"
	"finbook/csv-import/internal/models"
	"finbook/csv-import/internal/store"
)

type stubClassifier struct {
	batches [][]classifier.Row
	results map[string]classifier.Result // keyed by row hash
	failOn  map[int]error                // batch index -> error
}

func (s *stubClassifier) Name() string { return "stub" }

func (s *stubClassifier) Classify(ctx context.Context, batch []classifier.Row) ([]classifier.Result, error) {
	idx := len(s.batches)
	s.batches = append(s.batches, batch)
	if err := s.failOn[idx]; err != nil {
		return nil, err
	}
	var out []classifier.Result
	for _, row := range batch {
		if res, ok := s.results[row.RowHash]; ok {
			out = append(out, res)
		}
	}
	return out, nil
}

type categoryUpdate struct {
	ID       int64
	Category string
	Vendor   string
}

// recordingStore captures UpdateCategory calls on top of the in-memory
// store so tests can assert what was written.
type recordingStore struct {
	*store.MemoryStore
	updates []categoryUpdate
}

func (r *recordingStore) UpdateCategory(ctx context.Context, id int64, category, vendor string) error {
	r.updates = append(r.updates, categoryUpdate{ID: id, Category: category, Vendor: vendor})
	return r.MemoryStore.UpdateCategory(ctx, id, category, vendor)
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: store.NewMemoryStore()}
}

func seedUncategorized(t *testing.T, s store.RecordStore, descs ...string) []models.CanonicalTransaction {
	t.Helper()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]*models.CanonicalTransaction, len(descs))
	for i, desc := range descs {
		rows[i] = &models.CanonicalTransaction{
			Date:        base.AddDate(0, 0, i),
			Description: desc,
			Amount:      decimal.NewFromInt(-int64(i) - 5),
		}
	}
	fingerprint.Annotate(rows)
	_, err := s.InsertBatch(context.Background(), &store.ImportBatch{SourceFile: "seed.csv", Rows: rows})
	require.NoError(t, err)

	out, err := s.UncategorizedTransactions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, out, len(descs))
	return out
}

func seedCategorizeRule(t *testing.T, s store.RecordStore, pattern, category string) {
	t.Helper()
	require.NoError(t, s.AddVendorRule(context.Background(), &models.VendorMappingRule{
		Pattern:  pattern,
		Category: category,
		Priority: 10,
		Active:   true,
	}))
}

func TestRunRulesBeforeClassifier(t *testing.T) {
	s := newRecordingStore()
	rows := seedUncategorized(t, s, "STARBUCKS #123", "UNKNOWN VENDOR")
	seedCategorizeRule(t, s, "STARBUCKS", "Dining")

	stub := &stubClassifier{results: map[string]classifier.Result{
		rows[1].RowHash: {RowHash: rows[1].RowHash, Vendor: "Unknown Vendor", Category: "Shopping"},
	}}

	summary, err := NewRunner(s, stub, nil).Run(context.Background(), Options{Pause: time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.ByRule)
	assert.Equal(t, 1, summary.ByAI)
	assert.Zero(t, summary.Remaining)
	assert.False(t, summary.HasErrors())

	// The rule-matched row never reaches the classifier.
	require.Len(t, stub.batches, 1)
	require.Len(t, stub.batches[0], 1)
	assert.Equal(t, "UNKNOWN VENDOR", stub.batches[0][0].Description)

	require.Len(t, s.updates, 2)
	assert.Equal(t, categoryUpdate{ID: rows[0].ID, Category: "Dining", Vendor: "STARBUCKS"}, s.updates[0])
	assert.Equal(t, categoryUpdate{ID: rows[1].ID, Category: "Shopping", Vendor: "Unknown Vendor"}, s.updates[1])

	left, err := s.UncategorizedTransactions(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, left)

	runs, err := s.RecentRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.OperationAICategorization, runs[0].OperationType)
	assert.Equal(t, models.RunStatusCompleted, runs[0].Status)
	assert.Equal(t, 2, runs[0].RecordsUpdated)
}

func TestRunDefaultsWhenClassifierOmitsRow(t *testing.T) {
	s := newRecordingStore()
	rows := seedUncategorized(t, s, "MYSTERY SHOP #99")

	// Empty result set: the row was asked about but not answered.
	stub := &stubClassifier{}

	summary, err := NewRunner(s, stub, nil).Run(context.Background(), Options{Pause: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ByAI)

	require.Len(t, s.updates, 1)
	assert.Equal(t, categoryUpdate{ID: rows[0].ID, Category: "Misc", Vendor: "MYSTERY SHOP"}, s.updates[0])
}

func TestRunSplitsBatches(t *testing.T) {
	s := newRecordingStore()
	seedUncategorized(t, s, "A ONE", "B TWO", "C THREE", "D FOUR", "E FIVE")

	stub := &stubClassifier{}
	summary, err := NewRunner(s, stub, nil).Run(context.Background(), Options{BatchSize: 2, Pause: time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.ByAI)
	require.Len(t, stub.batches, 3)
	assert.Len(t, stub.batches[0], 2)
	assert.Len(t, stub.batches[1], 2)
	assert.Len(t, stub.batches[2], 1)
}

func TestRunFailedBatchLeavesRowsForNextRun(t *testing.T) {
	s := newRecordingStore()
	rows := seedUncategorized(t, s, "A ONE", "B TWO", "C THREE", "D FOUR")

	stub := &stubClassifier{failOn: map[int]error{0: assert.AnError}}
	summary, err := NewRunner(s, stub, nil).Run(context.Background(), Options{BatchSize: 2, Pause: time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 2, summary.ByAI)
	assert.Equal(t, 2, summary.Remaining)
	assert.True(t, summary.HasErrors())

	left, err := s.UncategorizedTransactions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, rows[0].RowHash, left[0].RowHash)
	assert.Equal(t, rows[1].RowHash, left[1].RowHash)

	runs, err := s.RecentRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RunStatusPartial, runs[0].Status)
	assert.Equal(t, 2, runs[0].ErrorCount)
}

func TestRunEveryBatchFailed(t *testing.T) {
	s := newRecordingStore()
	seedUncategorized(t, s, "A ONE", "B TWO")

	stub := &stubClassifier{failOn: map[int]error{0: assert.AnError}}
	summary, err := NewRunner(s, stub, nil).Run(context.Background(), Options{Pause: time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Failed)
	assert.Zero(t, summary.ByAI)

	runs, err := s.RecentRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RunStatusFailed, runs[0].Status)
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	s := newRecordingStore()
	seedUncategorized(t, s, "STARBUCKS #123", "UNKNOWN VENDOR")
	seedCategorizeRule(t, s, "STARBUCKS", "Dining")

	stub := &stubClassifier{}
	summary, err := NewRunner(s, stub, nil).Run(context.Background(), Options{DryRun: true})
	require.NoError(t, err)

	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.ByRule)
	assert.Zero(t, summary.ByAI)
	assert.Equal(t, 1, summary.Remaining)

	assert.Empty(t, stub.batches, "dry run must not call the classifier")
	assert.Empty(t, s.updates, "dry run must not write")

	runs, err := s.RecentRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs, "dry run must not log a processing run")
}

func TestRunRulesOnlyWithoutClassifier(t *testing.T) {
	s := newRecordingStore()
	seedUncategorized(t, s, "STARBUCKS #123", "UNKNOWN VENDOR")
	seedCategorizeRule(t, s, "STARBUCKS", "Dining")

	summary, err := NewRunner(s, nil, nil).Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ByRule)
	assert.Zero(t, summary.ByAI)
	assert.Equal(t, 1, summary.Remaining)

	runs, err := s.RecentRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "rules-only", runs[0].SourceFile)
	assert.Equal(t, models.RunStatusCompleted, runs[0].Status)
}

func TestRunLimit(t *testing.T) {
	s := newRecordingStore()
	seedUncategorized(t, s, "A ONE", "B TWO", "C THREE")

	stub := &stubClassifier{}
	summary, err := NewRunner(s, stub, nil).Run(context.Background(), Options{Limit: 2, Pause: time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.ByAI)

	left, err := s.UncategorizedTransactions(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestRunNothingToDo(t *testing.T) {
	s := newRecordingStore()
	stub := &stubClassifier{}

	summary, err := NewRunner(s, stub, nil).Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Zero(t, summary.Processed)
	assert.Empty(t, stub.batches)

	runs, err := s.RecentRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs, "an empty run is not logged")
}
