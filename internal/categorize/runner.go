// Package categorize runs the assisted categorization pass over rows
// the import left uncategorized: vendor rules first, then the AI
// classifier in rate-limited batches, suggestions applied back by row
// hash.
package categorize

import (
	"context"
	"time"

	"finbook/csv-import/internal/classifier"
	"finbook/csv-import/internal/importerror"
	"finbook/csv-import/internal/logging"
	"finbook/csv-import/internal/models"
	"finbook/csv-import/internal/rules"
	"finbook/csv-import/internal/store"
)

const (
	// DefaultBatchSize is how many rows go to the classifier per call.
	DefaultBatchSize = 50
	// DefaultPause is the wait between classifier calls.
	DefaultPause = 2 * time.Second
	// fallbackCategory is applied when the classifier returns no usable
	// category for a row it was asked about.
	fallbackCategory = "Misc"
)

// Options configures one categorization run.
type Options struct {
	BatchSize int           // rows per classifier call, 0 means DefaultBatchSize
	Limit     int           // max rows to fetch, 0 means all
	Pause     time.Duration // wait between classifier calls, 0 means DefaultPause
	DryRun    bool
}

// Summary reports what one run did. Remaining counts rows still
// uncategorized afterward, including rows from failed classifier
// batches, which the next run picks up again.
type Summary struct {
	Processed int
	ByRule    int
	ByAI      int
	Failed    int // rows in classifier batches that errored
	Remaining int
	DryRun    bool
}

// HasErrors reports whether any classifier batch failed.
func (s *Summary) HasErrors() bool { return s.Failed > 0 }

// Runner applies vendor rules and a classifier to uncategorized rows.
// A nil classifier makes the run rules-only.
type Runner struct {
	store      store.RecordStore
	classifier classifier.Classifier
	logger     logging.Logger
}

func NewRunner(recordStore store.RecordStore, cls classifier.Classifier, logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NewMockLogger()
	}
	return &Runner{store: recordStore, classifier: cls, logger: logger}
}

// Run fetches uncategorized rows and categorizes them. A failed
// classifier batch leaves its rows for the next run; a failed store
// write aborts the run. Dry runs apply rules in memory only and never
// call the classifier, so previews cost nothing.
func (r *Runner) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Pause <= 0 {
		opts.Pause = DefaultPause
	}

	rows, err := r.store.UncategorizedTransactions(ctx, opts.Limit)
	if err != nil {
		return nil, &importerror.StoreWriteError{Op: "load uncategorized rows", Err: err}
	}

	summary := &Summary{Processed: len(rows), DryRun: opts.DryRun}
	if len(rows) == 0 {
		r.logger.Info("nothing to categorize")
		return summary, nil
	}

	ruleSet, err := r.store.ActiveVendorRules(ctx)
	if err != nil {
		return nil, &importerror.StoreWriteError{Op: "load vendor rules", Err: err}
	}
	engine := rules.NewEngine(ruleSet, r.logger)

	var entry *models.ProcessingLogEntry
	if !opts.DryRun {
		entry = &models.ProcessingLogEntry{
			OperationType: models.OperationAICategorization,
			SourceFile:    r.providerName(),
			Status:        models.RunStatusPending,
			Details: map[string]any{
				"batch_size": opts.BatchSize,
				"fetched":    len(rows),
			},
		}
		if err := r.store.StartRun(ctx, entry); err != nil {
			return nil, &importerror.StoreWriteError{Op: "start run", Err: err}
		}
	}

	r.logger.Info("starting categorization run",
		logging.Field{Key: logging.FieldCount, Value: len(rows)},
		logging.Field{Key: logging.FieldProvider, Value: r.providerName()},
		logging.Field{Key: "dry_run", Value: opts.DryRun})

	var pending []models.CanonicalTransaction
	for i := range rows {
		txn := rows[i]
		rule, ok := engine.Match(txn.Description)
		if !ok {
			pending = append(pending, txn)
			continue
		}
		if !opts.DryRun {
			if err := r.store.UpdateCategory(ctx, txn.ID, rule.Category, classifier.CleanVendorName(txn.Description)); err != nil {
				return r.fail(ctx, entry, summary, &importerror.StoreWriteError{Op: "update category", Err: err})
			}
		}
		summary.ByRule++
		r.logger.Debug("categorized by rule",
			logging.Field{Key: logging.FieldRule, Value: rule.Pattern},
			logging.Field{Key: logging.FieldCategory, Value: rule.Category},
			logging.Field{Key: logging.FieldRowHash, Value: txn.RowHash})
	}

	if r.classifier != nil && !opts.DryRun {
		if err := r.classifyPending(ctx, pending, opts, summary); err != nil {
			return r.fail(ctx, entry, summary, err)
		}
	}

	summary.Remaining = summary.Processed - summary.ByRule - summary.ByAI

	if !opts.DryRun {
		entry.RecordsProcessed = summary.Processed
		entry.RecordsUpdated = summary.ByRule + summary.ByAI
		entry.ErrorCount = summary.Failed
		entry.Status = runStatus(summary)
		entry.Details["by_rule"] = summary.ByRule
		entry.Details["by_ai"] = summary.ByAI
		if err := r.store.FinishRun(ctx, entry); err != nil {
			return nil, &importerror.StoreWriteError{Op: "finish run", Err: err}
		}
	}

	r.logger.Info("categorization run finished",
		logging.Field{Key: logging.FieldCount, Value: summary.Processed},
		logging.Field{Key: "by_rule", Value: summary.ByRule},
		logging.Field{Key: "by_ai", Value: summary.ByAI},
		logging.Field{Key: logging.FieldErrors, Value: summary.Failed},
		logging.Field{Key: "remaining", Value: summary.Remaining})
	return summary, nil
}

func (r *Runner) classifyPending(ctx context.Context, pending []models.CanonicalTransaction, opts Options, summary *Summary) error {
	for start := 0; start < len(pending); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(pending))
		chunk := pending[start:end]

		batch := make([]classifier.Row, len(chunk))
		for i := range chunk {
			batch[i] = classifier.RowFromTransaction(&chunk[i])
		}

		results, err := r.classifier.Classify(ctx, batch)
		if err != nil {
			// This batch stays uncategorized and is retried next run.
			summary.Failed += len(chunk)
			r.logger.WithError(err).Error("classifier batch failed",
				logging.Field{Key: logging.FieldProvider, Value: r.classifier.Name()},
				logging.Field{Key: logging.FieldCount, Value: len(chunk)})
		} else {
			byHash := make(map[string]classifier.Result, len(results))
			for _, res := range results {
				byHash[res.RowHash] = res
			}
			for i := range chunk {
				txn := &chunk[i]
				res := byHash[txn.RowHash]
				category := res.Category
				if category == "" {
					category = fallbackCategory
				}
				vendor := res.Vendor
				if vendor == "" {
					vendor = classifier.CleanVendorName(txn.Description)
				}
				if err := r.store.UpdateCategory(ctx, txn.ID, category, vendor); err != nil {
					return &importerror.StoreWriteError{Op: "update category", Err: err}
				}
				summary.ByAI++
			}
		}

		if end < len(pending) {
			r.logger.Debug("pausing between classifier batches",
				logging.Field{Key: logging.FieldDuration, Value: opts.Pause.Milliseconds()})
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.Pause):
			}
		}
	}
	return nil
}

// fail finalizes the run entry before surfacing a fatal error.
func (r *Runner) fail(ctx context.Context, entry *models.ProcessingLogEntry, summary *Summary, cause error) (*Summary, error) {
	if entry != nil {
		entry.RecordsProcessed = summary.Processed
		entry.RecordsUpdated = summary.ByRule + summary.ByAI
		entry.ErrorCount = summary.Failed + 1
		entry.Status = models.RunStatusFailed
		if err := r.store.FinishRun(ctx, entry); err != nil {
			r.logger.WithError(err).Warn("failed to finalize run entry")
		}
	}
	return nil, cause
}

func (r *Runner) providerName() string {
	if r.classifier == nil {
		return "rules-only"
	}
	return r.classifier.Name()
}

func runStatus(s *Summary) string {
	switch {
	case s.Failed == 0:
		return models.RunStatusCompleted
	case s.ByRule+s.ByAI > 0:
		return models.RunStatusPartial
	default:
		return models.RunStatusFailed
	}
}
