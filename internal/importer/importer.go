// Package importer sequences the ingestion pipeline for a directory of
// CSV exports: normalize, fingerprint, resolve duplicates, categorize
// by vendor rule, persist. Every file commits as one store transaction;
// a file that fails is logged and skipped while the run continues, and
// the run's processing log entry records how it all went.
package importer

import (
	"context"
	"time"

	"finbook/csv-import/internal/classifier"
	"finbook/csv-import/internal/dedup"
	"finbook/csv-import/internal/fileutils"
	"finbook/csv-import/internal/fingerprint"
	"finbook/csv-import/internal/importerror"
	"finbook/csv-import/internal/logging"
	"finbook/csv-import/internal/models"
	"finbook/csv-import/internal/normalize"
	"finbook/csv-import/internal/rules"
	"finbook/csv-import/internal/store"

	"github.com/google/uuid"
)

// Options configures one import run.
type Options struct {
	InputDir   string
	Recursive  bool
	Since      time.Time // zero means no date filter
	DryRun     bool
	SourceMode string
	Delimiter  rune
	Profile    string // profile name, empty for auto-detection
	ProfileDir string
}

// FileResult reports what happened to a single source file.
type FileResult struct {
	File      string
	RowsRead  int
	Processed int
	Inserted  int
	Skipped   int // exact duplicates
	Flagged   int // inserted but staged for review
	ByRule    int // categorized by a vendor rule
	RowErrors int
	Err       error
}

// RunSummary aggregates a whole run. Status mirrors the processing log
// entry: completed, partial when some files failed, failed when every
// file did.
type RunSummary struct {
	RunID       string
	Status      string
	DryRun      bool
	Files       []FileResult
	Processed   int
	Inserted    int
	Skipped     int
	Flagged     int
	ByRule      int
	RowErrors   int
	FailedFiles int
}

// HasErrors reports whether anything went wrong: the CLI exits nonzero
// when it returns true, even if the run as a whole completed.
func (s *RunSummary) HasErrors() bool {
	return s.FailedFiles > 0 || s.RowErrors > 0
}

// Importer runs import pipelines against one record store.
type Importer struct {
	store  store.RecordStore
	logger logging.Logger
}

func New(recordStore store.RecordStore, logger logging.Logger) *Importer {
	if logger == nil {
		logger = logging.NewMockLogger()
	}
	return &Importer{store: recordStore, logger: logger}
}

// Run processes every CSV file under opts.InputDir. It returns an error
// only when the run as a whole cannot proceed (unreadable input
// directory, failed profile load, store unavailable); per-file failures
// are reported inside the summary instead.
func (imp *Importer) Run(ctx context.Context, opts Options) (*RunSummary, error) {
	files, err := fileutils.ListCSVFiles(opts.InputDir, opts.Recursive)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{RunID: uuid.NewString(), DryRun: opts.DryRun}

	var profile *normalize.Profile
	if opts.Profile != "" {
		profile, err = normalize.LoadProfile(opts.ProfileDir, opts.Profile)
		if err != nil {
			return nil, err
		}
	}

	ruleSet, err := imp.store.ActiveVendorRules(ctx)
	if err != nil {
		return nil, &importerror.StoreWriteError{Op: "load vendor rules", Err: err}
	}
	engine := rules.NewEngine(ruleSet, imp.logger)

	// Dry runs preview group ids from a local counter so the store
	// sequence is not burned.
	allocator := dedup.GroupAllocator(imp.store)
	if opts.DryRun {
		seq, err := imp.store.CurrentDupGroupSeq(ctx)
		if err != nil {
			return nil, &importerror.StoreWriteError{Op: "read dup group sequence", Err: err}
		}
		allocator = dedup.NewPreviewAllocator(seq)
	}
	resolver := dedup.NewResolver(imp.store, allocator, imp.logger)

	var entry *models.ProcessingLogEntry
	if !opts.DryRun {
		entry = &models.ProcessingLogEntry{
			OperationType: models.OperationCSVImport,
			SourceFile:    opts.InputDir,
			Status:        models.RunStatusPending,
			Details: map[string]any{
				"run_id": summary.RunID,
				"files":  len(files),
			},
		}
		if err := imp.store.StartRun(ctx, entry); err != nil {
			return nil, &importerror.StoreWriteError{Op: "start run", Err: err}
		}
	}

	imp.logger.Info("starting import run",
		logging.Field{Key: logging.FieldRunID, Value: summary.RunID},
		logging.Field{Key: logging.FieldCount, Value: len(files)},
		logging.Field{Key: "dry_run", Value: opts.DryRun})

	normalizer := normalize.New(profile, opts.SourceMode, opts.Delimiter)

	for _, file := range files {
		fr := imp.processFile(ctx, normalizer, engine, resolver, file, opts)
		summary.Files = append(summary.Files, fr)
		summary.Processed += fr.Processed
		summary.Inserted += fr.Inserted
		summary.Skipped += fr.Skipped
		summary.Flagged += fr.Flagged
		summary.ByRule += fr.ByRule
		summary.RowErrors += fr.RowErrors
		if fr.Err != nil {
			summary.FailedFiles++
			imp.logger.WithError(fr.Err).Error("file failed",
				logging.Field{Key: logging.FieldFile, Value: file},
				logging.Field{Key: logging.FieldRunID, Value: summary.RunID})
		}
	}

	summary.Status = runStatus(len(files), summary.FailedFiles)

	if !opts.DryRun {
		entry.RecordsProcessed = summary.Processed
		entry.RecordsInserted = summary.Inserted
		entry.RecordsSkipped = summary.Skipped
		entry.ErrorCount = summary.RowErrors + summary.FailedFiles
		entry.Status = summary.Status
		entry.Details["flagged"] = summary.Flagged
		entry.Details["rule_categorized"] = summary.ByRule
		entry.Details["failed_files"] = summary.FailedFiles
		if err := imp.store.FinishRun(ctx, entry); err != nil {
			return nil, &importerror.StoreWriteError{Op: "finish run", Err: err}
		}
	}

	imp.logger.Info("import run finished",
		logging.Field{Key: logging.FieldRunID, Value: summary.RunID},
		logging.Field{Key: logging.FieldStatus, Value: summary.Status},
		logging.Field{Key: logging.FieldCount, Value: summary.Processed},
		logging.Field{Key: logging.FieldInserted, Value: summary.Inserted},
		logging.Field{Key: logging.FieldSkipped, Value: summary.Skipped},
		logging.Field{Key: logging.FieldFlagged, Value: summary.Flagged},
		logging.Field{Key: logging.FieldErrors, Value: summary.RowErrors+summary.FailedFiles})
	return summary, nil
}

func runStatus(files, failed int) string {
	switch {
	case failed == 0:
		return models.RunStatusCompleted
	case failed == files:
		return models.RunStatusFailed
	default:
		return models.RunStatusPartial
	}
}

func (imp *Importer) processFile(ctx context.Context, normalizer *normalize.Normalizer, engine *rules.Engine, resolver *dedup.Resolver, file string, opts Options) FileResult {
	fr := FileResult{File: file}

	res, err := normalizer.NormalizeFile(file)
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.RowsRead = res.RowsRead
	fr.RowErrors = len(res.RowErrors)
	for _, rowErr := range res.RowErrors {
		imp.logger.WithError(rowErr).Warn("skipping malformed row",
			logging.Field{Key: logging.FieldFile, Value: file},
			logging.Field{Key: logging.FieldLine, Value: rowErr.Line})
	}

	batch := res.Transactions
	if !opts.Since.IsZero() {
		filtered := make([]*models.CanonicalTransaction, 0, len(batch))
		for _, txn := range batch {
			if !txn.Date.Before(opts.Since) {
				filtered = append(filtered, txn)
			}
		}
		batch = filtered
	}
	fr.Processed = len(batch)
	if len(batch) == 0 {
		return fr
	}

	fingerprint.Annotate(batch)

	resolution, err := resolver.Resolve(ctx, batch)
	if err != nil {
		fr.Err = &importerror.StoreWriteError{Op: "duplicate lookup", File: file, Err: err}
		return fr
	}

	_, dups, flagged := resolution.Counts()
	fr.Skipped = dups
	fr.Flagged = flagged

	survivors := resolution.Survivors()
	rows := make([]*models.CanonicalTransaction, 0, len(survivors))
	var reviews []store.ReviewStaging
	for _, r := range survivors {
		txn := r.Transaction
		if rule, ok := engine.Match(txn.Description); ok {
			txn.Category = rule.Category
			txn.Vendor = classifier.CleanVendorName(txn.Description)
			fr.ByRule++
			imp.logger.Debug("categorized by rule",
				logging.Field{Key: logging.FieldRule, Value: rule.Pattern},
				logging.Field{Key: logging.FieldCategory, Value: rule.Category},
				logging.Field{Key: logging.FieldRowHash, Value: txn.RowHash})
		}
		if r.Disposition == dedup.DispositionReviewCandidate {
			reviews = append(reviews, store.ReviewStaging{
				GroupID:    r.GroupID,
				RowIndex:   len(rows),
				Similarity: r.Similarity,
				Notes:      r.Reason,
			})
		}
		rows = append(rows, txn)
	}

	var tags []store.GroupTag
	for _, peer := range resolution.PeerFlags {
		tags = append(tags, store.GroupTag{TransactionID: peer.TransactionID, GroupID: peer.GroupID})
		reviews = append(reviews, store.ReviewStaging{
			GroupID:       peer.GroupID,
			RowIndex:      -1,
			TransactionID: peer.TransactionID,
			Similarity:    peer.Similarity,
			Notes:         "existing row matched by a new import",
		})
	}

	if opts.DryRun {
		fr.Inserted = len(rows)
		imp.logger.Info("dry run: no rows written",
			logging.Field{Key: logging.FieldFile, Value: file},
			logging.Field{Key: logging.FieldCount, Value: len(rows)})
		return fr
	}

	inserted, err := imp.store.InsertBatch(ctx, &store.ImportBatch{
		SourceFile: file,
		Rows:       rows,
		Reviews:    reviews,
		GroupTags:  tags,
	})
	if err != nil {
		fr.Err = &importerror.StoreWriteError{Op: "insert batch", File: file, Err: err}
		return fr
	}
	fr.Inserted = inserted

	imp.logger.Info("file imported",
		logging.Field{Key: logging.FieldFile, Value: file},
		logging.Field{Key: logging.FieldInserted, Value: fr.Inserted},
		logging.Field{Key: logging.FieldSkipped, Value: fr.Skipped},
		logging.Field{Key: logging.FieldFlagged, Value: fr.Flagged})
	return fr
}
