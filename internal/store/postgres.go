package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finbook/csv-import/internal/logging"
	"finbook/csv-import/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/shopspring/decimal"
)

// schemaStatements are applied in order by Setup. Every statement is
// idempotent so Setup can run on every start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		date DATE NOT NULL,
		description TEXT NOT NULL,
		amount NUMERIC(10,2) NOT NULL,
		category VARCHAR(100),
		vendor VARCHAR(100),
		source VARCHAR(100),
		txn_id VARCHAR(100),
		reference VARCHAR(100),
		account VARCHAR(50),
		balance NUMERIC(12,2),
		time_part VARCHAR(20),
		row_hash VARCHAR(32) NOT NULL UNIQUE,
		original_hash VARCHAR(16),
		possible_dup_group VARCHAR(20),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_date_amount ON transactions (date, amount)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_txn_id_account ON transactions (txn_id, account)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions (category)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS vendor_mappings (
		id BIGSERIAL PRIMARY KEY,
		pattern VARCHAR(200) NOT NULL,
		category VARCHAR(100) NOT NULL,
		is_regex BOOLEAN NOT NULL DEFAULT FALSE,
		priority INT NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS processing_log (
		id BIGSERIAL PRIMARY KEY,
		operation_type VARCHAR(50) NOT NULL,
		source_file TEXT,
		records_processed INT NOT NULL DEFAULT 0,
		records_inserted INT NOT NULL DEFAULT 0,
		records_updated INT NOT NULL DEFAULT 0,
		records_skipped INT NOT NULL DEFAULT 0,
		error_count INT NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		details JSONB,
		started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS duplicate_review (
		id BIGSERIAL PRIMARY KEY,
		group_id VARCHAR(20) NOT NULL,
		transaction_id BIGINT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
		similarity_score DECIMAL(3,2),
		reviewed BOOLEAN NOT NULL DEFAULT FALSE,
		action_taken VARCHAR(20),
		reviewed_by VARCHAR(100),
		reviewed_at TIMESTAMPTZ,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_duplicate_review_group ON duplicate_review (group_id)`,
	`CREATE SEQUENCE IF NOT EXISTS dup_group_seq`,
}

const transactionColumns = `id, date, description, amount,
	COALESCE(category, ''), COALESCE(vendor, ''), COALESCE(source, ''),
	COALESCE(txn_id, ''), COALESCE(reference, ''), COALESCE(account, ''),
	balance, COALESCE(time_part, ''), row_hash, COALESCE(original_hash, ''),
	COALESCE(possible_dup_group, ''), created_at, updated_at`

const insertTransactionSQL = `INSERT INTO transactions
	(date, description, amount, category, vendor, source, txn_id, reference,
	 account, balance, time_part, row_hash, original_hash, possible_dup_group)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	RETURNING id, created_at, updated_at`

// PostgresStore implements RecordStore on a pgx connection pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPostgresStore connects to the database, registers the decimal
// codec on every connection and verifies the link with a ping.
func NewPostgresStore(ctx context.Context, databaseURL string, maxConns int, logger logging.Logger) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if logger == nil {
		logger = logging.NewMockLogger()
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Setup applies the schema and seeds the category list. Safe to call on
// every start.
func (s *PostgresStore) Setup(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	for _, name := range models.MasterCategories {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", name, err)
		}
	}
	s.logger.Debug("database schema ready")
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) HasTxnID(ctx context.Context, txnID, account string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE txn_id = $1 AND COALESCE(account, '') = $2)`,
		txnID, account).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("txn id lookup: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) HasReference(ctx context.Context, reference string, date time.Time, amount decimal.Decimal) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE reference = $1 AND date = $2 AND amount = $3)`,
		reference, date, amount).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("reference lookup: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) HasRowHash(ctx context.Context, rowHash string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE row_hash = $1)`,
		rowHash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("row hash lookup: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) FindByDateAmount(ctx context.Context, date time.Time, amount decimal.Decimal) ([]models.CanonicalTransaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE date = $1 AND amount = $2 ORDER BY id`,
		date, amount)
	if err != nil {
		return nil, fmt.Errorf("date/amount lookup: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// InsertBatch writes one source file's rows, group tags and review
// entries in a single transaction.
func (s *PostgresStore) InsertBatch(ctx context.Context, batch *ImportBatch) (int, error) {
	if batch == nil || (len(batch.Rows) == 0 && len(batch.GroupTags) == 0 && len(batch.Reviews) == 0) {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]int64, len(batch.Rows))
	for i, row := range batch.Rows {
		err := tx.QueryRow(ctx, insertTransactionSQL,
			row.Date, row.Description, row.Amount,
			row.Category, row.Vendor, row.Source,
			row.TxnID, row.Reference, row.Account,
			row.Balance, row.TimePart,
			row.RowHash, row.OriginalHash, row.PossibleDupGroup,
		).Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt)
		if err != nil {
			return 0, fmt.Errorf("insert row %d of %s: %w", i+1, batch.SourceFile, err)
		}
		ids[i] = row.ID
	}

	for _, tag := range batch.GroupTags {
		_, err := tx.Exec(ctx,
			`UPDATE transactions SET possible_dup_group = $1, updated_at = now()
			 WHERE id = $2 AND COALESCE(possible_dup_group, '') = ''`,
			tag.GroupID, tag.TransactionID)
		if err != nil {
			return 0, fmt.Errorf("tag group %s on %d: %w", tag.GroupID, tag.TransactionID, err)
		}
	}

	for _, review := range batch.Reviews {
		txnID := review.TransactionID
		if txnID == 0 {
			if review.RowIndex < 0 || review.RowIndex >= len(ids) {
				return 0, fmt.Errorf("review row index %d out of range for %s", review.RowIndex, batch.SourceFile)
			}
			txnID = ids[review.RowIndex]
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO duplicate_review (group_id, transaction_id, similarity_score, notes)
			 VALUES ($1, $2, $3, $4)`,
			review.GroupID, txnID, review.Similarity, review.Notes)
		if err != nil {
			return 0, fmt.Errorf("stage review for group %s: %w", review.GroupID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit %s: %w", batch.SourceFile, err)
	}
	return len(batch.Rows), nil
}

func (s *PostgresStore) NextDupGroupID(ctx context.Context) (string, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT nextval('dup_group_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("next dup group: %w", err)
	}
	return models.FormatDupGroup(n), nil
}

func (s *PostgresStore) CurrentDupGroupSeq(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT CASE WHEN is_called THEN last_value ELSE 0 END FROM dup_group_seq`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("current dup group seq: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ActiveVendorRules(ctx context.Context) ([]models.VendorMappingRule, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, pattern, category, is_regex, priority, active, created_at
		 FROM vendor_mappings WHERE active ORDER BY priority DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("load vendor rules: %w", err)
	}
	defer rows.Close()

	var rules []models.VendorMappingRule
	for rows.Next() {
		var r models.VendorMappingRule
		if err := rows.Scan(&r.ID, &r.Pattern, &r.Category, &r.IsRegex, &r.Priority, &r.Active, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vendor rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (s *PostgresStore) AddVendorRule(ctx context.Context, rule *models.VendorMappingRule) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO vendor_mappings (pattern, category, is_regex, priority, active)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		rule.Pattern, rule.Category, rule.IsRegex, rule.Priority, rule.Active,
	).Scan(&rule.ID, &rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("add vendor rule: %w", err)
	}
	return nil
}

func (s *PostgresStore) UncategorizedTransactions(ctx context.Context, limit int) ([]models.CanonicalTransaction, error) {
	if limit < 0 {
		limit = 0
	}
	// LIMIT NULL means no limit, so 0 fetches everything.
	rows, err := s.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE category IS NULL OR category = ''
		 ORDER BY date, id LIMIT NULLIF($1, 0)`, limit)
	if err != nil {
		return nil, fmt.Errorf("load uncategorized: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, id int64, category, vendor string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE transactions SET category = $2, vendor = $3, updated_at = now() WHERE id = $1`,
		id, category, vendor)
	if err != nil {
		return fmt.Errorf("update category for %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %d not found", id)
	}
	return nil
}

// PendingReviewRows returns the open review queue joined with its
// transactions, largest groups first, ready for CSV export.
func (s *PostgresStore) PendingReviewRows(ctx context.Context) ([]models.ReviewSheetRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT dr.group_id, gc.group_count,
			t.date, COALESCE(t.time_part, ''), t.description, t.amount,
			COALESCE(t.account, ''), COALESCE(t.source, ''),
			COALESCE(t.txn_id, ''), COALESCE(t.reference, ''),
			t.balance, COALESCE(dr.similarity_score, 0), COALESCE(t.original_hash, '')
		 FROM duplicate_review dr
		 JOIN transactions t ON t.id = dr.transaction_id
		 JOIN (
			SELECT group_id, COUNT(*) AS group_count
			FROM duplicate_review WHERE NOT reviewed GROUP BY group_id
		 ) gc ON gc.group_id = dr.group_id
		 WHERE NOT dr.reviewed
		 ORDER BY gc.group_count DESC, dr.group_id, t.date, t.id`)
	if err != nil {
		return nil, fmt.Errorf("load pending reviews: %w", err)
	}
	defer rows.Close()

	var out []models.ReviewSheetRow
	for rows.Next() {
		var (
			r       models.ReviewSheetRow
			date    time.Time
			balance decimal.NullDecimal
		)
		err := rows.Scan(&r.GroupID, &r.GroupCount, &date, &r.Time, &r.Description,
			&r.Amount, &r.Account, &r.Source, &r.TxnID, &r.Reference,
			&balance, &r.Similarity, &r.OriginalHash)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		r.Date = date.Format("2006-01-02")
		if balance.Valid {
			r.Balance = balance.Decimal.StringFixed(2)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ResolveReviewGroup applies one reviewer decision to a pending group.
// keep, merge and ignore leave all rows in place; merge additionally
// records that the rows await manual consolidation. delete keeps only
// keepID and removes the other members. The decision is stamped on the
// review entries and recorded in the processing log, all in one
// transaction.
func (s *PostgresStore) ResolveReviewGroup(ctx context.Context, groupID, action string, keepID int64, reviewedBy, notes string) (*models.ReviewResolution, error) {
	if !models.IsReviewAction(action) {
		return nil, fmt.Errorf("unknown review action %q", action)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	memberRows, err := tx.Query(ctx,
		`SELECT transaction_id FROM duplicate_review
		 WHERE group_id = $1 AND NOT reviewed ORDER BY transaction_id FOR UPDATE`, groupID)
	if err != nil {
		return nil, fmt.Errorf("lock group %s: %w", groupID, err)
	}
	var members []int64
	for memberRows.Next() {
		var id int64
		if err := memberRows.Scan(&id); err != nil {
			memberRows.Close()
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		members = append(members, id)
	}
	memberRows.Close()
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("read group %s: %w", groupID, err)
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

	_, err = tx.Exec(ctx,
		`UPDATE duplicate_review
		 SET reviewed = TRUE, action_taken = $2, reviewed_by = $3, reviewed_at = now(), notes = $4
		 WHERE group_id = $1 AND NOT reviewed`,
		groupID, action, reviewedBy, notes)
	if err != nil {
		return nil, fmt.Errorf("stamp group %s: %w", groupID, err)
	}

	deleted := 0
	if destructive {
		var doomed []int64
		for _, id := range members {
			if id != keepID {
				doomed = append(doomed, id)
			}
		}
		if len(doomed) > 0 {
			tag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = ANY($1)`, doomed)
			if err != nil {
				return nil, fmt.Errorf("delete duplicates in %s: %w", groupID, err)
			}
			deleted = int(tag.RowsAffected())
		}
	}

	details, err := json.Marshal(map[string]any{
		"action":      action,
		"kept":        keepID,
		"deleted":     deleted,
		"reviewed_by": reviewedBy,
		"notes":       notes,
	})
	if err != nil {
		return nil, fmt.Errorf("encode resolution details: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO processing_log
		 (operation_type, source_file, records_processed, records_updated, status, details, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())`,
		models.OperationDuplicateReview, groupID, len(members), deleted, models.RunStatusCompleted, details)
	if err != nil {
		return nil, fmt.Errorf("log resolution of %s: %w", groupID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit resolution of %s: %w", groupID, err)
	}

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

func (s *PostgresStore) StartRun(ctx context.Context, entry *models.ProcessingLogEntry) error {
	details, err := marshalDetails(entry.Details)
	if err != nil {
		return err
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO processing_log (operation_type, source_file, status, details)
		 VALUES ($1, $2, $3, $4) RETURNING id, started_at`,
		entry.OperationType, entry.SourceFile, entry.Status, details,
	).Scan(&entry.ID, &entry.StartedAt)
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

func (s *PostgresStore) FinishRun(ctx context.Context, entry *models.ProcessingLogEntry) error {
	details, err := marshalDetails(entry.Details)
	if err != nil {
		return err
	}
	err = s.pool.QueryRow(ctx,
		`UPDATE processing_log
		 SET records_processed = $2, records_inserted = $3, records_updated = $4,
		     records_skipped = $5, error_count = $6, status = $7, details = $8,
		     completed_at = now()
		 WHERE id = $1 RETURNING completed_at`,
		entry.ID, entry.RecordsProcessed, entry.RecordsInserted, entry.RecordsUpdated,
		entry.RecordsSkipped, entry.ErrorCount, entry.Status, details,
	).Scan(&entry.CompletedAt)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", entry.ID, err)
	}
	return nil
}

func (s *PostgresStore) RecentRuns(ctx context.Context, limit int) ([]models.ProcessingLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, operation_type, COALESCE(source_file, ''),
			records_processed, records_inserted, records_updated, records_skipped,
			error_count, status, details, started_at, completed_at
		 FROM processing_log ORDER BY started_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent runs: %w", err)
	}
	defer rows.Close()

	var out []models.ProcessingLogEntry
	for rows.Next() {
		var (
			e           models.ProcessingLogEntry
			details     []byte
			completedAt *time.Time
		)
		err := rows.Scan(&e.ID, &e.OperationType, &e.SourceFile,
			&e.RecordsProcessed, &e.RecordsInserted, &e.RecordsUpdated, &e.RecordsSkipped,
			&e.ErrorCount, &e.Status, &details, &e.StartedAt, &completedAt)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("decode run %d details: %w", e.ID, err)
			}
		}
		if completedAt != nil {
			e.CompletedAt = *completedAt
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MonthlySummary(ctx context.Context, months int) ([]models.MonthlyCategorySummary, error) {
	if months <= 0 {
		months = 3
	}
	rows, err := s.pool.Query(ctx,
		`SELECT date_trunc('month', date)::date AS month,
			COALESCE(NULLIF(category, ''), 'Uncategorized') AS category,
			COUNT(*) AS txn_count,
			COALESCE(SUM(CASE WHEN amount < 0 THEN -amount END), 0) AS expenses,
			COALESCE(SUM(CASE WHEN amount > 0 THEN amount END), 0) AS income,
			COALESCE(SUM(amount), 0) AS net
		 FROM transactions
		 WHERE date >= date_trunc('month', CURRENT_DATE)::date - ($1 - 1) * INTERVAL '1 month'
		 GROUP BY 1, 2
		 ORDER BY 1 DESC, 2`, months)
	if err != nil {
		return nil, fmt.Errorf("monthly summary: %w", err)
	}
	defer rows.Close()

	var out []models.MonthlyCategorySummary
	for rows.Next() {
		var row models.MonthlyCategorySummary
		err := rows.Scan(&row.Month, &row.Category, &row.Count, &row.Expenses, &row.Income, &row.Net)
		if err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func marshalDetails(details map[string]any) ([]byte, error) {
	if details == nil {
		return nil, nil
	}
	b, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode run details: %w", err)
	}
	return b, nil
}

func scanTransactions(rows pgx.Rows) ([]models.CanonicalTransaction, error) {
	var out []models.CanonicalTransaction
	for rows.Next() {
		var t models.CanonicalTransaction
		err := rows.Scan(&t.ID, &t.Date, &t.Description, &t.Amount,
			&t.Category, &t.Vendor, &t.Source,
			&t.TxnID, &t.Reference, &t.Account,
			&t.Balance, &t.TimePart, &t.RowHash, &t.OriginalHash,
			&t.PossibleDupGroup, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
