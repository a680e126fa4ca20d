package logging

// Standardized field names for structured logging.
// These constants keep field naming consistent across the pipeline so log
// output stays easy to filter by file, run or duplicate group.
const (
	FieldFile          = "file"
	FieldLine          = "line"
	FieldRunID         = "run_id"
	FieldOperation     = "operation"
	FieldStatus        = "status"
	FieldCount         = "count"
	FieldInserted      = "inserted"
	FieldSkipped       = "skipped"
	FieldFlagged       = "flagged"
	FieldErrors        = "errors"
	FieldDupGroup      = "dup_group"
	FieldRowHash       = "row_hash"
	FieldTransactionID = "transaction_id"
	FieldCategory      = "category"
	FieldRule          = "rule"
	FieldProvider      = "provider"
	FieldBatch         = "batch"
	FieldAccount       = "account"
	FieldSource        = "source"
	FieldDuration      = "duration_ms"
)
