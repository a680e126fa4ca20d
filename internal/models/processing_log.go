package models

import "time"

// ProcessingLogEntry records one pipeline run: an import, an AI
// categorization pass, or a duplicate review resolution. Details carries
// operation-specific metadata (run id, file list, decision notes) and is
// stored as JSON.
type ProcessingLogEntry struct {
	ID               int64
	OperationType    string
	SourceFile       string
	RecordsProcessed int
	RecordsInserted  int
	RecordsUpdated   int
	RecordsSkipped   int
	ErrorCount       int
	Status           string
	Details          map[string]any
	StartedAt        time.Time
	CompletedAt      time.Time
}

// Duration returns the wall time of a finished run, or zero while the run
// is still pending.
func (e *ProcessingLogEntry) Duration() time.Duration {
	if e.CompletedAt.IsZero() {
		return 0
	}
	return e.CompletedAt.Sub(e.StartedAt)
}

// Finished reports whether the run has reached a terminal status.
func (e *ProcessingLogEntry) Finished() bool {
	switch e.Status {
	case RunStatusCompleted, RunStatusFailed, RunStatusPartial:
		return true
	}
	return false
}
