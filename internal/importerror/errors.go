// Package importerror defines the structured error types used across the
// import pipeline. Callers discriminate them with errors.As, so every type
// carries the context needed to report the failure without string
// matching: which file, which line, which field, which backend.
package importerror

import "fmt"

// MalformedRowError reports a single CSV row that could not be normalized.
// The row is skipped and the error collected; it never aborts the file.
type MalformedRowError struct {
	File  string
	Line  int
	Field string
	Value string
	Err   error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s line %d: failed to parse %s='%s': %v", e.File, e.Line, e.Field, e.Value, e.Err)
}

func (e *MalformedRowError) Unwrap() error {
	return e.Err
}

// FileReadError reports a source file that could not be opened or whose
// layout could not be recognized at all. The file fails as a unit; other
// files in the same run continue.
type FileReadError struct {
	File string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.File, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// StoreWriteError reports a failed store operation. Op names the operation
// ("insert batch", "stage review", "start run"); File is the source file
// whose persistence failed, when there is one.
type StoreWriteError struct {
	Op   string
	File string
	Err  error
}

func (e *StoreWriteError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s failed for %s: %v", e.Op, e.File, e.Err)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}

// ClassifierError reports a failed AI categorization call. Provider names
// the backend ("openai", "gemini"). The affected rows stay uncategorized
// and are retried on the next run.
type ClassifierError struct {
	Provider string
	Err      error
}

func (e *ClassifierError) Error() string {
	return fmt.Sprintf("%s classification failed: %v", e.Provider, e.Err)
}

func (e *ClassifierError) Unwrap() error {
	return e.Err
}

// ValidationError reports an invalid configuration value or command
// argument.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}
