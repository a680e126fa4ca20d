// Package logging provides the logging abstraction injected into pipeline
// components, keeping them decoupled from the concrete logging framework
// the CLI configures.
package logging

// Logger is the structured logging interface used by the store, the
// importer, the duplicate resolver and the classifier. Implementations
// must be safe for use from multiple goroutines.
type Logger interface {
	// Debug logs a debug-level message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info-level message with optional fields
	Info(msg string, fields ...Field)

	// Warn logs a warning-level message with optional fields
	Warn(msg string, fields ...Field)

	// Error logs an error-level message with optional fields
	Error(msg string, fields ...Field)

	// WithError returns a new logger with an error field attached
	WithError(err error) Logger

	// WithField returns a new logger with a single field attached
	WithField(key string, value interface{}) Logger

	// WithFields returns a new logger with multiple fields attached
	WithFields(fields ...Field) Logger
}

// Field is a key-value pair attached to a log message.
type Field struct {
	Key   string
	Value interface{}
}
