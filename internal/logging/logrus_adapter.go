package logging

import (
	"github.com/sirupsen/logrus"
)

// LogrusAdapter implements Logger on top of logrus, so the CLI can keep a
// single configured logrus instance while components only see the
// abstraction.
type LogrusAdapter struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

// NewLogrusAdapter creates a logrus-backed Logger with the given level
// ("debug", "info", "warn", "error") and format ("text" or "json"). An
// unknown level falls back to info.
func NewLogrusAdapter(level, format string) Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &LogrusAdapter{
		logger: logger,
		entry:  logrus.NewEntry(logger),
	}
}

// NewLogrusAdapterFromLogger wraps an already configured logrus.Logger.
// This is how the CLI hands its root logger to injected components.
func NewLogrusAdapterFromLogger(logger *logrus.Logger) Logger {
	if logger == nil {
		logger = logrus.New()
	}
	return &LogrusAdapter{
		logger: logger,
		entry:  logrus.NewEntry(logger),
	}
}

// Debug logs a debug-level message with optional fields
func (l *LogrusAdapter) Debug(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Debug(msg)
}

// Info logs an info-level message with optional fields
func (l *LogrusAdapter) Info(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Info(msg)
}

// Warn logs a warning-level message with optional fields
func (l *LogrusAdapter) Warn(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Warn(msg)
}

// Error logs an error-level message with optional fields
func (l *LogrusAdapter) Error(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Error(msg)
}

// WithError returns a new logger with an error field attached
func (l *LogrusAdapter) WithError(err error) Logger {
	return &LogrusAdapter{
		logger: l.logger,
		entry:  l.entry.WithError(err),
	}
}

// WithField returns a new logger with a single field attached
func (l *LogrusAdapter) WithField(key string, value interface{}) Logger {
	return &LogrusAdapter{
		logger: l.logger,
		entry:  l.entry.WithField(key, value),
	}
}

// WithFields returns a new logger with multiple fields attached
func (l *LogrusAdapter) WithFields(fields ...Field) Logger {
	return &LogrusAdapter{
		logger: l.logger,
		entry:  l.entry.WithFields(convertFields(fields)),
	}
}

// convertFields converts our Field slice to logrus.Fields map
func convertFields(fields []Field) logrus.Fields {
	logrusFields := make(logrus.Fields, len(fields))
	for _, field := range fields {
		logrusFields[field.Key] = field.Value
	}
	return logrusFields
}
