package logging

import (
	"strings"
	"sync"
)

// MockLogger is a Logger implementation for tests. It records every entry
// so assertions can inspect what the component under test logged. Child
// loggers returned by WithField/WithFields/WithError share the same
// capture buffer.
type MockLogger struct {
	state         *mockState
	pendingError  error
	pendingFields []Field
}

type mockState struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry is a single captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

// NewMockLogger returns an empty mock logger.
func NewMockLogger() *MockLogger {
	return &MockLogger{state: &mockState{}}
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	all := make([]Field, 0, len(m.pendingFields)+len(fields))
	all = append(all, m.pendingFields...)
	all = append(all, fields...)

	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	m.state.entries = append(m.state.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  all,
		Error:   m.pendingError,
	})
}

// Debug records a debug-level entry.
func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("DEBUG", msg, fields) }

// Info records an info-level entry.
func (m *MockLogger) Info(msg string, fields ...Field) { m.record("INFO", msg, fields) }

// Warn records a warn-level entry.
func (m *MockLogger) Warn(msg string, fields ...Field) { m.record("WARN", msg, fields) }

// Error records an error-level entry.
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("ERROR", msg, fields) }

// WithError returns a child logger whose entries carry err.
func (m *MockLogger) WithError(err error) Logger {
	return &MockLogger{
		state:         m.state,
		pendingError:  err,
		pendingFields: m.pendingFields,
	}
}

// WithField returns a child logger whose entries carry the field.
func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return m.WithFields(Field{Key: key, Value: value})
}

// WithFields returns a child logger whose entries carry the fields.
func (m *MockLogger) WithFields(fields ...Field) Logger {
	all := make([]Field, 0, len(m.pendingFields)+len(fields))
	all = append(all, m.pendingFields...)
	all = append(all, fields...)
	return &MockLogger{
		state:         m.state,
		pendingError:  m.pendingError,
		pendingFields: all,
	}
}

// Entries returns a copy of all captured entries.
func (m *MockLogger) Entries() []LogEntry {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	out := make([]LogEntry, len(m.state.entries))
	copy(out, m.state.entries)
	return out
}

// EntriesByLevel returns the captured entries of one level.
func (m *MockLogger) EntriesByLevel(level string) []LogEntry {
	var out []LogEntry
	for _, e := range m.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// HasEntry reports whether an entry with the exact level and message was
// recorded.
func (m *MockLogger) HasEntry(level, message string) bool {
	for _, e := range m.Entries() {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}

// HasEntryContaining reports whether an entry of the level contains the
// substring.
func (m *MockLogger) HasEntryContaining(level, substring string) bool {
	for _, e := range m.Entries() {
		if e.Level == level && strings.Contains(e.Message, substring) {
			return true
		}
	}
	return false
}

// Clear drops all captured entries.
func (m *MockLogger) Clear() {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	m.state.entries = m.state.entries[:0]
}
