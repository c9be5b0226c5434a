// Package testutil holds shared test doubles.
package testutil

import (
	"sync"

	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
)

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []logging.Field
}

// MockLogger records every log call for assertion. Safe for concurrent use.
type MockLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewMockLogger returns an empty recording logger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(level, msg string, fields []logging.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, LogEntry{Level: level, Message: msg, Fields: fields})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.record("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.record("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.record("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.record("error", msg, fields) }
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.record("fatal", msg, fields) }

func (m *MockLogger) With(_ ...logging.Field) logging.Logger { return m }
func (m *MockLogger) Named(_ string) logging.Logger          { return m }

// Entries returns a copy of everything logged so far.
func (m *MockLogger) Entries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// EntriesAt returns the messages logged at the given level.
func (m *MockLogger) EntriesAt(level string) []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LogEntry
	for _, e := range m.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
