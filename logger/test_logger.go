package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestCtxLogger wraps a CtxZapLogger around an in-memory observer core so
// tests can assert on emitted entries.
type TestCtxLogger struct {
	*CtxZapLogger
	recorded *observer.ObservedLogs
}

// NewTestCtxLogger creates a capturing logger at debug level.
func NewTestCtxLogger() *TestCtxLogger {
	core, recorded := observer.New(zap.DebugLevel)
	cfg := DefaultManagerConfig()
	return &TestCtxLogger{
		CtxZapLogger: &CtxZapLogger{
			base:   zap.New(core),
			module: "test",
			config: &cfg,
		},
		recorded: recorded,
	}
}

// Entries returns everything logged so far.
func (t *TestCtxLogger) Entries() []observer.LoggedEntry {
	return t.recorded.All()
}

// HasLog reports whether a message was logged at the given level.
func (t *TestCtxLogger) HasLog(level, message string) bool {
	for _, e := range t.recorded.All() {
		if e.Level.String() == level && e.Message == message {
			return true
		}
	}
	return false
}

// HasLogWithField reports whether a matching entry carries the field.
func (t *TestCtxLogger) HasLogWithField(level, message, fieldKey string, fieldValue interface{}) bool {
	for _, e := range t.recorded.All() {
		if e.Level.String() != level || e.Message != message {
			continue
		}
		for _, f := range e.Context {
			if f.Key == fieldKey {
				if f.String == fieldValue || f.Interface == fieldValue {
					return true
				}
			}
		}
	}
	return false
}
