package logging

import "context"

// NullLogger discards everything. It stands in for the file logger when
// logging is turned off, so callers never have to nil-check.
type NullLogger struct{}

// NewNullLogger creates a logger that drops all records
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

// Debug discards the record
func (l *NullLogger) Debug(ctx context.Context, msg string, fields Fields) {}

// Info discards the record
func (l *NullLogger) Info(ctx context.Context, msg string, fields Fields) {}

// Warn discards the record
func (l *NullLogger) Warn(ctx context.Context, msg string, fields Fields) {}

// Error discards the record
func (l *NullLogger) Error(ctx context.Context, msg string, err error, fields Fields) {}

// WithFields returns the receiver, there is nothing to attach fields to
func (l *NullLogger) WithFields(fields Fields) Logger {
	return l
}

// Close does nothing
func (l *NullLogger) Close() error {
	return nil
}
