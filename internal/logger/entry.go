package logger

import "context"

// Entry accumulates metric fields (duration_ms, records, skipped, size)
// before emitting a single log line. Usage:
//
//	logger.With(logger.Fields{logger.FieldRecords: n}).Info(ctx, "Load completed")
type Entry struct {
	fields Fields
}

// With starts a metric entry with the given fields.
func With(fields Fields) *Entry {
	copied := make(Fields, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Entry{fields: copied}
}

// With merges more fields into the entry, returning a new one.
func (e *Entry) With(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{fields: merged}
}

// WithField adds one field to the entry.
func (e *Entry) WithField(key string, value interface{}) *Entry {
	return e.With(Fields{key: value})
}

// WithDuration records an execution duration in milliseconds.
func (e *Entry) WithDuration(ms int64) *Entry {
	return e.WithField(FieldDurationMs, ms)
}

// WithRecords records a processed-record count.
func (e *Entry) WithRecords(count int) *Entry {
	return e.WithField(FieldRecords, count)
}

// WithSkipped records a skipped-line count.
func (e *Entry) WithSkipped(count int) *Entry {
	return e.WithField(FieldSkipped, count)
}

// emit resolves the logger from ctx (falling back to the default) and applies
// the accumulated fields.
func (e *Entry) emit(ctx context.Context) *Logger {
	return FromContext(ctx).WithFields(e.fields)
}

// Debug logs the entry at Debug level.
func (e *Entry) Debug(ctx context.Context, format string, args ...interface{}) {
	e.emit(ctx).Debugf(format, args...)
}

// Info logs the entry at Info level.
func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	e.emit(ctx).Infof(format, args...)
}

// Warn logs the entry at Warn level.
func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	e.emit(ctx).Warnf(format, args...)
}

// Error logs the entry at Error level.
func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	e.emit(ctx).Errorf(format, args...)
}
