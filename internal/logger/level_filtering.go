package logger

import (
	"context"
	"io"
)

// levelFilteringLogger drops messages below the configured level before the
// masking layer formats and scans them.
type levelFilteringLogger struct {
	inner AdaptorLogger
}

var _ AdaptorLogger = (*levelFilteringLogger)(nil)

func newLevelFilteringLogger(inner AdaptorLogger) *levelFilteringLogger {
	if inner == nil {
		panic("inner logger cannot be nil")
	}
	return &levelFilteringLogger{inner: inner}
}

// Unwrap returns the inner logger.
func (l *levelFilteringLogger) Unwrap() interface{} {
	return l.inner
}

func (l *levelFilteringLogger) enabled(messageLevel string) bool {
	return levelRank(messageLevel) >= levelRank(l.inner.GetLogLevel())
}

func (l *levelFilteringLogger) Tracef(format string, args ...interface{}) {
	if l.enabled("trace") {
		l.inner.Tracef(format, args...)
	}
}

func (l *levelFilteringLogger) Debugf(format string, args ...interface{}) {
	if l.enabled("debug") {
		l.inner.Debugf(format, args...)
	}
}

func (l *levelFilteringLogger) Infof(format string, args ...interface{}) {
	if l.enabled("info") {
		l.inner.Infof(format, args...)
	}
}

func (l *levelFilteringLogger) Warnf(format string, args ...interface{}) {
	if l.enabled("warn") {
		l.inner.Warnf(format, args...)
	}
}

func (l *levelFilteringLogger) Errorf(format string, args ...interface{}) {
	if l.enabled("error") {
		l.inner.Errorf(format, args...)
	}
}

func (l *levelFilteringLogger) Fatalf(format string, args ...interface{}) {
	if l.enabled("fatal") {
		l.inner.Fatalf(format, args...)
	}
}

func (l *levelFilteringLogger) Trace(msg string) {
	if l.enabled("trace") {
		l.inner.Trace(msg)
	}
}

func (l *levelFilteringLogger) Debug(msg string) {
	if l.enabled("debug") {
		l.inner.Debug(msg)
	}
}

func (l *levelFilteringLogger) Info(msg string) {
	if l.enabled("info") {
		l.inner.Info(msg)
	}
}

func (l *levelFilteringLogger) Warn(msg string) {
	if l.enabled("warn") {
		l.inner.Warn(msg)
	}
}

func (l *levelFilteringLogger) Error(msg string) {
	if l.enabled("error") {
		l.inner.Error(msg)
	}
}

func (l *levelFilteringLogger) Fatal(msg string) {
	if l.enabled("fatal") {
		l.inner.Fatal(msg)
	}
}

func (l *levelFilteringLogger) WithField(key string, value interface{}) LogEntry {
	return &levelFilteringEntry{parent: l, inner: l.inner.WithField(key, value)}
}

func (l *levelFilteringLogger) WithFields(fields map[string]any) LogEntry {
	return &levelFilteringEntry{parent: l, inner: l.inner.WithFields(fields)}
}

func (l *levelFilteringLogger) WithContext(ctx context.Context) LogEntry {
	return &levelFilteringEntry{parent: l, inner: l.inner.WithContext(ctx)}
}

func (l *levelFilteringLogger) SetLogLevel(level string) error {
	return l.inner.SetLogLevel(level)
}

func (l *levelFilteringLogger) GetLogLevel() string {
	return l.inner.GetLogLevel()
}

func (l *levelFilteringLogger) SetOutput(output io.Writer) {
	l.inner.SetOutput(output)
}

// levelFilteringEntry applies the parent's level to an entry with fields.
type levelFilteringEntry struct {
	parent *levelFilteringLogger
	inner  LogEntry
}

func (e *levelFilteringEntry) Tracef(format string, args ...interface{}) {
	if e.parent.enabled("trace") {
		e.inner.Tracef(format, args...)
	}
}

func (e *levelFilteringEntry) Debugf(format string, args ...interface{}) {
	if e.parent.enabled("debug") {
		e.inner.Debugf(format, args...)
	}
}

func (e *levelFilteringEntry) Infof(format string, args ...interface{}) {
	if e.parent.enabled("info") {
		e.inner.Infof(format, args...)
	}
}

func (e *levelFilteringEntry) Warnf(format string, args ...interface{}) {
	if e.parent.enabled("warn") {
		e.inner.Warnf(format, args...)
	}
}

func (e *levelFilteringEntry) Errorf(format string, args ...interface{}) {
	if e.parent.enabled("error") {
		e.inner.Errorf(format, args...)
	}
}

func (e *levelFilteringEntry) Fatalf(format string, args ...interface{}) {
	if e.parent.enabled("fatal") {
		e.inner.Fatalf(format, args...)
	}
}

func (e *levelFilteringEntry) Trace(msg string) {
	if e.parent.enabled("trace") {
		e.inner.Trace(msg)
	}
}

func (e *levelFilteringEntry) Debug(msg string) {
	if e.parent.enabled("debug") {
		e.inner.Debug(msg)
	}
}

func (e *levelFilteringEntry) Info(msg string) {
	if e.parent.enabled("info") {
		e.inner.Info(msg)
	}
}

func (e *levelFilteringEntry) Warn(msg string) {
	if e.parent.enabled("warn") {
		e.inner.Warn(msg)
	}
}

func (e *levelFilteringEntry) Error(msg string) {
	if e.parent.enabled("error") {
		e.inner.Error(msg)
	}
}

func (e *levelFilteringEntry) Fatal(msg string) {
	if e.parent.enabled("fatal") {
		e.inner.Fatal(msg)
	}
}
