package logger

import (
	"context"
	"fmt"
	"io"
)

// secretMaskingLogger formats every message and masks credentials before the
// inner logger sees it.
type secretMaskingLogger struct {
	inner AdaptorLogger
}

var _ AdaptorLogger = (*secretMaskingLogger)(nil)

func newSecretMaskingLogger(inner AdaptorLogger) *secretMaskingLogger {
	if inner == nil {
		panic("inner logger cannot be nil")
	}
	return &secretMaskingLogger{inner: inner}
}

// Unwrap returns the inner logger.
func (l *secretMaskingLogger) Unwrap() interface{} {
	return l.inner
}

func maskf(format string, args ...interface{}) string {
	return MaskSecrets(fmt.Sprintf(format, args...))
}

// maskValue keeps non-string field values intact unless their printed form
// contains a secret.
func maskValue(value interface{}) interface{} {
	if str, ok := value.(string); ok {
		return MaskSecrets(str)
	}
	printed := fmt.Sprint(value)
	if masked := MaskSecrets(printed); masked != printed {
		return masked
	}
	return value
}

func (l *secretMaskingLogger) Tracef(format string, args ...interface{}) {
	l.inner.Trace(maskf(format, args...))
}

func (l *secretMaskingLogger) Debugf(format string, args ...interface{}) {
	l.inner.Debug(maskf(format, args...))
}

func (l *secretMaskingLogger) Infof(format string, args ...interface{}) {
	l.inner.Info(maskf(format, args...))
}

func (l *secretMaskingLogger) Warnf(format string, args ...interface{}) {
	l.inner.Warn(maskf(format, args...))
}

func (l *secretMaskingLogger) Errorf(format string, args ...interface{}) {
	l.inner.Error(maskf(format, args...))
}

func (l *secretMaskingLogger) Fatalf(format string, args ...interface{}) {
	l.inner.Fatal(maskf(format, args...))
}

func (l *secretMaskingLogger) Trace(msg string) { l.inner.Trace(MaskSecrets(msg)) }
func (l *secretMaskingLogger) Debug(msg string) { l.inner.Debug(MaskSecrets(msg)) }
func (l *secretMaskingLogger) Info(msg string)  { l.inner.Info(MaskSecrets(msg)) }
func (l *secretMaskingLogger) Warn(msg string)  { l.inner.Warn(MaskSecrets(msg)) }
func (l *secretMaskingLogger) Error(msg string) { l.inner.Error(MaskSecrets(msg)) }
func (l *secretMaskingLogger) Fatal(msg string) { l.inner.Fatal(MaskSecrets(msg)) }

func (l *secretMaskingLogger) WithField(key string, value interface{}) LogEntry {
	return &secretMaskingEntry{inner: l.inner.WithField(key, maskValue(value))}
}

func (l *secretMaskingLogger) WithFields(fields map[string]any) LogEntry {
	masked := make(map[string]any, len(fields))
	for k, v := range fields {
		masked[k] = maskValue(v)
	}
	return &secretMaskingEntry{inner: l.inner.WithFields(masked)}
}

func (l *secretMaskingLogger) WithContext(ctx context.Context) LogEntry {
	return &secretMaskingEntry{inner: l.inner.WithContext(ctx)}
}

func (l *secretMaskingLogger) SetLogLevel(level string) error {
	return l.inner.SetLogLevel(level)
}

func (l *secretMaskingLogger) GetLogLevel() string {
	return l.inner.GetLogLevel()
}

func (l *secretMaskingLogger) SetOutput(output io.Writer) {
	l.inner.SetOutput(output)
}

type secretMaskingEntry struct {
	inner LogEntry
}

var _ LogEntry = (*secretMaskingEntry)(nil)

func (e *secretMaskingEntry) Tracef(format string, args ...interface{}) {
	e.inner.Trace(maskf(format, args...))
}

func (e *secretMaskingEntry) Debugf(format string, args ...interface{}) {
	e.inner.Debug(maskf(format, args...))
}

func (e *secretMaskingEntry) Infof(format string, args ...interface{}) {
	e.inner.Info(maskf(format, args...))
}

func (e *secretMaskingEntry) Warnf(format string, args ...interface{}) {
	e.inner.Warn(maskf(format, args...))
}

func (e *secretMaskingEntry) Errorf(format string, args ...interface{}) {
	e.inner.Error(maskf(format, args...))
}

func (e *secretMaskingEntry) Fatalf(format string, args ...interface{}) {
	e.inner.Fatal(maskf(format, args...))
}

func (e *secretMaskingEntry) Trace(msg string) { e.inner.Trace(MaskSecrets(msg)) }
func (e *secretMaskingEntry) Debug(msg string) { e.inner.Debug(MaskSecrets(msg)) }
func (e *secretMaskingEntry) Info(msg string)  { e.inner.Info(MaskSecrets(msg)) }
func (e *secretMaskingEntry) Warn(msg string)  { e.inner.Warn(MaskSecrets(msg)) }
func (e *secretMaskingEntry) Error(msg string) { e.inner.Error(MaskSecrets(msg)) }
func (e *secretMaskingEntry) Fatal(msg string) { e.inner.Fatal(MaskSecrets(msg)) }
