package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// rawLogger is the default AdaptorLogger, backed by logrus.
type rawLogger struct {
	mu    sync.Mutex
	inner *logrus.Logger
	off   bool
	file  *os.File
}

var (
	_ AdaptorLogger      = (*rawLogger)(nil)
	_ EasyLoggingSupport = (*rawLogger)(nil)
)

func newRawLogger() *rawLogger {
	inner := logrus.New()
	inner.SetOutput(os.Stderr)
	inner.SetLevel(logrus.InfoLevel)
	inner.SetReportCaller(true)
	inner.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		CallerPrettyfier: formatCaller,
	})
	return &rawLogger{inner: inner}
}

// formatCaller shortens the caller to package.func and file:line.
func formatCaller(frame *runtime.Frame) (string, string) {
	return path.Base(frame.Function), fmt.Sprintf("%s:%d", path.Base(frame.File), frame.Line)
}

func (log *rawLogger) SetLogLevel(level string) error {
	lvl, off, err := parseLevel(level)
	if err != nil {
		return fmt.Errorf("error while setting log level. %v", err)
	}
	log.mu.Lock()
	defer log.mu.Unlock()
	log.off = off
	if !off {
		log.inner.SetLevel(lvl)
	}
	return nil
}

func (log *rawLogger) GetLogLevel() string {
	log.mu.Lock()
	defer log.mu.Unlock()
	if log.off {
		return levelOff
	}
	if log.inner.GetLevel() == logrus.WarnLevel {
		return "warn"
	}
	return log.inner.GetLevel().String()
}

func (log *rawLogger) SetOutput(output io.Writer) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.inner.SetOutput(output)
}

// CloseFileOnLoggerReplace records file as the current log file and closes
// the previous one.
func (log *rawLogger) CloseFileOnLoggerReplace(file *os.File) error {
	log.mu.Lock()
	defer log.mu.Unlock()
	previous := log.file
	log.file = file
	if previous != nil && previous != file {
		return previous.Close()
	}
	return nil
}

func (log *rawLogger) entry() *logrus.Entry {
	return logrus.NewEntry(log.inner)
}

func (log *rawLogger) isOff() bool {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.off
}

func (log *rawLogger) WithField(key string, value interface{}) LogEntry {
	return &logrusEntry{owner: log, entry: log.entry().WithField(key, value)}
}

func (log *rawLogger) WithFields(fields map[string]any) LogEntry {
	return &logrusEntry{owner: log, entry: log.entry().WithFields(fields)}
}

func (log *rawLogger) WithContext(ctx context.Context) LogEntry {
	return &logrusEntry{owner: log, entry: log.entry().WithContext(ctx).WithFields(contextFields(ctx))}
}

func (log *rawLogger) Tracef(format string, args ...interface{}) { log.plain().Tracef(format, args...) }
func (log *rawLogger) Debugf(format string, args ...interface{}) { log.plain().Debugf(format, args...) }
func (log *rawLogger) Infof(format string, args ...interface{})  { log.plain().Infof(format, args...) }
func (log *rawLogger) Warnf(format string, args ...interface{})  { log.plain().Warnf(format, args...) }
func (log *rawLogger) Errorf(format string, args ...interface{}) { log.plain().Errorf(format, args...) }
func (log *rawLogger) Fatalf(format string, args ...interface{}) { log.plain().Fatalf(format, args...) }

func (log *rawLogger) Trace(msg string) { log.plain().Trace(msg) }
func (log *rawLogger) Debug(msg string) { log.plain().Debug(msg) }
func (log *rawLogger) Info(msg string)  { log.plain().Info(msg) }
func (log *rawLogger) Warn(msg string)  { log.plain().Warn(msg) }
func (log *rawLogger) Error(msg string) { log.plain().Error(msg) }
func (log *rawLogger) Fatal(msg string) { log.plain().Fatal(msg) }

func (log *rawLogger) plain() *logrusEntry {
	return &logrusEntry{owner: log, entry: log.entry()}
}

// logrusEntry suppresses output while the owner is switched off.
type logrusEntry struct {
	owner *rawLogger
	entry *logrus.Entry
}

func (e *logrusEntry) Tracef(format string, args ...interface{}) {
	if !e.owner.isOff() {
		e.entry.Tracef(format, args...)
	}
}

func (e *logrusEntry) Debugf(format string, args ...interface{}) {
	if !e.owner.isOff() {
		e.entry.Debugf(format, args...)
	}
}

func (e *logrusEntry) Infof(format string, args ...interface{}) {
	if !e.owner.isOff() {
		e.entry.Infof(format, args...)
	}
}

func (e *logrusEntry) Warnf(format string, args ...interface{}) {
	if !e.owner.isOff() {
		e.entry.Warnf(format, args...)
	}
}

func (e *logrusEntry) Errorf(format string, args ...interface{}) {
	if !e.owner.isOff() {
		e.entry.Errorf(format, args...)
	}
}

func (e *logrusEntry) Fatalf(format string, args ...interface{}) {
	e.entry.Fatalf(format, args...)
}

func (e *logrusEntry) Trace(msg string) {
	if !e.owner.isOff() {
		e.entry.Trace(msg)
	}
}

func (e *logrusEntry) Debug(msg string) {
	if !e.owner.isOff() {
		e.entry.Debug(msg)
	}
}

func (e *logrusEntry) Info(msg string) {
	if !e.owner.isOff() {
		e.entry.Info(msg)
	}
}

func (e *logrusEntry) Warn(msg string) {
	if !e.owner.isOff() {
		e.entry.Warn(msg)
	}
}

func (e *logrusEntry) Error(msg string) {
	if !e.owner.isOff() {
		e.entry.Error(msg)
	}
}

func (e *logrusEntry) Fatal(msg string) {
	e.entry.Fatal(msg)
}
