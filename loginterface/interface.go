// Package loginterface holds the logger contract of the PostgreSQL adaptor.
// Implement AdaptorLogger and pass it to pgadaptor.SetLogger to route the
// adaptor's output into an application logger.
package loginterface

import (
	"context"
	"io"
)

// ClientLogContextHook extracts one log field value from a context. An empty
// result adds no field.
type ClientLogContextHook func(context.Context) string

// LogEntry writes messages carrying a fixed set of fields.
type LogEntry interface {
	Trace(msg string)
	Tracef(format string, args ...interface{})
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	Fatal(msg string)
	Fatalf(format string, args ...interface{})
}

// AdaptorLogger is a LogEntry without fields that can derive entries and be
// reconfigured at runtime. Level names are lowercase, "off" disables output.
type AdaptorLogger interface {
	LogEntry

	WithField(key string, value interface{}) LogEntry
	WithFields(fields map[string]any) LogEntry
	// WithContext adds the registered context keys and hook fields.
	WithContext(ctx context.Context) LogEntry

	SetLogLevel(level string) error
	GetLogLevel() string
	SetOutput(output io.Writer)
}
