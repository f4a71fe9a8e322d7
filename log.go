package pgadaptor

import (
	loggerinternal "github.com/zeeql/pgadaptor/internal/logger"
	"github.com/zeeql/pgadaptor/loginterface"
)

type contextKey string

// SessionIDKey is the context key of the backend process id of a channel.
const SessionIDKey contextKey = "PGADAPTOR_SESSION_ID"

// SessionUserKey is the context key of the user a channel is connected as.
const SessionUserKey contextKey = "PGADAPTOR_USER"

func init() {
	SetLogKeys(SessionIDKey, SessionUserKey)
	_ = logger.SetLogLevel("error")
}

type (
	// ClientLogContextHook derives one log field from a context.
	ClientLogContextHook = loginterface.ClientLogContextHook
	// LogEntry is a logger bound to fixed fields.
	LogEntry = loginterface.LogEntry
	// AdaptorLogger is the logger contract, see package loginterface.
	AdaptorLogger = loginterface.AdaptorLogger
)

// SetLogKeys replaces the context keys whose values WithContext adds as fields.
func SetLogKeys(keys ...contextKey) {
	values := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		values = append(values, k)
	}
	loggerinternal.SetLogKeys(values)
}

// GetLogKeys returns the context keys set with SetLogKeys.
func GetLogKeys() []contextKey {
	var keys []contextKey
	for _, v := range loggerinternal.GetLogKeys() {
		if k, ok := v.(contextKey); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// RegisterLogContextHook adds the field key, with the value hook computes, to
// every entry created by WithContext.
func RegisterLogContextHook(key string, hook ClientLogContextHook) {
	loggerinternal.RegisterLogContextHook(key, hook)
}

// logger always writes through the current global logger.
var logger AdaptorLogger = loggerinternal.NewLoggerProxy()

// SetLogger replaces the global logger. It is always wrapped with secret
// masking and level filtering.
func SetLogger(inLogger AdaptorLogger) error {
	return loggerinternal.SetLogger(inLogger)
}

// GetLogger returns the package logger.
func GetLogger() AdaptorLogger {
	return logger
}

// CreateDefaultLogger creates a new instance of the default logger. It does
// not modify global state; pass the result to SetLogger to install it.
func CreateDefaultLogger() AdaptorLogger {
	return loggerinternal.CreateDefaultLogger()
}
