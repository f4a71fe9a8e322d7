package logger

import (
	"github.com/zeeql/pgadaptor/loginterface"
)

// Re-exported so internal packages do not need to import loginterface directly.
type (
	LogEntry             = loginterface.LogEntry
	AdaptorLogger        = loginterface.AdaptorLogger
	ClientLogContextHook = loginterface.ClientLogContextHook
)
