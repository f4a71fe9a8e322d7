package logger

import (
	"errors"
	"log"
	"sync"
)

var (
	loggerAccessorMu sync.Mutex
	// globalLogger is levelFiltering → secretMasking → raw logger.
	globalLogger AdaptorLogger
)

// GetLogger returns the global logger for use by internal packages.
func GetLogger() AdaptorLogger {
	loggerAccessorMu.Lock()
	defer loggerAccessorMu.Unlock()
	return globalLogger
}

// SetLogger installs providedLogger as the raw logger and always wraps it with
// secret masking and level filtering:
//
//	globalLogger = levelFilteringLogger → secretMaskingLogger → rawLogger
//
// Loggers that are already wrapped by this package are unwrapped first so the
// chain is never doubled. A Proxy is rejected since it would recurse forever.
func SetLogger(providedLogger AdaptorLogger) error {
	loggerAccessorMu.Lock()
	defer loggerAccessorMu.Unlock()

	if providedLogger == nil {
		return errors.New("cannot set nil logger")
	}
	if _, isProxy := providedLogger.(*Proxy); isProxy {
		return errors.New("cannot set Proxy as raw logger - it would create infinite recursion")
	}

	raw := providedLogger
	if lf, ok := raw.(*levelFilteringLogger); ok {
		raw = lf.inner
	}
	if sm, ok := raw.(*secretMaskingLogger); ok {
		raw = sm.inner
	}
	globalLogger = newLevelFilteringLogger(newSecretMaskingLogger(raw))
	return nil
}

func init() {
	if err := SetLogger(newRawLogger()); err != nil {
		log.Panicf("cannot set default logger. %v", err)
	}
}

// CreateDefaultLogger creates a new, fully wrapped instance of the default
// logger. It does not modify global state.
func CreateDefaultLogger() AdaptorLogger {
	return newLevelFilteringLogger(newSecretMaskingLogger(newRawLogger()))
}
