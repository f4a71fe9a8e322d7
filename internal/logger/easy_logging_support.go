package logger

import (
	"fmt"
	"os"
)

// CloseFileOnLoggerReplace hands file over to the default logger found under
// the wrapping layers of l.
func CloseFileOnLoggerReplace(l interface{}, file *os.File) error {
	if ell, ok := unwrapToEasyLoggingLogger(l); ok {
		return ell.CloseFileOnLoggerReplace(file)
	}
	return fmt.Errorf("logger does not support closeFileOnLoggerReplace")
}

// IsEasyLoggingLogger reports whether l is (a wrapped) default logger, which is
// the only kind the client configuration is allowed to reconfigure.
func IsEasyLoggingLogger(l interface{}) bool {
	_, ok := unwrapToEasyLoggingLogger(l)
	return ok
}

func unwrapToEasyLoggingLogger(l interface{}) (EasyLoggingSupport, bool) {
	current := l
	if _, isProxy := current.(*Proxy); isProxy {
		current = GetLogger()
	}
	for {
		u, ok := current.(Unwrapper)
		if !ok {
			break
		}
		current = u.Unwrap()
	}
	ell, ok := current.(EasyLoggingSupport)
	return ell, ok
}
