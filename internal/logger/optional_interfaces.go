package logger

import "os"

// EasyLoggingSupport is implemented by loggers that can own a log file opened
// by the client configuration.
type EasyLoggingSupport interface {
	// CloseFileOnLoggerReplace closes file once the logger stops writing to it.
	CloseFileOnLoggerReplace(file *os.File) error
}

// Unwrapper is implemented by every wrapping layer of the logger chain.
type Unwrapper interface {
	Unwrap() interface{}
}
