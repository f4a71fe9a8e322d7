package pgadaptor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	loggerinternal "github.com/zeeql/pgadaptor/internal/logger"
)

const (
	logFileName   = "pgadaptor.log"
	logSubdir     = "pgadaptor"
	stdoutLogPath = "STDOUT"
)

// easyLoggingState remembers which client configuration, if any, was applied
// to the default logger.
type easyLoggingState struct {
	mu         sync.Mutex
	attempted  bool
	configFile string
	applied    int
}

var easyLogging easyLoggingState

func (s *easyLoggingState) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempted, s.configFile, s.applied = false, "", 0
}

// mayApply reports whether configFile may still be applied. The first call
// always may. Afterwards only an explicit file may follow a call without one.
func (s *easyLoggingState) mayApply(configFile string) bool {
	if !s.attempted {
		return true
	}
	if s.configFile == "" && configFile != "" {
		return true
	}
	if s.configFile != configFile {
		logger.Warnf("ignoring client config %q, logging was already configured from %q", configFile, s.configFile)
	}
	return false
}

func (s *easyLoggingState) attempt(configFile string) {
	s.attempted = true
	s.configFile = configFile
}

// initClientLogging applies the client configuration to the default logger.
func initClientLogging(configFile string) error {
	easyLogging.mu.Lock()
	defer easyLogging.mu.Unlock()
	if !easyLogging.mayApply(configFile) {
		return nil
	}
	cfg, err := getClientConfig(configFile)
	if err != nil {
		return clientLoggingError(err)
	}
	if cfg != nil {
		if !loggerinternal.IsEasyLoggingLogger(logger) {
			logger.Debug("a custom logger is installed, ignoring the client configuration")
		} else if err = applyClientLogging(cfg.Common); err != nil {
			return clientLoggingError(err)
		} else {
			easyLogging.applied++
		}
	}
	easyLogging.attempt(configFile)
	return nil
}

func applyClientLogging(props *ClientConfigCommonProps) error {
	level, err := clientLogLevel(props.LogLevel)
	if err != nil {
		return err
	}
	dir, err := clientLogDir(props.LogPath)
	if err != nil {
		return err
	}
	if err = logger.SetLogLevel(level); err != nil {
		return err
	}
	w, file, err := openLogOutput(dir)
	if err != nil {
		return err
	}
	logger.SetOutput(w)
	if err = loggerinternal.CloseFileOnLoggerReplace(logger, file); err != nil {
		logger.Errorf("cannot track log file: %v", err)
	}
	return nil
}

func clientLoggingError(err error) error {
	return &AdaptorError{
		Number:      ErrCodeClientConfigFailed,
		Message:     errMsgClientConfigFailed,
		MessageArgs: []interface{}{err.Error()},
		cause:       err,
	}
}

// openLogOutput returns the writer for dir. Files are mirrored to stdout.
func openLogOutput(dir string) (io.Writer, *os.File, error) {
	if strings.EqualFold(dir, stdoutLogPath) {
		return os.Stdout, nil, nil
	}
	file, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, err
	}
	return io.MultiWriter(file, os.Stdout), file, nil
}

func clientLogLevel(level string) (string, error) {
	if level == "" {
		logger.Warn("no log_level in client config, logging stays off")
		return Off, nil
	}
	return toLogLevel(level)
}

// clientLogDir returns the directory log files go to, creating it private to
// the user when missing.
func clientLogDir(logPath string) (string, error) {
	if logPath == "" {
		logPath = os.TempDir()
		logger.Warnf("no log_path in client config, logging to %v", logPath)
	}
	if strings.EqualFold(logPath, stdoutLogPath) {
		return logPath, nil
	}
	dir := filepath.Join(logPath, logSubdir)
	ok, err := isDir(dir)
	if err != nil {
		return "", err
	}
	if ok {
		return dir, nil
	}
	if err = os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("cannot create log directory: %w", err)
	}
	return dir, nil
}

func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
