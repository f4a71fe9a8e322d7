package logger

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
)

// levelOff disables all output. logrus has no such level so it is tracked
// separately by the raw logger.
const levelOff = "off"

// levelRank orders level names so that the filtering layer can compare them
// without asking logrus. Higher is more severe.
func levelRank(level string) int {
	switch strings.ToLower(level) {
	case "trace":
		return -8
	case "debug":
		return -4
	case "info":
		return 0
	case "warn", "warning":
		return 4
	case "error":
		return 8
	case "fatal":
		return 12
	case levelOff:
		return math.MaxInt
	default:
		return 0
	}
}

// parseLevel maps a level name to a logrus level. "off" is reported via the
// boolean so the caller can disable output entirely.
func parseLevel(level string) (logrus.Level, bool, error) {
	lower := strings.ToLower(strings.TrimSpace(level))
	if lower == levelOff {
		return logrus.PanicLevel, true, nil
	}
	if lower == "warning" {
		lower = "warn"
	}
	lvl, err := logrus.ParseLevel(lower)
	if err != nil {
		return logrus.InfoLevel, false, fmt.Errorf("unknown log level: %v", level)
	}
	return lvl, false, nil
}
