package logging

import (
	"fmt"
	"log/slog"
	"os"
)

// DebugEnv forces debug logging when set to any non-empty value.
const DebugEnv = "TASKS_DEBUG"

// DebugEnabled returns true if debug mode is enabled via TASKS_DEBUG
func DebugEnabled() bool {
	return os.Getenv(DebugEnv) != ""
}

// Debugf logs a formatted debug message through the default logger.
func Debugf(format string, args ...interface{}) {
	slog.Debug(fmt.Sprintf(format, args...))
}
