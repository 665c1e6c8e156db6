package goocio

import (
	"fmt"
	"os"
	"sync/atomic"
)

// LoggingLevel controls what the package writes to stderr.
type LoggingLevel int32

const (
	LoggingLevelNone LoggingLevel = iota
	LoggingLevelWarning
	LoggingLevelInfo
	LoggingLevelDebug
)

var loggingLevel atomic.Int32

func init() {
	loggingLevel.Store(int32(LoggingLevelWarning))
}

// SetLoggingLevel changes the global logging level.
func SetLoggingLevel(level LoggingLevel) {
	loggingLevel.Store(int32(level))
}

// GetLoggingLevel returns the current global logging level.
func GetLoggingLevel() LoggingLevel {
	return LoggingLevel(loggingLevel.Load())
}

// IsDebugLoggingEnabled reports whether LogDebug output is emitted.
func IsDebugLoggingEnabled() bool {
	return GetLoggingLevel() >= LoggingLevelDebug
}

// LogWarning writes a warning diagnostic to stderr.
func LogWarning(format string, args ...any) {
	if GetLoggingLevel() >= LoggingLevelWarning {
		fmt.Fprintf(os.Stderr, "[goocio warning]: %s\n", fmt.Sprintf(format, args...))
	}
}

// LogDebug writes a debug diagnostic to stderr.
func LogDebug(format string, args ...any) {
	if IsDebugLoggingEnabled() {
		fmt.Fprintf(os.Stderr, "[goocio debug]: %s\n", fmt.Sprintf(format, args...))
	}
}
