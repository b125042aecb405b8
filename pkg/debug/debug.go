/*
 * Package debug provides leveled logging for the portal client.
 *
 * Logging is disabled unless the DEBUG environment variable is set to
 * "true" or "1". The minimum level is controlled by LOG_LEVEL
 * (DEBUG, INFO, WARNING, ERROR); invalid or missing values default to INFO.
 */
package debug

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarning
	LevelError
)

var levelNames = map[LogLevel]string{
	LevelDebug:   "DEBUG",
	LevelInfo:    "INFO",
	LevelWarning: "WARNING",
	LevelError:   "ERROR",
}

var (
	// IsEnabled reports whether logging is active
	IsEnabled bool

	// CurrentLevel is the minimum level that will be logged
	CurrentLevel LogLevel

	logger *log.Logger
)

func init() {
	logger = log.New(os.Stderr, "", log.LstdFlags)
	Reinitialize()
}

// Reinitialize re-reads the DEBUG and LOG_LEVEL environment variables.
// Useful for tests that change the environment after package init.
func Reinitialize() {
	debugEnv := os.Getenv("DEBUG")
	IsEnabled = debugEnv == "true" || debugEnv == "1"

	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		CurrentLevel = LevelDebug
	case "WARNING":
		CurrentLevel = LevelWarning
	case "ERROR":
		CurrentLevel = LevelError
	default:
		CurrentLevel = LevelInfo
	}
}

// Log writes a message at the given level if logging is enabled and the
// level passes the current threshold
func Log(level LogLevel, format string, args ...interface{}) {
	if !IsEnabled || level < CurrentLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	logger.Printf("[%s] %s", levelNames[level], msg)
}

// Debug logs a message at DEBUG level
func Debug(format string, args ...interface{}) {
	Log(LevelDebug, format, args...)
}

// Info logs a message at INFO level
func Info(format string, args ...interface{}) {
	Log(LevelInfo, format, args...)
}

// Warning logs a message at WARNING level
func Warning(format string, args ...interface{}) {
	Log(LevelWarning, format, args...)
}

// Error logs a message at ERROR level
func Error(format string, args ...interface{}) {
	Log(LevelError, format, args...)
}
