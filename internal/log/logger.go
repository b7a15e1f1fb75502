// SPDX-License-Identifier: MIT

// Package log is the tuner's process-wide leveled logger. Components prefix
// their messages with their own name ("Engine: ...", "Capture: ...") the
// same way across the code base.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel defines the severity of a log message.
type LogLevel uint32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the upper-case name of the level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name (case-insensitive) to a LogLevel.
// Unknown names yield LevelInfo and false.
func ParseLevel(levelStr string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

var currentLevel atomic.Uint32

// The logger pointer is swapped by SetOutput while audio callbacks may be
// logging, so it is held atomically.
var logger atomic.Pointer[stdlog.Logger]

func init() {
	SetOutput(os.Stderr)
	SetLevel(LevelInfo)
}

// SetOutput redirects all log output. The TUI points this at a file so
// log lines do not tear the alternate screen.
func SetOutput(w io.Writer) {
	logger.Store(stdlog.New(w, "", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds))
}

// SetLevel sets the global logging level.
func SetLevel(level LogLevel) {
	currentLevel.Store(uint32(level))
}

// GetLevel returns the global logging level.
func GetLevel() LogLevel {
	return LogLevel(currentLevel.Load())
}

// Enabled reports whether messages at level are currently emitted. Hot
// paths check it before building expensive arguments.
func Enabled(level LogLevel) bool {
	return level >= GetLevel()
}

func output(level LogLevel, msg string) {
	if !Enabled(level) {
		return
	}
	// Pad to align five-letter levels with four-letter ones.
	pad := ""
	if len(level.String()) == 4 {
		pad = " "
	}
	logger.Load().Printf("[%s]%s %s", level, pad, msg)
}

// Debugf logs a formatted debug message.
func Debugf(format string, v ...any) {
	if Enabled(LevelDebug) {
		output(LevelDebug, fmt.Sprintf(format, v...))
	}
}

// Infof logs a formatted info message.
func Infof(format string, v ...any) {
	if Enabled(LevelInfo) {
		output(LevelInfo, fmt.Sprintf(format, v...))
	}
}

// Warnf logs a formatted warning.
func Warnf(format string, v ...any) {
	if Enabled(LevelWarn) {
		output(LevelWarn, fmt.Sprintf(format, v...))
	}
}

// Errorf logs a formatted error.
func Errorf(format string, v ...any) {
	if Enabled(LevelError) {
		output(LevelError, fmt.Sprintf(format, v...))
	}
}

// Fatalf logs regardless of level and exits with status 1.
func Fatalf(format string, v ...any) {
	logger.Load().Fatalf("[%s] %s", LevelFatal, fmt.Sprintf(format, v...))
}

func Debug(v ...any) { output(LevelDebug, fmt.Sprint(v...)) }
func Info(v ...any)  { output(LevelInfo, fmt.Sprint(v...)) }
func Warn(v ...any)  { output(LevelWarn, fmt.Sprint(v...)) }
func Error(v ...any) { output(LevelError, fmt.Sprint(v...)) }

// Fatal logs regardless of level and exits with status 1.
func Fatal(v ...any) {
	logger.Load().Fatalf("[%s] %s", LevelFatal, fmt.Sprint(v...))
}
