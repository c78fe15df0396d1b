// Package logger writes leveled diagnostics for linkcheck to stderr.
//
// Warnings and errors are always printed. Debug and info messages appear
// only in verbose mode (--verbose). A Logger returned by Run prefixes each
// message with a short run ID so interleaved runs can be told apart.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level orders log messages by severity.
type Level int

// Log levels.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the tag printed in front of messages at this level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// shortIDLen is the number of run ID characters shown in prefixes.
const shortIDLen = 8

var (
	mu       sync.RWMutex
	minLevel           = LevelWarn
	output   io.Writer = os.Stderr
)

// SetVerbose lowers the threshold to debug, or restores it to warnings.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelWarn)
}

// IsVerbose returns true if debug messages are printed.
func IsVerbose() bool {
	return Enabled(LevelDebug)
}

// SetLevel sets the lowest level that is printed.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

// Enabled reports whether messages at l are printed.
func Enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= minLevel
}

// SetOutput sets the destination writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Logger prefixes messages with a fixed scope.
type Logger struct {
	prefix string
}

// Run returns a Logger scoped to a validation run.
func Run(id string) *Logger {
	if len(id) > shortIDLen {
		id = id[:shortIDLen]
	}
	return &Logger{prefix: "run " + id + ": "}
}

func (l *Logger) logf(level Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if level < minLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(output, "[%s] %s%s\n", level, l.prefix, strings.TrimRight(msg, "\n"))
}

// Debug prints a debug message in verbose mode.
func (l *Logger) Debug(format string, args ...any) { l.logf(LevelDebug, format, args...) }

// Info prints an informational message in verbose mode.
func (l *Logger) Info(format string, args ...any) { l.logf(LevelInfo, format, args...) }

// Warn prints a warning.
func (l *Logger) Warn(format string, args ...any) { l.logf(LevelWarn, format, args...) }

// Error prints an error.
func (l *Logger) Error(format string, args ...any) { l.logf(LevelError, format, args...) }

var std = &Logger{}

// Debug prints a debug message in verbose mode.
func Debug(format string, args ...any) { std.logf(LevelDebug, format, args...) }

// Info prints an informational message in verbose mode.
func Info(format string, args ...any) { std.logf(LevelInfo, format, args...) }

// Warn prints a warning.
func Warn(format string, args ...any) { std.logf(LevelWarn, format, args...) }

// Error prints an error.
func Error(format string, args ...any) { std.logf(LevelError, format, args...) }
