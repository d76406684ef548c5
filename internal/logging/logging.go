// Package logging writes tagged, levelled log lines for the webdeck shell.
//
// Lines go to stderr and, once OpenFile has been called, to a debug log file in
// the user data directory so offline launches can be diagnosed after the fact.
// Debug lines are only written in verbose mode.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DebugLogName is the file name of the debug log inside the data directory.
const DebugLogName = "webdeck-debug.log"

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	logFile *os.File
)

// SetVerbose enables or disables debug output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if debug output is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the primary writer. Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// OpenFile starts mirroring log lines to dir/webdeck-debug.log and returns the
// file path. The file is appended to, never truncated.
func OpenFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(dir, DebugLogName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to open debug log: %w", err)
	}

	mu.Lock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	mu.Unlock()

	fmt.Fprintf(f, "=== webdeck started %s ===\n", time.Now().Format(time.RFC3339))
	return path, nil
}

// Close stops mirroring to the debug log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Level is the severity of a log line.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

func write(level Level, tag, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if level == LevelDebug && !verbose {
		return
	}

	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("%s [%s] [%s] %s\n", time.Now().Format("15:04:05.000"), level, tag, msg)

	if output != nil {
		_, _ = io.WriteString(output, line)
	}
	if logFile != nil {
		_, _ = logFile.WriteString(line)
	}
}

// Logger writes lines carrying a fixed component tag.
type Logger struct {
	tag string
}

// New returns a logger for the given component tag, e.g. "resolver".
func New(tag string) *Logger {
	return &Logger{tag: tag}
}

// Debugf logs at debug level. Dropped unless verbose.
func (l *Logger) Debugf(format string, args ...any) { write(LevelDebug, l.tag, format, args...) }

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) { write(LevelInfo, l.tag, format, args...) }

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...any) { write(LevelWarn, l.tag, format, args...) }

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) { write(LevelError, l.tag, format, args...) }
