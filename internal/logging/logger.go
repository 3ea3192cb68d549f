// Package logging provides the file-based debug logger shared by the
// runner and the claim coordinator.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DebugLogger writes timestamped debug lines to a log file. A zero or nil
// logger is a no-op, so callers never need to guard their log calls.
type DebugLogger struct {
	mu   sync.Mutex
	file *os.File
}

// New creates a logger writing to path, creating parent directories as
// needed. An empty path returns a no-op logger.
func New(path string) (*DebugLogger, error) {
	if path == "" {
		return &DebugLogger{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l := &DebugLogger{file: f}
	l.Log("=== orp debug log started at %s ===", time.Now().Format(time.RFC3339))
	return l, nil
}

// ForBaseDir creates a logger under <baseDir>/logs/orp-debug.log.
// Returns a no-op logger if the file cannot be opened.
func ForBaseDir(baseDir string) *DebugLogger {
	l, err := New(filepath.Join(baseDir, "logs", "orp-debug.log"))
	if err != nil {
		return &DebugLogger{}
	}
	return l
}

// Nop returns a no-op logger for tests or disabled logging.
func Nop() *DebugLogger {
	return &DebugLogger{}
}

// Log writes a timestamped message. No-op on a nil or fileless logger.
func (l *DebugLogger) Log(format string, args ...interface{}) {
	if l == nil || l.file == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.file, "[%s] %s\n", time.Now().Format("15:04:05.000"), fmt.Sprintf(format, args...))
	l.file.Sync()
}

// Close closes the underlying file. Safe on a nil or no-op logger.
func (l *DebugLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
