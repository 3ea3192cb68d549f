package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggerWritesTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")

	l, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Log("experiment %s started", "exp_1")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "experiment exp_1 started") {
		t.Errorf("log = %q", data)
	}
}

func TestNopLoggerIsSafe(t *testing.T) {
	var nilLogger *DebugLogger
	nilLogger.Log("must not panic")
	if err := nilLogger.Close(); err != nil {
		t.Errorf("Close() on nil = %v", err)
	}

	nop := Nop()
	nop.Log("also must not panic")
	if err := nop.Close(); err != nil {
		t.Errorf("Close() on nop = %v", err)
	}
}

func TestForBaseDir(t *testing.T) {
	base := t.TempDir()
	l := ForBaseDir(base)
	l.Log("hello")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(base, "logs", "orp-debug.log")); err != nil {
		t.Errorf("expected log file under base dir: %v", err)
	}
}
