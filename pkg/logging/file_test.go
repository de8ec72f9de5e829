package logging

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestFileLoggerJSON tests JSON line output
func TestFileLoggerJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	logger, err := NewFileLogger(FileConfig{Path: path, Format: FormatJSON, Level: InfoLevel})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	ctx := context.Background()
	logger.Info(ctx, "transaction committed", Fields{"path": "a.pdf", "attempts": 3})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, data)
	}
	if entry["message"] != "transaction committed" || entry["level"] != "INFO" {
		t.Errorf("entry = %v", entry)
	}
	if entry["path"] != "a.pdf" {
		t.Errorf("field path = %v, want a.pdf", entry["path"])
	}
	if entry["timestamp"] == nil {
		t.Error("entry should carry a timestamp")
	}
}

// TestFileLoggerText tests the text format
func TestFileLoggerText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	logger, err := NewFileLogger(FileConfig{Path: path, Format: FormatText, Level: DebugLevel})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	ctx := context.Background()
	logger.Warn(ctx, "rollback", Fields{"b": 2, "a": 1})
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	line := string(data)

	if !strings.Contains(line, "[WARN] rollback") {
		t.Errorf("line = %q, want level and message", line)
	}
	// Fields come out sorted
	if strings.Index(line, "a=1") > strings.Index(line, "b=2") {
		t.Errorf("line = %q, want sorted fields", line)
	}
}

// TestFileLoggerLevelFiltering tests that low levels are dropped
func TestFileLoggerLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	logger, err := NewFileLogger(FileConfig{Path: path, Format: FormatText, Level: WarnLevel})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	ctx := context.Background()
	logger.Debug(ctx, "dropped", nil)
	logger.Info(ctx, "dropped too", nil)
	logger.Warn(ctx, "kept", nil)
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if strings.Contains(string(data), "dropped") {
		t.Errorf("log = %q, want below-level entries filtered", data)
	}
	if !strings.Contains(string(data), "kept") {
		t.Errorf("log = %q, want warn entry kept", data)
	}
}

// TestWithFields tests derived loggers
func TestWithFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	logger, err := NewFileLogger(FileConfig{Path: path, Format: FormatJSON, Level: InfoLevel})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	ctx := context.Background()
	derived := logger.WithFields(Fields{"transaction": "abc-123"})
	derived.Info(ctx, "started", Fields{"path": "a.pdf"})
	derived.Close() // must not close the parent's file
	logger.Info(ctx, "parent still works", nil)
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("log has %d lines, want 2", len(lines))
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("bad JSON line: %v", err)
	}
	if entry["transaction"] != "abc-123" || entry["path"] != "a.pdf" {
		t.Errorf("entry = %v, want inherited and call fields", entry)
	}
}

// TestFileLoggerRotation tests size-based rotation
func TestFileLoggerRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	logger, err := NewFileLogger(FileConfig{
		Path:        path,
		Format:      FormatText,
		Level:       InfoLevel,
		RotateBytes: 200,
		KeepBackups: 2,
	})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		logger.Info(ctx, "a reasonably long log message to force rotation", nil)
	}
	logger.Close()

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("expected rotated file %s.1: %v", path, err)
	}
	if _, err := os.Stat(path + ".3"); err == nil {
		t.Error("rotation should keep at most 2 backups")
	}
}

// TestParseLevel tests level parsing
func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestNullLogger tests that the null logger swallows everything
func TestNullLogger(t *testing.T) {
	logger := NewNullLogger()
	ctx := context.Background()

	logger.Debug(ctx, "x", nil)
	logger.Info(ctx, "x", Fields{"a": 1})
	logger.Warn(ctx, "x", nil)
	logger.Error(ctx, "x", nil, nil)
	if derived := logger.WithFields(Fields{"a": 1}); derived == nil {
		t.Error("WithFields() returned nil")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
