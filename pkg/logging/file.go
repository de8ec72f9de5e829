package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// FileConfig holds configuration for file logging
type FileConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// RotateBytes rotates the file when it grows past this size
	// (0 = no rotation)
	RotateBytes int64
	// KeepBackups is how many rotated files to keep
	KeepBackups int
}

// FileLogger implements Logger with file output and size-based rotation
type FileLogger struct {
	config FileConfig
	fields Fields

	mu   sync.Mutex
	file *os.File
	size int64
}

// NewFileLogger opens (or creates) the log file in append mode
func NewFileLogger(config FileConfig) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	return &FileLogger{
		config: config,
		file:   file,
		size:   info.Size(),
	}, nil
}

// Debug logs a debug message
func (l *FileLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.write(DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *FileLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.write(InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (l *FileLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.write(WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (l *FileLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.write(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger that adds fields to every entry. The
// derived logger shares the underlying file.
func (l *FileLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &derivedLogger{parent: l, fields: merged}
}

// Close flushes and closes the log file
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *FileLogger) write(level Level, msg string, err error, fields Fields) {
	l.writeWith(level, msg, err, l.fields, fields)
}

func (l *FileLogger) writeWith(level Level, msg string, err error, base, extra Fields) {
	if level < l.config.Level {
		return
	}

	merged := make(Fields, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}

	var line []byte
	if l.config.Format == FormatJSON {
		line = l.jsonLine(level, msg, err, merged)
	} else {
		line = l.textLine(level, msg, err, merged)
	}
	if line == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}
	if l.config.RotateBytes > 0 && l.size >= l.config.RotateBytes {
		l.rotate()
	}

	n, _ := l.file.Write(line)
	l.size += int64(n)
}

func (l *FileLogger) jsonLine(level Level, msg string, err error, fields Fields) []byte {
	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"level":     LevelString(level),
		"message":   msg,
	}
	if err != nil {
		entry["error"] = err.Error()
	}
	for k, v := range fields {
		entry[k] = v
	}

	data, jsonErr := json.Marshal(entry)
	if jsonErr != nil {
		return nil
	}
	return append(data, '\n')
}

func (l *FileLogger) textLine(level Level, msg string, err error, fields Fields) []byte {
	var b strings.Builder
	b.WriteString(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteString(" [")
	b.WriteString(LevelString(level))
	b.WriteString("] ")
	b.WriteString(msg)

	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}

	// Sorted so text lines are stable for grepping and tests
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	b.WriteByte('\n')
	return []byte(b.String())
}

// rotate must be called with the mutex held
func (l *FileLogger) rotate() {
	l.file.Close()

	keep := l.config.KeepBackups
	if keep < 1 {
		keep = 1
	}

	os.Remove(fmt.Sprintf("%s.%d", l.config.Path, keep))
	for i := keep - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", l.config.Path, i), fmt.Sprintf("%s.%d", l.config.Path, i+1))
	}
	os.Rename(l.config.Path, l.config.Path+".1")

	file, err := os.OpenFile(l.config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		l.file = nil
		return
	}
	l.file = file
	l.size = 0
}

// derivedLogger carries extra fields while sharing the parent's file
type derivedLogger struct {
	parent *FileLogger
	fields Fields
}

func (d *derivedLogger) Debug(ctx context.Context, msg string, fields Fields) {
	d.parent.writeWith(DebugLevel, msg, nil, d.fields, fields)
}

func (d *derivedLogger) Info(ctx context.Context, msg string, fields Fields) {
	d.parent.writeWith(InfoLevel, msg, nil, d.fields, fields)
}

func (d *derivedLogger) Warn(ctx context.Context, msg string, fields Fields) {
	d.parent.writeWith(WarnLevel, msg, nil, d.fields, fields)
}

func (d *derivedLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	d.parent.writeWith(ErrorLevel, msg, err, d.fields, fields)
}

func (d *derivedLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(d.fields)+len(fields))
	for k, v := range d.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &derivedLogger{parent: d.parent, fields: merged}
}

func (d *derivedLogger) Close() error {
	// The parent owns the file
	return nil
}
