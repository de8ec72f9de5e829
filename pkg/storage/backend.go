package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a file
type FileInfo struct {
	Path         string
	RelativePath string
	Size         int64
	ModTime      time.Time
	IsDir        bool
}

// Timestamps holds the two timestamps a date-change transaction cares
// about. Created is only meaningful when HasCreated is set; not every
// backend can read or write a creation time.
type Timestamps struct {
	Modified   time.Time
	Created    time.Time
	HasCreated bool
}

// Backend defines the interface for remote filesystem operations
// Implementations include local filesystem, SMB, and an in-memory fake
type Backend interface {
	// List returns all files in the specified directory recursively
	List(ctx context.Context, path string) ([]FileInfo, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Timestamps returns the file's current timestamps
	Timestamps(ctx context.Context, path string) (*Timestamps, error)

	// SetTimestamps applies new timestamps to the file. The creation time
	// is only written when ts.HasCreated is set and the backend supports it.
	SetTimestamps(ctx context.Context, path string, ts Timestamps) error

	// Exists checks if a file exists
	Exists(ctx context.Context, path string) (bool, error)

	// Resolution returns the coarsest timestamp granularity the backend
	// stores. Written values are read back truncated to this.
	Resolution() time.Duration

	// SupportsCreationTime reports whether SetTimestamps can write a
	// creation time on this backend
	SupportsCreationTime() bool

	// Close releases any resources held by the backend
	Close() error
}
