package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// localResolution is what common local filesystems reliably store.
// ext4 and APFS keep nanoseconds, but FAT-formatted media does not,
// so the backend advertises microseconds to stay portable.
const localResolution = time.Microsecond

// Local is a filesystem-based backend, used for mounted shares and tests
type Local struct {
	rootPath string
}

// NewLocal creates a new local filesystem backend rooted at rootPath
func NewLocal(rootPath string) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, wrap("open root", absPath, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{rootPath: absPath}, nil
}

// List returns all files under path recursively
func (l *Local) List(ctx context.Context, path string) ([]FileInfo, error) {
	fullPath := filepath.Join(l.rootPath, path)
	var files []FileInfo

	err := filepath.WalkDir(fullPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		relPath, err := filepath.Rel(l.rootPath, p)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, FileInfo{
			Path:         p,
			RelativePath: relPath,
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			IsDir:        info.IsDir(),
		})

		return nil
	})

	if err != nil {
		return nil, wrap("list", path, err)
	}

	return files, nil
}

// Read opens a file for reading
func (l *Local) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(l.rootPath, path))
	if err != nil {
		return nil, wrap("read", path, err)
	}
	return file, nil
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	fullPath := filepath.Join(l.rootPath, path)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, wrap("stat", path, err)
	}

	return &FileInfo{
		Path:         fullPath,
		RelativePath: path,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		IsDir:        info.IsDir(),
	}, nil
}

// Timestamps returns the file's current timestamps. The local backend
// only reports a modification time; creation time is not portable.
func (l *Local) Timestamps(ctx context.Context, path string) (*Timestamps, error) {
	info, err := os.Stat(filepath.Join(l.rootPath, path))
	if err != nil {
		return nil, wrap("timestamps", path, err)
	}
	return &Timestamps{Modified: info.ModTime()}, nil
}

// SetTimestamps applies a new modification time to the file. The access
// time is set to the same value, matching what touch -t does.
func (l *Local) SetTimestamps(ctx context.Context, path string, ts Timestamps) error {
	if err := os.Chtimes(filepath.Join(l.rootPath, path), ts.Modified, ts.Modified); err != nil {
		return wrap("set timestamps", path, err)
	}
	return nil
}

// Exists checks if a file exists
func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(filepath.Join(l.rootPath, path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, wrap("exists", path, err)
}

// Resolution returns the timestamp granularity of the local filesystem
func (l *Local) Resolution() time.Duration {
	return localResolution
}

// SupportsCreationTime reports false: there is no portable way to set a
// creation time through os
func (l *Local) SupportsCreationTime() bool {
	return false
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}
