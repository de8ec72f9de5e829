package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process backend. It backs the test suites and behaves
// like a share that truncates stored timestamps to its resolution, which
// is the behavior the verification logic exists for.
type Memory struct {
	mu         sync.Mutex
	files      map[string]*memFile
	resolution time.Duration
}

type memFile struct {
	data     []byte
	modified time.Time
	created  time.Time
}

// NewMemory creates an empty in-memory backend with the given timestamp
// resolution (0 = nanoseconds, i.e. no truncation)
func NewMemory(resolution time.Duration) *Memory {
	if resolution <= 0 {
		resolution = time.Nanosecond
	}
	return &Memory{
		files:      make(map[string]*memFile),
		resolution: resolution,
	}
}

// Put stores a file with the given content and modification time
func (m *Memory) Put(path string, data []byte, modified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[clean(path)] = &memFile{
		data:     append([]byte(nil), data...),
		modified: modified,
		created:  modified,
	}
}

// Remove deletes a file, if present
func (m *Memory) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, clean(path))
}

func clean(path string) string {
	return strings.Trim(path, "/")
}

// List returns all files under path
func (m *Memory) List(ctx context.Context, path string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := clean(path)
	var files []FileInfo
	for p, f := range m.files {
		if prefix != "" && !strings.HasPrefix(p, prefix+"/") {
			continue
		}
		files = append(files, FileInfo{
			Path:         p,
			RelativePath: p,
			Size:         int64(len(f.data)),
			ModTime:      f.modified,
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Read opens a file for reading
func (m *Memory) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[clean(path)]
	if !ok {
		return nil, NewError(KindNotFound, "read", path, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(append([]byte(nil), f.data...))), nil
}

// Stat returns file metadata
func (m *Memory) Stat(ctx context.Context, path string) (*FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[clean(path)]
	if !ok {
		return nil, NewError(KindNotFound, "stat", path, os.ErrNotExist)
	}
	return &FileInfo{
		Path:         clean(path),
		RelativePath: clean(path),
		Size:         int64(len(f.data)),
		ModTime:      f.modified,
	}, nil
}

// Timestamps returns the file's current timestamps
func (m *Memory) Timestamps(ctx context.Context, path string) (*Timestamps, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[clean(path)]
	if !ok {
		return nil, NewError(KindNotFound, "timestamps", path, os.ErrNotExist)
	}
	return &Timestamps{
		Modified:   f.modified,
		Created:    f.created,
		HasCreated: true,
	}, nil
}

// SetTimestamps applies new timestamps, truncated to the backend's
// resolution the way a real server would store them
func (m *Memory) SetTimestamps(ctx context.Context, path string, ts Timestamps) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[clean(path)]
	if !ok {
		return NewError(KindNotFound, "set timestamps", path, os.ErrNotExist)
	}
	f.modified = ts.Modified.Truncate(m.resolution)
	if ts.HasCreated {
		f.created = ts.Created.Truncate(m.resolution)
	}
	return nil
}

// Exists checks if a file exists
func (m *Memory) Exists(ctx context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[clean(path)]
	return ok, nil
}

// Resolution returns the configured timestamp granularity
func (m *Memory) Resolution() time.Duration {
	return m.resolution
}

// SupportsCreationTime reports true; the in-memory store keeps one
func (m *Memory) SupportsCreationTime() bool {
	return true
}

// Close releases resources (no-op)
func (m *Memory) Close() error {
	return nil
}
