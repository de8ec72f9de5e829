package transaction

import (
	"context"
	"sync"
)

// PathLocks serializes transactions per file path. Locks are created on
// demand and reclaimed once no transaction references them, so the map
// never grows with the total number of files ever touched.
type PathLocks struct {
	mu      sync.Mutex
	entries map[string]*pathEntry
}

type pathEntry struct {
	sem  chan struct{}
	refs int
}

// NewPathLocks creates an empty lock table
func NewPathLocks() *PathLocks {
	return &PathLocks{entries: make(map[string]*pathEntry)}
}

// Lock acquires the exclusive gate for path, waiting for any in-flight
// transaction on the same path to reach a terminal state. The returned
// release function must be called on every exit path.
func (l *PathLocks) Lock(ctx context.Context, path string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.entries[path]
	if !ok {
		entry = &pathEntry{sem: make(chan struct{}, 1)}
		l.entries[path] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(path, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			<-entry.sem
			l.unref(path, entry)
		})
	}
	return release, nil
}

func (l *PathLocks) unref(path string, entry *pathEntry) {
	l.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, path)
	}
	l.mu.Unlock()
}

// Len returns the number of live lock entries
func (l *PathLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
