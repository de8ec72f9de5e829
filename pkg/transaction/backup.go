package transaction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"nasdate/pkg/ratelimit"
	"nasdate/pkg/storage"
)

// BackupRecord is a snapshot of a file's original timestamps taken
// before mutation. It lives for exactly one transaction: discarded on
// commit, applied back on rollback.
type BackupRecord struct {
	// Path is the file the record belongs to
	Path string

	// Taken is when the snapshot was captured
	Taken time.Time

	// Timestamps are the original timestamps to restore on rollback
	Timestamps storage.Timestamps

	// Size is the file size at snapshot time
	Size int64

	// Checksum is the SHA-256 of the content at snapshot time,
	// empty when checksum capture is disabled
	Checksum string
}

// BackupManager captures and restores pre-mutation snapshots
type BackupManager struct {
	// Checksum enables content checksum capture during Begin
	Checksum bool

	// Limiter rate-limits the checksum read, nil for unlimited
	Limiter *ratelimit.Limiter
}

// Begin captures the file's original timestamps, and its content
// checksum when enabled. Nothing has been mutated yet when Begin fails,
// so its errors need no rollback.
func (m *BackupManager) Begin(ctx context.Context, backend storage.Backend, path string) (*BackupRecord, error) {
	info, err := backend.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	if info.IsDir {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	ts, err := backend.Timestamps(ctx, path)
	if err != nil {
		return nil, err
	}

	record := &BackupRecord{
		Path:       path,
		Taken:      time.Now(),
		Timestamps: *ts,
		Size:       info.Size,
	}

	if m.Checksum {
		sum, err := m.checksum(ctx, backend, path)
		if err != nil {
			return nil, err
		}
		record.Checksum = sum
	}

	return record, nil
}

// Restore reapplies the captured timestamps to the file
func (m *BackupManager) Restore(ctx context.Context, backend storage.Backend, record *BackupRecord) error {
	ts := record.Timestamps
	if !backend.SupportsCreationTime() {
		ts.HasCreated = false
	}
	return backend.SetTimestamps(ctx, record.Path, ts)
}

// Matches re-reads the content checksum and compares it to the one
// captured at Begin. Used as a post-commit sanity check that a
// metadata-only transaction left the bytes alone.
func (m *BackupManager) Matches(ctx context.Context, backend storage.Backend, record *BackupRecord) (bool, error) {
	if record.Checksum == "" {
		return true, nil
	}
	sum, err := m.checksum(ctx, backend, record.Path)
	if err != nil {
		return false, err
	}
	return sum == record.Checksum, nil
}

func (m *BackupManager) checksum(ctx context.Context, backend storage.Backend, p string) (string, error) {
	rc, err := backend.Read(ctx, p)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	reader := ratelimit.NewReader(ctx, rc, m.Limiter)

	h := sha256.New()
	if _, err := io.Copy(h, reader); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
