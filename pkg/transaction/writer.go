package transaction

import (
	"context"
	"time"

	"nasdate/pkg/storage"
)

// FILETIME bounds. SMB carries timestamps as 100ns ticks since
// 1601-01-01; anything outside this window cannot be stored remotely.
var (
	minTimestamp = time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxTimestamp = time.Date(30828, time.September, 14, 2, 48, 5, 477580700, time.UTC)
)

// DateWriter applies a new modification (and optionally creation)
// timestamp to a remote file and verifies the result
type DateWriter struct{}

// Validate rejects zero timestamps and values the protocol cannot store
func (w *DateWriter) Validate(target time.Time) error {
	if target.IsZero() || target.Before(minTimestamp) || target.After(maxTimestamp) {
		return &RangeError{Value: target}
	}
	return nil
}

// Apply writes the target timestamp to the file's metadata. The creation
// time is also set when requested and the backend supports it.
func (w *DateWriter) Apply(ctx context.Context, backend storage.Backend, path string, target time.Time, setCreated bool) error {
	if err := w.Validate(target); err != nil {
		return err
	}

	ts := storage.Timestamps{Modified: target}
	if setCreated && backend.SupportsCreationTime() {
		ts.Created = target
		ts.HasCreated = true
	}
	return backend.SetTimestamps(ctx, path, ts)
}

// Verify reads the timestamp back and checks it against the requested
// value. Shares commonly truncate sub-second precision, so a read-back
// that matches after truncating both sides to the backend's resolution
// is accepted; the returned time is what the share actually stored.
func (w *DateWriter) Verify(ctx context.Context, backend storage.Backend, path string, target time.Time) (time.Time, error) {
	ts, err := backend.Timestamps(ctx, path)
	if err != nil {
		return time.Time{}, err
	}

	got := ts.Modified
	if got.Equal(target) {
		return got, nil
	}

	res := backend.Resolution()
	if got.Truncate(res).Equal(target.Truncate(res)) {
		return got, nil
	}

	return time.Time{}, &MismatchError{
		Path:       path,
		Requested:  target,
		Observed:   got,
		Resolution: res,
	}
}
