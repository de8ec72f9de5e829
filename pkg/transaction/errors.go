package transaction

import (
	"fmt"
	"time"
)

// RangeError reports a timestamp the remote protocol cannot represent
type RangeError struct {
	Value time.Time
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("timestamp %s is outside the range the protocol can store", e.Value.Format(time.RFC3339))
}

// MismatchError reports a verification read that did not match the
// requested timestamp even after truncating both to the protocol's
// time resolution
type MismatchError struct {
	Path       string
	Requested  time.Time
	Observed   time.Time
	Resolution time.Duration
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("verification mismatch on %s: requested %s, share reports %s (resolution %s)",
		e.Path, e.Requested.Format(time.RFC3339Nano), e.Observed.Format(time.RFC3339Nano), e.Resolution)
}

// RestoreError reports a rollback that could not complete. The file may
// be in an inconsistent state; this is fatal for the transaction, is
// never retried automatically, and must be surfaced to the user.
type RestoreError struct {
	Path string
	// Cause is the failure that triggered the rollback
	Cause error
	// RestoreErr is the failure of the rollback itself
	RestoreErr error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("rollback of %s failed: %v (after: %v); manual intervention required",
		e.Path, e.RestoreErr, e.Cause)
}

func (e *RestoreError) Unwrap() error {
	return e.RestoreErr
}
