package models

import (
	"time"
)

// Outcome represents the terminal outcome of one date-change transaction
type Outcome string

const (
	// OutcomeCommitted indicates the new timestamp was written and verified
	OutcomeCommitted Outcome = "committed"
	// OutcomeRolledBack indicates the write failed and the original
	// timestamps were restored
	OutcomeRolledBack Outcome = "rolled_back"
	// OutcomeFailed indicates the transaction failed before any mutation,
	// or the rollback itself could not complete
	OutcomeFailed Outcome = "failed"
)

// TransactionResult is the immutable outcome of one date-change attempt
type TransactionResult struct {
	// ID is the transaction identifier
	ID string

	// Path is the file the transaction ran against
	Path string

	// Outcome is the terminal outcome
	Outcome Outcome

	// Applied is the timestamp actually stored on commit. It may differ
	// from the requested value by protocol truncation.
	Applied time.Time

	// Err holds the failure for rolled-back and failed transactions
	Err error

	// Attempts is the total number of remote-call attempts the
	// transaction made across its retried steps
	Attempts int

	// Retries is how many of those attempts were repeats after a
	// transient failure. A clean run has zero regardless of how many
	// steps it took.
	Retries int

	// Duration is the wall-clock time the transaction took
	Duration time.Duration

	// ManualIntervention is set when a rollback could not complete and the
	// file may be in an inconsistent state. Such results must be surfaced
	// prominently and are never retried automatically.
	ManualIntervention bool
}

// CountAttempts folds one retried call site into the attempt totals.
// The first attempt of a step is not a retry, only the repeats are.
func (r *TransactionResult) CountAttempts(attempts int) {
	r.Attempts += attempts
	if attempts > 1 {
		r.Retries += attempts - 1
	}
}

// Committed reports whether the transaction committed
func (r *TransactionResult) Committed() bool {
	return r.Outcome == OutcomeCommitted
}

// ErrorMessage returns the error text, or "" for committed transactions
func (r *TransactionResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
