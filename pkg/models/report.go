package models

import (
	"time"
)

// BatchReport represents the results of a batch date-change run
type BatchReport struct {
	// Operation details
	OperationID string
	Share       string
	Target      time.Time

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Results holds one entry per input file, in input order,
	// regardless of completion order
	Results []TransactionResult

	// Statistics
	Stats Statistics

	// Overall status
	Status BatchStatus
}

// Statistics holds aggregate counts for a batch run
type Statistics struct {
	Files              int
	Committed          int
	RolledBack         int
	Failed             int
	ManualIntervention int
	Retries            int
}

// BatchStatus represents the overall result of a batch
type BatchStatus string

const (
	// StatusSuccess indicates every transaction committed
	StatusSuccess BatchStatus = "success"
	// StatusPartial indicates some transactions failed or rolled back
	StatusPartial BatchStatus = "partial"
	// StatusFailed indicates no transaction committed
	StatusFailed BatchStatus = "failed"
	// StatusCancelled indicates the batch was cancelled before completion
	StatusCancelled BatchStatus = "cancelled"
)

// ExitCode returns the appropriate process exit code for the batch status
func (s BatchStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}

// Add records one transaction result at the given input index and
// updates the aggregate counts.
func (r *BatchReport) Add(index int, result TransactionResult) {
	r.Results[index] = result

	switch result.Outcome {
	case OutcomeCommitted:
		r.Stats.Committed++
	case OutcomeRolledBack:
		r.Stats.RolledBack++
	case OutcomeFailed:
		r.Stats.Failed++
	}
	if result.ManualIntervention {
		r.Stats.ManualIntervention++
	}
	r.Stats.Retries += result.Retries
}

// Finalize computes the overall status once all results are in.
func (r *BatchReport) Finalize(cancelled bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)

	switch {
	case cancelled:
		r.Status = StatusCancelled
	case r.Stats.Committed == r.Stats.Files:
		r.Status = StatusSuccess
	case r.Stats.Committed == 0 && r.Stats.Files > 0:
		r.Status = StatusFailed
	default:
		r.Status = StatusPartial
	}
}
