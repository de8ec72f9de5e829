package models

import (
	"errors"
	"testing"
	"time"
)

// TestTransactionResult tests the result helpers
func TestTransactionResult(t *testing.T) {
	t.Run("Committed", func(t *testing.T) {
		r := TransactionResult{Outcome: OutcomeCommitted, Applied: time.Now()}
		if !r.Committed() {
			t.Error("Committed() = false for a committed result")
		}
		if r.ErrorMessage() != "" {
			t.Errorf("ErrorMessage() = %q, want empty", r.ErrorMessage())
		}
	})

	t.Run("Failed", func(t *testing.T) {
		r := TransactionResult{Outcome: OutcomeFailed, Err: errors.New("boom")}
		if r.Committed() {
			t.Error("Committed() = true for a failed result")
		}
		if r.ErrorMessage() != "boom" {
			t.Errorf("ErrorMessage() = %q, want boom", r.ErrorMessage())
		}
	})
}

// TestBatchReportAdd tests statistics accumulation
func TestBatchReportAdd(t *testing.T) {
	report := &BatchReport{Results: make([]TransactionResult, 4)}
	report.Stats.Files = 4

	report.Add(0, TransactionResult{Path: "a.pdf", Outcome: OutcomeCommitted, Attempts: 3})
	report.Add(2, TransactionResult{Path: "c.pdf", Outcome: OutcomeCommitted, Attempts: 5, Retries: 2})
	report.Add(1, TransactionResult{Path: "b.pdf", Outcome: OutcomeRolledBack, Err: errors.New("mismatch")})
	report.Add(3, TransactionResult{Path: "d.pdf", Outcome: OutcomeFailed, Err: errors.New("rollback failed"), ManualIntervention: true})

	if report.Results[0].Path != "a.pdf" || report.Results[1].Path != "b.pdf" {
		t.Error("Add() should place results at their input index")
	}
	if report.Stats.Committed != 2 || report.Stats.RolledBack != 1 || report.Stats.Failed != 1 {
		t.Errorf("Stats = %+v, want 2/1/1", report.Stats)
	}
	if report.Stats.ManualIntervention != 1 {
		t.Errorf("ManualIntervention = %d, want 1", report.Stats.ManualIntervention)
	}
	if report.Stats.Retries != 2 {
		t.Errorf("Retries = %d, want 2 (a multi-step run with no repeats adds none)", report.Stats.Retries)
	}
}

// TestCountAttempts tests the attempt and retry bookkeeping
func TestCountAttempts(t *testing.T) {
	var r TransactionResult

	// Three clean single-attempt steps
	r.CountAttempts(1)
	r.CountAttempts(1)
	r.CountAttempts(1)
	if r.Attempts != 3 || r.Retries != 0 {
		t.Errorf("clean run: Attempts = %d, Retries = %d, want 3 and 0", r.Attempts, r.Retries)
	}

	// One step needed two extra tries
	r.CountAttempts(3)
	if r.Attempts != 6 || r.Retries != 2 {
		t.Errorf("after flaky step: Attempts = %d, Retries = %d, want 6 and 2", r.Attempts, r.Retries)
	}
}

// TestBatchReportFinalize tests status derivation
func TestBatchReportFinalize(t *testing.T) {
	build := func(files, committed, failed int) *BatchReport {
		report := &BatchReport{
			StartTime: time.Now().Add(-time.Second),
			Results:   make([]TransactionResult, files),
		}
		report.Stats.Files = files
		i := 0
		for ; i < committed; i++ {
			report.Add(i, TransactionResult{Outcome: OutcomeCommitted})
		}
		for ; i < committed+failed; i++ {
			report.Add(i, TransactionResult{Outcome: OutcomeFailed, Err: errors.New("x")})
		}
		return report
	}

	t.Run("Success", func(t *testing.T) {
		report := build(2, 2, 0)
		report.Finalize(false)
		if report.Status != StatusSuccess {
			t.Errorf("Status = %v, want success", report.Status)
		}
		if report.Duration <= 0 {
			t.Error("Finalize() should compute a positive duration")
		}
	})

	t.Run("Partial", func(t *testing.T) {
		report := build(3, 2, 1)
		report.Finalize(false)
		if report.Status != StatusPartial {
			t.Errorf("Status = %v, want partial", report.Status)
		}
	})

	t.Run("Failed", func(t *testing.T) {
		report := build(2, 0, 2)
		report.Finalize(false)
		if report.Status != StatusFailed {
			t.Errorf("Status = %v, want failed", report.Status)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		report := build(2, 1, 1)
		report.Finalize(true)
		if report.Status != StatusCancelled {
			t.Errorf("Status = %v, want cancelled", report.Status)
		}
	})
}

// TestExitCodes tests the status to exit code mapping
func TestExitCodes(t *testing.T) {
	tests := []struct {
		status BatchStatus
		want   int
	}{
		{StatusSuccess, 0},
		{StatusPartial, 1},
		{StatusFailed, 2},
		{StatusCancelled, 3},
		{BatchStatus("unknown"), 2},
	}
	for _, tt := range tests {
		if got := tt.status.ExitCode(); got != tt.want {
			t.Errorf("ExitCode(%s) = %d, want %d", tt.status, got, tt.want)
		}
	}
}

// TestValidationError tests the error string
func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "server.port", Message: "must be between 1 and 65535"}
	want := "server.port: must be between 1 and 65535"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
