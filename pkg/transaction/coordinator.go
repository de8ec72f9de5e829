package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"nasdate/pkg/logging"
	"nasdate/pkg/models"
	"nasdate/pkg/retry"
	"nasdate/pkg/storage"
)

// State tracks one transaction through its lifecycle
type State string

const (
	// StatePending is the initial state, nothing touched yet
	StatePending State = "pending"
	// StateBackedUp means the original timestamps are captured
	StateBackedUp State = "backed_up"
	// StateWritten means the new timestamp has been sent to the share
	StateWritten State = "written"
	// StateVerified means the read-back matched the requested value
	StateVerified State = "verified"
	// StateCommitted is terminal: backup discarded, new state final
	StateCommitted State = "committed"
	// StateRolledBack is terminal: original timestamps restored
	StateRolledBack State = "rolled_back"
	// StateFailed is terminal: failed before mutation, or the rollback
	// itself could not complete
	StateFailed State = "failed"
)

// Request describes one date change
type Request struct {
	// Path of the file on the share
	Path string

	// Target is the timestamp to apply
	Target time.Time

	// SetCreated also sets the creation time where the backend can
	SetCreated bool
}

// Coordinator sequences backup, write, verify and commit-or-rollback
// for one file at a time. Transient connectivity failures on the remote
// calls are retried per the policy; permission and not-found failures
// are not. A transaction that has started writing is always driven to a
// terminal state, even when the surrounding context is cancelled.
type Coordinator struct {
	pool        *storage.Pool
	locks       *PathLocks
	backup      *BackupManager
	writer      *DateWriter
	policy      retry.Policy
	callTimeout time.Duration
	logger      logging.Logger
}

// CoordinatorConfig holds the coordinator's tunables
type CoordinatorConfig struct {
	// Policy bounds retries of transient failures (zero value = no retry)
	Policy retry.Policy

	// CallTimeout bounds each remote call; past it the attempt counts
	// as a transient failure (0 = no per-call timeout)
	CallTimeout time.Duration
}

// NewCoordinator creates a coordinator running transactions over
// connections from pool
func NewCoordinator(pool *storage.Pool, backup *BackupManager, cfg CoordinatorConfig, logger logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if cfg.Policy.MaxAttempts < 1 {
		cfg.Policy = retry.None()
	}
	return &Coordinator{
		pool:        pool,
		locks:       NewPathLocks(),
		backup:      backup,
		writer:      &DateWriter{},
		policy:      cfg.Policy,
		callTimeout: cfg.CallTimeout,
		logger:      logger,
	}
}

// Run executes one transaction and returns its immutable result. Errors
// are always folded into the result, never returned past this boundary.
func (c *Coordinator) Run(ctx context.Context, req Request) models.TransactionResult {
	start := time.Now()
	result := models.TransactionResult{
		ID:   uuid.New().String(),
		Path: req.Path,
	}
	log := c.logger.WithFields(logging.Fields{
		"transaction": result.ID,
		"path":        req.Path,
	})

	finish := func(outcome models.Outcome, err error) models.TransactionResult {
		result.Outcome = outcome
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	// Reject unrepresentable timestamps before touching anything
	if err := c.writer.Validate(req.Target); err != nil {
		log.Warn(ctx, "rejected target timestamp", logging.Fields{"target": req.Target})
		return finish(models.OutcomeFailed, err)
	}

	// Serialize against other transactions on the same path
	release, err := c.locks.Lock(ctx, req.Path)
	if err != nil {
		return finish(models.OutcomeFailed, err)
	}
	defer release()

	var finalErr error
	lease, err := c.pool.Acquire(ctx)
	if err != nil {
		log.Error(ctx, "could not acquire connection", err, nil)
		return finish(models.OutcomeFailed, err)
	}
	defer func() { lease.Release(finalErr) }()

	state := StatePending
	log.Debug(ctx, "transaction started", logging.Fields{"target": req.Target})

	// Pending -> BackedUp: capture original timestamps. A failure here
	// means nothing was mutated, so there is nothing to roll back.
	var record *BackupRecord
	attempts, err := c.call(ctx, func(ctx context.Context) error {
		var e error
		record, e = c.backup.Begin(ctx, lease, req.Path)
		return e
	})
	result.CountAttempts(attempts)
	if err != nil {
		finalErr = err
		log.Error(ctx, "backup failed", err, logging.Fields{"state": state})
		return finish(models.OutcomeFailed, err)
	}
	state = StateBackedUp

	// BackedUp -> Written: apply the new timestamp
	attempts, err = c.call(ctx, func(ctx context.Context) error {
		return c.writer.Apply(ctx, lease, req.Path, req.Target, req.SetCreated)
	})
	result.CountAttempts(attempts)
	if err != nil {
		finalErr = err
		log.Error(ctx, "write failed, rolling back", err, logging.Fields{"state": state})
		return c.rollback(ctx, lease, record, err, &result, start, log)
	}
	state = StateWritten

	// Written -> Verified: read the timestamp back and compare within
	// the protocol's resolution
	var applied time.Time
	attempts, err = c.call(ctx, func(ctx context.Context) error {
		var e error
		applied, e = c.writer.Verify(ctx, lease, req.Path, req.Target)
		return e
	})
	result.CountAttempts(attempts)
	if err != nil {
		finalErr = err
		log.Error(ctx, "verification failed, rolling back", err, logging.Fields{"state": state})
		return c.rollback(ctx, lease, record, err, &result, start, log)
	}
	state = StateVerified

	// Verified -> Committed: discard the backup. The optional checksum
	// comparison confirms a metadata-only change left the bytes alone.
	if c.backup.Checksum && record.Checksum != "" {
		if same, cerr := c.backup.Matches(ctx, lease, record); cerr != nil {
			log.Warn(ctx, "post-commit checksum could not be read", logging.Fields{"error": cerr.Error()})
		} else if !same {
			log.Warn(ctx, "content checksum changed during transaction", nil)
		}
	}

	state = StateCommitted
	result.Applied = applied
	log.Info(ctx, "transaction committed", logging.Fields{
		"state":    state,
		"applied":  applied,
		"attempts": result.Attempts,
	})
	return finish(models.OutcomeCommitted, nil)
}

// rollback restores the captured timestamps. It runs detached from the
// caller's cancellation: once a write has gone out, the transaction
// must reach a terminal state rather than leave the file half-changed.
func (c *Coordinator) rollback(ctx context.Context, backend storage.Backend, record *BackupRecord, cause error, result *models.TransactionResult, start time.Time, log logging.Logger) models.TransactionResult {
	rctx := context.WithoutCancel(ctx)
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(rctx, c.callTimeout)
		defer cancel()
	}

	// Restore is deliberately not retried: if it failed the file may be
	// in an inconsistent state, and blind retries could mask that.
	if rerr := c.backup.Restore(rctx, backend, record); rerr != nil {
		restoreErr := &RestoreError{Path: record.Path, Cause: cause, RestoreErr: rerr}
		log.Error(rctx, "rollback failed, manual intervention required", restoreErr, nil)
		result.Outcome = models.OutcomeFailed
		result.Err = restoreErr
		result.ManualIntervention = true
		result.Duration = time.Since(start)
		return *result
	}

	log.Info(rctx, "rolled back to original timestamps", logging.Fields{
		"modified": record.Timestamps.Modified,
	})
	result.Outcome = models.OutcomeRolledBack
	result.Err = cause
	result.Duration = time.Since(start)
	return *result
}

// call applies the per-call timeout and the retry policy to one remote
// call site
func (c *Coordinator) call(ctx context.Context, fn func(context.Context) error) (int, error) {
	return c.policy.Do(ctx, transient, func(ctx context.Context) error {
		if c.callTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
			defer cancel()
		}
		return fn(ctx)
	})
}

// transient reports whether an error is worth retrying: connectivity
// failures and per-call timeouts, nothing else
func transient(err error) bool {
	return storage.Transient(err) || errors.Is(err, context.DeadlineExceeded)
}
