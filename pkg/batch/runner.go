// Package batch applies the date-change transaction to many files,
// tracking per-file outcomes. Files are independent: one failure never
// aborts or affects the others, and a batch always completes with a
// full report.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"nasdate/pkg/logging"
	"nasdate/pkg/models"
	"nasdate/pkg/transaction"
)

// Request describes one batch run
type Request struct {
	// Share is recorded in the report for display
	Share string

	// Paths are the files to process, in the order the report keeps
	Paths []string

	// Target is the timestamp to apply to every file
	Target time.Time

	// SetCreated also sets creation times where the backend can
	SetCreated bool

	// Concurrency caps how many transactions run at once (min 1)
	Concurrency int
}

// Update is one element of the result stream: the transaction result
// for the file at the given input position
type Update struct {
	Index  int
	Total  int
	Result models.TransactionResult
}

// Runner executes batches of date-change transactions
type Runner struct {
	coordinator *transaction.Coordinator
	logger      logging.Logger
}

// NewRunner creates a batch runner on top of the coordinator
func NewRunner(coordinator *transaction.Coordinator, logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Runner{coordinator: coordinator, logger: logger}
}

// Stream starts the batch and returns a finite stream of per-file
// results: exactly one element per input path, in completion order.
// The channel closes once every file has a terminal result. Not
// restartable. Cancellation stops new files from starting; files
// already inside a transaction run to a terminal state.
func (r *Runner) Stream(ctx context.Context, req Request) <-chan Update {
	workers := req.Concurrency
	if workers < 1 {
		workers = 1
	}

	out := make(chan Update)

	go func() {
		defer close(out)

		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup

		total := len(req.Paths)
		for i, path := range req.Paths {
			// Check for cancellation between files. Skipped files still
			// produce a result so the report stays complete.
			cancelled := ctx.Err() != nil
			if !cancelled {
				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					cancelled = true
				}
			}

			if cancelled {
				out <- Update{
					Index: i,
					Total: total,
					Result: models.TransactionResult{
						Path:    path,
						Outcome: models.OutcomeFailed,
						Err:     ctx.Err(),
					},
				}
				continue
			}

			wg.Add(1)
			go func(index int, p string) {
				defer wg.Done()
				defer func() { <-sem }()

				result := r.coordinator.Run(ctx, transaction.Request{
					Path:       p,
					Target:     req.Target,
					SetCreated: req.SetCreated,
				})
				out <- Update{Index: index, Total: total, Result: result}
			}(i, path)
		}

		wg.Wait()
	}()

	return out
}

// Run executes the batch and returns the complete report, with one
// result per input path in input order regardless of completion order.
// The optional observe callback sees each result as it lands, for
// incremental display.
func (r *Runner) Run(ctx context.Context, req Request, observe func(Update)) *models.BatchReport {
	report := &models.BatchReport{
		OperationID: uuid.New().String(),
		Share:       req.Share,
		Target:      req.Target,
		StartTime:   time.Now(),
		Results:     make([]models.TransactionResult, len(req.Paths)),
	}
	report.Stats.Files = len(req.Paths)

	r.logger.Info(ctx, "batch started", logging.Fields{
		"operation":   report.OperationID,
		"files":       len(req.Paths),
		"target":      req.Target,
		"concurrency": req.Concurrency,
	})

	for update := range r.Stream(ctx, req) {
		report.Add(update.Index, update.Result)
		if observe != nil {
			observe(update)
		}
	}

	report.Finalize(ctx.Err() != nil)

	r.logger.Info(ctx, "batch finished", logging.Fields{
		"operation":   report.OperationID,
		"status":      report.Status,
		"committed":   report.Stats.Committed,
		"rolled_back": report.Stats.RolledBack,
		"failed":      report.Stats.Failed,
	})
	return report
}
