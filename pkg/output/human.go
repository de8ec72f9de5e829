package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"nasdate/pkg/models"
)

// timeLayout is how timestamps are shown to the user
const timeLayout = "2006-01-02 15:04:05"

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer     io.Writer
	totalFiles int
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, totalFiles int) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.totalFiles = totalFiles

	fmt.Fprintf(writer, "Processing %d file(s)\n", totalFiles)
	return nil
}

// Result prints one per-file line as results land
func (f *HumanFormatter) Result(index, total int, result models.TransactionResult) error {
	if f.writer == nil {
		return nil
	}

	switch result.Outcome {
	case models.OutcomeCommitted:
		fmt.Fprintf(f.writer, "[%d/%d] ✓ %s → %s\n",
			index+1, total, result.Path, result.Applied.Format(timeLayout))
	case models.OutcomeRolledBack:
		fmt.Fprintf(f.writer, "[%d/%d] ↩ %s rolled back: %v\n",
			index+1, total, result.Path, result.Err)
	default:
		if result.ManualIntervention {
			fmt.Fprintf(f.writer, "[%d/%d] ‼ %s FAILED, MANUAL INTERVENTION REQUIRED: %v\n",
				index+1, total, result.Path, result.Err)
		} else {
			fmt.Fprintf(f.writer, "[%d/%d] ✗ %s: %v\n",
				index+1, total, result.Path, result.Err)
		}
	}
	return nil
}

// Complete prints the summary
func (f *HumanFormatter) Complete(report *models.BatchReport) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Completed in %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Summary:\n")
	fmt.Fprintf(f.writer, "  Files:        %d\n", report.Stats.Files)
	fmt.Fprintf(f.writer, "  Committed:    %d\n", report.Stats.Committed)
	fmt.Fprintf(f.writer, "  Rolled back:  %d\n", report.Stats.RolledBack)
	fmt.Fprintf(f.writer, "  Failed:       %d\n", report.Stats.Failed)
	if report.Stats.Retries > 0 {
		fmt.Fprintf(f.writer, "  Retries:      %d\n", report.Stats.Retries)
	}
	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Status: %s\n", report.Status)

	if report.Stats.ManualIntervention > 0 {
		fmt.Fprintf(f.writer, "\nWARNING: %d file(s) could not be rolled back and may be in an\n", report.Stats.ManualIntervention)
		fmt.Fprintf(f.writer, "inconsistent state. Check these manually:\n")
		for _, r := range report.Results {
			if r.ManualIntervention {
				fmt.Fprintf(f.writer, "  %s: %v\n", r.Path, r.Err)
			}
		}
	}

	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	w := f.writer
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}
