package output

import (
	"io"

	"nasdate/pkg/models"
)

// Formatter defines the interface for rendering batch progress and
// reports. The core packages emit models values only; all text lives
// here.
// Implementations include human-readable, JSON and progress-bar output
type Formatter interface {
	// Start initializes the formatter for a run over totalFiles files
	Start(writer io.Writer, totalFiles int) error

	// Result reports one per-file result as it lands
	Result(index, total int, result models.TransactionResult) error

	// Complete finalizes output and displays the report summary
	Complete(report *models.BatchReport) error

	// Error reports a run-level error
	Error(err error) error

	// Name returns the formatter name
	Name() string
}
