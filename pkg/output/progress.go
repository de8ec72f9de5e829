package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"nasdate/pkg/models"
)

// ProgressFormatter renders a progress bar while results land, then the
// human-readable summary. Falls back to plain line output when stdout
// is not a terminal.
type ProgressFormatter struct {
	mu       sync.Mutex
	writer   io.Writer
	bar      *pb.ProgressBar
	plain    *HumanFormatter
	failures []string
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{}
}

// Start initializes the formatter
func (f *ProgressFormatter) Start(writer io.Writer, totalFiles int) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer

	// A bar on a pipe or redirect just produces control-code noise
	file, isFile := writer.(*os.File)
	if !isFile || !term.IsTerminal(int(file.Fd())) {
		f.plain = NewHumanFormatter()
		return f.plain.Start(writer, totalFiles)
	}

	f.bar = pb.New(totalFiles)
	f.bar.SetWriter(writer)
	f.bar.SetTemplate(pb.Simple)
	if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
		f.bar.SetMaxWidth(width)
	}
	f.bar.Start()
	return nil
}

// Result advances the bar, remembering failures for the summary
func (f *ProgressFormatter) Result(index, total int, result models.TransactionResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.plain != nil {
		return f.plain.Result(index, total, result)
	}

	if !result.Committed() {
		f.failures = append(f.failures, fmt.Sprintf("%s: %v", result.Path, result.Err))
	}
	f.bar.Increment()
	return nil
}

// Complete stops the bar, prints collected failures and the summary
func (f *ProgressFormatter) Complete(report *models.BatchReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.plain != nil {
		return f.plain.Complete(report)
	}

	f.bar.Finish()

	if len(f.failures) > 0 {
		fmt.Fprintf(f.writer, "\nFailures:\n")
		for _, line := range f.failures {
			fmt.Fprintf(f.writer, "  %s\n", line)
		}
	}

	summary := NewHumanFormatter()
	summary.writer = f.writer
	return summary.Complete(report)
}

// Error reports an error
func (f *ProgressFormatter) Error(err error) error {
	w := f.writer
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
