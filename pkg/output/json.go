package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"nasdate/pkg/models"
)

// JSONFormatter emits one JSON document describing the whole run, for
// automation and scripting
type JSONFormatter struct {
	writer io.Writer
}

// jsonReport is the wire shape of a batch report
type jsonReport struct {
	OperationID string       `json:"operation_id"`
	Share       string       `json:"share,omitempty"`
	Target      time.Time    `json:"target"`
	Status      string       `json:"status"`
	Duration    string       `json:"duration"`
	DurationMs  int64        `json:"duration_ms"`
	Stats       jsonStats    `json:"stats"`
	Results     []jsonResult `json:"results"`
}

type jsonStats struct {
	Files              int `json:"files"`
	Committed          int `json:"committed"`
	RolledBack         int `json:"rolled_back"`
	Failed             int `json:"failed"`
	ManualIntervention int `json:"manual_intervention"`
	Retries            int `json:"retries"`
}

type jsonResult struct {
	Path               string     `json:"path"`
	Outcome            string     `json:"outcome"`
	Applied            *time.Time `json:"applied,omitempty"`
	Error              string     `json:"error,omitempty"`
	Attempts           int        `json:"attempts,omitempty"`
	ManualIntervention bool       `json:"manual_intervention,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, totalFiles int) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return nil
}

// Result is a no-op; the JSON document is emitted once at Complete
func (f *JSONFormatter) Result(index, total int, result models.TransactionResult) error {
	return nil
}

// Complete marshals the full report
func (f *JSONFormatter) Complete(report *models.BatchReport) error {
	out := jsonReport{
		OperationID: report.OperationID,
		Share:       report.Share,
		Target:      report.Target,
		Status:      string(report.Status),
		Duration:    report.Duration.String(),
		DurationMs:  report.Duration.Milliseconds(),
		Stats: jsonStats{
			Files:              report.Stats.Files,
			Committed:          report.Stats.Committed,
			RolledBack:         report.Stats.RolledBack,
			Failed:             report.Stats.Failed,
			ManualIntervention: report.Stats.ManualIntervention,
			Retries:            report.Stats.Retries,
		},
		Results: make([]jsonResult, 0, len(report.Results)),
	}

	for _, r := range report.Results {
		jr := jsonResult{
			Path:               r.Path,
			Outcome:            string(r.Outcome),
			Error:              r.ErrorMessage(),
			Attempts:           r.Attempts,
			ManualIntervention: r.ManualIntervention,
		}
		if r.Committed() {
			applied := r.Applied
			jr.Applied = &applied
		}
		out.Results = append(out.Results, jr)
	}

	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Error emits a JSON error object
func (f *JSONFormatter) Error(err error) error {
	w := f.writer
	if w == nil {
		w = os.Stderr
	}
	return json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
