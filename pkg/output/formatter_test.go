package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"nasdate/pkg/models"
)

func sampleReport() *models.BatchReport {
	target := time.Date(2019, time.March, 15, 10, 30, 0, 0, time.UTC)
	report := &models.BatchReport{
		OperationID: "op-1",
		Share:       "documents",
		Target:      target,
		Results:     make([]models.TransactionResult, 3),
	}
	report.Stats.Files = 3
	report.Add(0, models.TransactionResult{Path: "a.pdf", Outcome: models.OutcomeCommitted, Applied: target, Attempts: 1})
	report.Add(1, models.TransactionResult{Path: "b.pdf", Outcome: models.OutcomeRolledBack, Err: errors.New("mismatch"), Attempts: 3})
	report.Add(2, models.TransactionResult{Path: "c.pdf", Outcome: models.OutcomeFailed, Err: errors.New("rollback failed"), ManualIntervention: true})
	report.Finalize(false)
	return report
}

// TestHumanFormatter tests the per-result lines and the summary
func TestHumanFormatter(t *testing.T) {
	report := sampleReport()
	var buf bytes.Buffer

	f := NewHumanFormatter()
	if err := f.Start(&buf, 3); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for i, r := range report.Results {
		if err := f.Result(i, 3, r); err != nil {
			t.Fatalf("Result() error = %v", err)
		}
	}
	if err := f.Complete(report); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"a.pdf → 2019-03-15 10:30:00",
		"b.pdf rolled back: mismatch",
		"MANUAL INTERVENTION",
		"Committed:    1",
		"Rolled back:  1",
		"Failed:       1",
		"Status: partial",
		"Check these manually",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestJSONFormatter tests the machine-readable document
func TestJSONFormatter(t *testing.T) {
	report := sampleReport()
	var buf bytes.Buffer

	f := NewJSONFormatter()
	if err := f.Start(&buf, 3); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := f.Complete(report); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	var decoded struct {
		OperationID string `json:"operation_id"`
		Status      string `json:"status"`
		Stats       struct {
			Committed int `json:"committed"`
			Failed    int `json:"failed"`
		} `json:"stats"`
		Results []struct {
			Path               string `json:"path"`
			Outcome            string `json:"outcome"`
			Error              string `json:"error"`
			ManualIntervention bool   `json:"manual_intervention"`
		} `json:"results"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if decoded.OperationID != "op-1" || decoded.Status != "partial" {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Stats.Committed != 1 || decoded.Stats.Failed != 1 {
		t.Errorf("stats = %+v", decoded.Stats)
	}
	if len(decoded.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(decoded.Results))
	}
	if decoded.Results[0].Path != "a.pdf" || decoded.Results[0].Error != "" {
		t.Errorf("results[0] = %+v", decoded.Results[0])
	}
	if !decoded.Results[2].ManualIntervention {
		t.Error("results[2] should flag manual intervention")
	}
}

// TestProgressFallsBackOnPipe tests that a non-terminal writer gets
// plain line output instead of bar control codes
func TestProgressFallsBackOnPipe(t *testing.T) {
	report := sampleReport()
	var buf bytes.Buffer

	f := NewProgressFormatter()
	if err := f.Start(&buf, 3); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for i, r := range report.Results {
		if err := f.Result(i, 3, r); err != nil {
			t.Fatalf("Result() error = %v", err)
		}
	}
	if err := f.Complete(report); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "\r") {
		t.Error("non-terminal output should not contain bar redraws")
	}
	if !strings.Contains(out, "Status: partial") {
		t.Errorf("output missing summary:\n%s", out)
	}
}
