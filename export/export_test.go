package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"issue-triage-pipeline/models"
)

func TestWriteCSV(t *testing.T) {
	issues := []models.AggregatedIssue{
		{DisplayText: "server down", PriorityLevel: models.PriorityHigh, PriorityScore: 0.94999, Occurrences: 2},
		{DisplayText: "text, with comma", PriorityLevel: models.PriorityLow, PriorityScore: 0.2, Occurrences: 1},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, issues); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("exported CSV does not parse: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if strings.Join(rows[0], ",") != "display_text,priority_level,priority_score,occurrences" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][2] != "0.950" {
		t.Errorf("score should be rounded to 3 decimals, got %q", rows[1][2])
	}
	if rows[2][0] != "text, with comma" {
		t.Errorf("comma text not preserved: %q", rows[2][0])
	}
	if rows[2][3] != "1" {
		t.Errorf("occurrences = %q, want 1", rows[2][3])
	}
}

func TestWriteCSVEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "display_text,priority_level,priority_score,occurrences" {
		t.Errorf("empty export = %q, want header only", buf.String())
	}
}

func TestFilename(t *testing.T) {
	ts := time.Date(2026, 8, 25, 14, 30, 5, 0, time.UTC)
	got := Filename(ts)
	if got != "prioritized_issues_20260825_143005.csv" {
		t.Errorf("Filename() = %q", got)
	}
}

func TestRound3(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0.94999, 0.95},
		{0.9995, 1.0},
		{0.2, 0.2},
		{0, 0},
	}
	for _, tc := range tests {
		if got := Round3(tc.input); got != tc.expected {
			t.Errorf("Round3(%v) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}
