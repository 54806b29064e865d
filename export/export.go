package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"issue-triage-pipeline/models"
)

// Header is the column order of exported tables.
var Header = []string{"display_text", "priority_level", "priority_score", "occurrences"}

// WriteCSV serializes an aggregated table as UTF-8 CSV with a header row and
// no index column. Scores are rounded to 3 decimals for display.
func WriteCSV(w io.Writer, issues []models.AggregatedIssue) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, issue := range issues {
		row := []string{
			issue.DisplayText,
			issue.PriorityLevel,
			strconv.FormatFloat(Round3(issue.PriorityScore), 'f', 3, 64),
			strconv.Itoa(issue.Occurrences),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Filename returns the timestamped download name for an export.
func Filename(t time.Time) string {
	return "prioritized_issues_" + t.Format("20060102_150405") + ".csv"
}

// Round3 rounds a score to 3 decimals for display and export.
func Round3(score float64) float64 {
	return math.Round(score*1000) / 1000
}
