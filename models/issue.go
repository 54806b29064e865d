package models

import (
	"time"
)

// Priority labels assigned to scored issues.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// IssueRecord represents one row of the uploaded dataset.
// Index is the 0-based position in the original input order.
// Extra carries the remaining columns untouched.
type IssueRecord struct {
	Index   int               `json:"index"`
	RawText string            `json:"raw_text"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// ScoredRecord is an IssueRecord after normalization, translation and scoring.
type ScoredRecord struct {
	Index             int     `json:"index"`
	RawText           string  `json:"raw_text"`
	DisplayText       string  `json:"display_text"`
	PriorityScore     float64 `json:"priority_score"`
	PriorityLevel     string  `json:"priority_level"`
	ScoreDegraded     bool    `json:"score_degraded"`
	TranslateDegraded bool    `json:"translate_degraded"`
}

// AggregatedIssue is one row of the ranked output table. Duplicate display
// texts are collapsed into a single entry.
type AggregatedIssue struct {
	DisplayText   string  `json:"display_text"`
	PriorityScore float64 `json:"priority_score"`
	PriorityLevel string  `json:"priority_level"`
	Occurrences   int     `json:"occurrences"`
	FirstSeen     int     `json:"first_seen"`
	Degraded      bool    `json:"degraded"`
}

// Sampling modes for a run.
const (
	SampleFirst100  = "first100"
	SampleFirst500  = "first500"
	SampleFirst1000 = "first1000"
	SampleFull      = "full"
	SampleCustom    = "custom"
)

// RunConfig holds the per-run settings chosen by the caller.
type RunConfig struct {
	TextColumn   string `json:"text_column"`
	SampleMode   string `json:"sample_mode"`
	SampleSize   int    `json:"sample_size,omitempty"`
	DisplayLimit int    `json:"display_limit"`
}

// RunStats summarizes one completed run.
type RunStats struct {
	UniqueIssues   int            `json:"unique_issues"`
	TotalRecords   int            `json:"total_records"`
	MaxScore       float64        `json:"max_score"`
	MeanScore      float64        `json:"mean_score"`
	LevelCounts    map[string]int `json:"level_counts"`
	DegradedIssues int            `json:"degraded_issues"`
}

// RunResult is everything the service keeps about a run for the duration of
// the session.
type RunResult struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Config    RunConfig         `json:"config"`
	Issues    []AggregatedIssue `json:"issues"`
	Stats     RunStats          `json:"stats"`
}
