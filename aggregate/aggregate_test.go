package aggregate

import (
	"reflect"
	"testing"

	"issue-triage-pipeline/models"
)

func scored(index int, text string, score float64, level string) models.ScoredRecord {
	return models.ScoredRecord{
		Index:         index,
		RawText:       text,
		DisplayText:   text,
		PriorityScore: score,
		PriorityLevel: level,
	}
}

func TestAggregateCollapsesDuplicates(t *testing.T) {
	records := []models.ScoredRecord{
		scored(0, "server down", 0.95, models.PriorityHigh),
		scored(1, "server down", 0.91, models.PriorityHigh),
		scored(2, "minor UI glitch", 0.2, models.PriorityLow),
	}

	got := Aggregate(records)

	expected := []models.AggregatedIssue{
		{DisplayText: "server down", PriorityScore: 0.95, PriorityLevel: models.PriorityHigh, Occurrences: 2, FirstSeen: 0},
		{DisplayText: "minor UI glitch", PriorityScore: 0.2, PriorityLevel: models.PriorityLow, Occurrences: 1, FirstSeen: 2},
	}

	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Aggregate() = %+v, want %+v", got, expected)
	}
}

func TestAggregateMaxWinsRegardlessOfOrder(t *testing.T) {
	records := []models.ScoredRecord{
		scored(0, "login broken", 0.4, models.PriorityLow),
		scored(1, "login broken", 0.85, models.PriorityHigh),
		scored(2, "login broken", 0.6, models.PriorityMedium),
	}

	got := Aggregate(records)
	if len(got) != 1 {
		t.Fatalf("expected 1 group, got %d", len(got))
	}
	if got[0].PriorityScore != 0.85 || got[0].PriorityLevel != models.PriorityHigh {
		t.Errorf("group = %+v, want score 0.85 level High", got[0])
	}
	if got[0].Occurrences != 3 {
		t.Errorf("occurrences = %d, want 3", got[0].Occurrences)
	}
}

func TestAggregateTieKeepsFirstMember(t *testing.T) {
	// Two members tie exactly on the max score but carry different labels
	// (possible when labels come from different pipeline configurations).
	records := []models.ScoredRecord{
		{Index: 0, DisplayText: "payment failed", PriorityScore: 0.8, PriorityLevel: models.PriorityHigh},
		{Index: 1, DisplayText: "payment failed", PriorityScore: 0.8, PriorityLevel: models.PriorityMedium},
	}

	got := Aggregate(records)
	if got[0].PriorityLevel != models.PriorityHigh {
		t.Errorf("tie should keep the first member's label, got %q", got[0].PriorityLevel)
	}
}

func TestAggregateSortsByScoreThenFirstSeen(t *testing.T) {
	records := []models.ScoredRecord{
		scored(0, "issue a", 0.5, models.PriorityMedium),
		scored(1, "issue b", 0.9, models.PriorityHigh),
		scored(2, "issue c", 0.5, models.PriorityMedium),
	}

	got := Aggregate(records)

	order := []string{"issue b", "issue a", "issue c"}
	for i, want := range order {
		if got[i].DisplayText != want {
			t.Errorf("position %d = %q, want %q", i, got[i].DisplayText, want)
		}
	}
}

func TestAggregateOccurrenceSumInvariant(t *testing.T) {
	records := []models.ScoredRecord{
		scored(0, "a", 0.1, models.PriorityLow),
		scored(1, "b", 0.2, models.PriorityLow),
		scored(2, "a", 0.3, models.PriorityLow),
		scored(3, "c", 0.4, models.PriorityLow),
		scored(4, "a", 0.5, models.PriorityMedium),
	}

	got := Aggregate(records)

	sum := 0
	for _, issue := range got {
		sum += issue.Occurrences
	}
	if sum != len(records) {
		t.Errorf("occurrence sum = %d, want %d", sum, len(records))
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	got := Aggregate(nil)
	if len(got) != 0 {
		t.Errorf("expected empty output, got %+v", got)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	records := []models.ScoredRecord{
		scored(0, "server down", 0.95, models.PriorityHigh),
		scored(1, "server down", 0.91, models.PriorityHigh),
		scored(2, "minor UI glitch", 0.2, models.PriorityLow),
		scored(3, "slow dashboard", 0.6, models.PriorityMedium),
	}

	first := Aggregate(records)

	// Re-feed the aggregated rows as singleton records.
	again := make([]models.ScoredRecord, 0, len(first))
	for _, issue := range first {
		again = append(again, models.ScoredRecord{
			Index:         issue.FirstSeen,
			DisplayText:   issue.DisplayText,
			PriorityScore: issue.PriorityScore,
			PriorityLevel: issue.PriorityLevel,
		})
	}

	second := Aggregate(again)
	if len(second) != len(first) {
		t.Fatalf("second pass has %d rows, want %d", len(second), len(first))
	}
	for i := range first {
		if second[i].DisplayText != first[i].DisplayText ||
			second[i].PriorityScore != first[i].PriorityScore ||
			second[i].PriorityLevel != first[i].PriorityLevel {
			t.Errorf("row %d changed across passes: %+v vs %+v", i, second[i], first[i])
		}
	}
}

func TestAggregatePropagatesDegradation(t *testing.T) {
	records := []models.ScoredRecord{
		{Index: 0, DisplayText: "flaky import", PriorityScore: 0.3, PriorityLevel: models.PriorityLow},
		{Index: 1, DisplayText: "flaky import", PriorityScore: 0.0, PriorityLevel: models.PriorityLow, ScoreDegraded: true},
	}

	got := Aggregate(records)
	if !got[0].Degraded {
		t.Error("group with a degraded member should be marked degraded")
	}
}

func TestFilter(t *testing.T) {
	issues := []models.AggregatedIssue{
		{DisplayText: "Server Down", PriorityScore: 0.95, Occurrences: 4},
		{DisplayText: "slow dashboard", PriorityScore: 0.6, Occurrences: 2},
		{DisplayText: "minor UI glitch", PriorityScore: 0.2, Occurrences: 1},
	}

	tests := []struct {
		name     string
		opts     FilterOptions
		expected []string
	}{
		{"no predicates", FilterOptions{}, []string{"Server Down", "slow dashboard", "minor UI glitch"}},
		{"min score", FilterOptions{MinScore: 0.5}, []string{"Server Down", "slow dashboard"}},
		{"min occurrences", FilterOptions{MinOccurrences: 2}, []string{"Server Down", "slow dashboard"}},
		{"substring is case-insensitive", FilterOptions{Contains: "SERVER"}, []string{"Server Down"}},
		{"all predicates", FilterOptions{MinScore: 0.5, MinOccurrences: 3, Contains: "server"}, []string{"Server Down"}},
		{"nothing matches", FilterOptions{MinScore: 0.99}, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Filter(issues, tc.opts)
			if len(got) != len(tc.expected) {
				t.Fatalf("got %d rows, want %d", len(got), len(tc.expected))
			}
			for i, want := range tc.expected {
				if got[i].DisplayText != want {
					t.Errorf("row %d = %q, want %q", i, got[i].DisplayText, want)
				}
			}
		})
	}
}

func TestFilterMonotonic(t *testing.T) {
	issues := []models.AggregatedIssue{
		{DisplayText: "a", PriorityScore: 0.9, Occurrences: 5},
		{DisplayText: "b", PriorityScore: 0.7, Occurrences: 3},
		{DisplayText: "c", PriorityScore: 0.4, Occurrences: 1},
	}

	prev := len(Filter(issues, FilterOptions{}))
	for _, minScore := range []float64{0.1, 0.5, 0.8, 1.0} {
		n := len(Filter(issues, FilterOptions{MinScore: minScore}))
		if n > prev {
			t.Errorf("raising min_score to %v grew the result set: %d > %d", minScore, n, prev)
		}
		prev = n
	}

	prev = len(Filter(issues, FilterOptions{}))
	for _, minOcc := range []int{1, 2, 4, 6} {
		n := len(Filter(issues, FilterOptions{MinOccurrences: minOcc}))
		if n > prev {
			t.Errorf("raising min_occurrences to %d grew the result set: %d > %d", minOcc, n, prev)
		}
		prev = n
	}
}

func TestStats(t *testing.T) {
	issues := []models.AggregatedIssue{
		{DisplayText: "a", PriorityScore: 0.9, PriorityLevel: models.PriorityHigh, Occurrences: 3},
		{DisplayText: "b", PriorityScore: 0.5, PriorityLevel: models.PriorityMedium, Occurrences: 1, Degraded: true},
		{DisplayText: "c", PriorityScore: 0.1, PriorityLevel: models.PriorityLow, Occurrences: 2},
	}

	got := Stats(issues, 6)

	if got.UniqueIssues != 3 {
		t.Errorf("UniqueIssues = %d, want 3", got.UniqueIssues)
	}
	if got.TotalRecords != 6 {
		t.Errorf("TotalRecords = %d, want 6", got.TotalRecords)
	}
	if got.MaxScore != 0.9 {
		t.Errorf("MaxScore = %v, want 0.9", got.MaxScore)
	}
	if got.MeanScore != 0.5 {
		t.Errorf("MeanScore = %v, want 0.5", got.MeanScore)
	}
	if got.LevelCounts[models.PriorityHigh] != 1 || got.LevelCounts[models.PriorityMedium] != 1 || got.LevelCounts[models.PriorityLow] != 1 {
		t.Errorf("LevelCounts = %v", got.LevelCounts)
	}
	if got.DegradedIssues != 1 {
		t.Errorf("DegradedIssues = %d, want 1", got.DegradedIssues)
	}
}

func TestStatsEmpty(t *testing.T) {
	got := Stats(nil, 0)
	if got.UniqueIssues != 0 || got.MaxScore != 0 || got.MeanScore != 0 {
		t.Errorf("empty stats = %+v", got)
	}
}
