package aggregate

import (
	"sort"
	"strings"

	"issue-triage-pipeline/models"
)

// Aggregate collapses scored records into one row per unique display text.
// Each group keeps the maximum score and the label of the record that
// achieved it; when several records tie exactly on the maximum, the earliest
// one in input order wins. The output is sorted by score descending with
// first-seen input order as the tie break, so the ordering is a total order
// and stable across runs.
func Aggregate(records []models.ScoredRecord) []models.AggregatedIssue {
	groups := make(map[string]*models.AggregatedIssue)
	order := make([]string, 0)

	for _, rec := range records {
		g, ok := groups[rec.DisplayText]
		if !ok {
			groups[rec.DisplayText] = &models.AggregatedIssue{
				DisplayText:   rec.DisplayText,
				PriorityScore: rec.PriorityScore,
				PriorityLevel: rec.PriorityLevel,
				Occurrences:   1,
				FirstSeen:     rec.Index,
				Degraded:      rec.ScoreDegraded || rec.TranslateDegraded,
			}
			order = append(order, rec.DisplayText)
			continue
		}

		g.Occurrences++
		if rec.ScoreDegraded || rec.TranslateDegraded {
			g.Degraded = true
		}
		// Strictly greater keeps the first argmax on exact ties.
		if rec.PriorityScore > g.PriorityScore {
			g.PriorityScore = rec.PriorityScore
			g.PriorityLevel = rec.PriorityLevel
		}
	}

	result := make([]models.AggregatedIssue, 0, len(order))
	for _, key := range order {
		result = append(result, *groups[key])
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].PriorityScore != result[j].PriorityScore {
			return result[i].PriorityScore > result[j].PriorityScore
		}
		return result[i].FirstSeen < result[j].FirstSeen
	})

	return result
}

// FilterOptions are the predicates applied to an aggregated table. Zero
// values leave the corresponding predicate inactive.
type FilterOptions struct {
	MinScore       float64
	MinOccurrences int
	Contains       string
}

// Filter returns the rows satisfying every predicate. It preserves input
// order and never mutates its input. The substring match is
// case-insensitive.
func Filter(issues []models.AggregatedIssue, opts FilterOptions) []models.AggregatedIssue {
	needle := strings.ToLower(opts.Contains)

	result := make([]models.AggregatedIssue, 0, len(issues))
	for _, issue := range issues {
		if issue.PriorityScore < opts.MinScore {
			continue
		}
		if issue.Occurrences < opts.MinOccurrences {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(issue.DisplayText), needle) {
			continue
		}
		result = append(result, issue)
	}
	return result
}

// Stats computes the summary block for a finished run. totalRecords is the
// number of scored input rows, i.e. the sum of occurrences across issues.
func Stats(issues []models.AggregatedIssue, totalRecords int) models.RunStats {
	stats := models.RunStats{
		UniqueIssues: len(issues),
		TotalRecords: totalRecords,
		LevelCounts: map[string]int{
			models.PriorityHigh:   0,
			models.PriorityMedium: 0,
			models.PriorityLow:    0,
		},
	}

	if len(issues) == 0 {
		return stats
	}

	var sum float64
	for _, issue := range issues {
		if issue.PriorityScore > stats.MaxScore {
			stats.MaxScore = issue.PriorityScore
		}
		sum += issue.PriorityScore
		stats.LevelCounts[issue.PriorityLevel]++
		if issue.Degraded {
			stats.DegradedIssues++
		}
	}
	stats.MeanScore = sum / float64(len(issues))

	return stats
}
