package pipeline

import (
	"issue-triage-pipeline/models"
)

// Label maps a confidence score to a priority label. Boundary values belong
// to the higher band.
func Label(score float64) string {
	switch {
	case score >= 0.80:
		return models.PriorityHigh
	case score >= 0.50:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}
