package classifier

import (
	"context"
)

// ScoreResult carries the confidence score for one text. Degraded is set
// when the underlying model call failed and the score was substituted with
// 0.0, so callers can tell a genuine low score from a failed one.
type ScoreResult struct {
	Score    float64 `json:"score"`
	Degraded bool    `json:"degraded"`
}

// Client abstracts the text classification model used by the pipeline.
// Implementations must be concurrency-safe if used across goroutines.
type Client interface {
	// ScoreOne scores a single normalized text. A failed model call yields
	// {Score: 0, Degraded: true}, never an error.
	ScoreOne(ctx context.Context, text string) ScoreResult

	// ScoreBatch scores texts in one call. The result is length-preserving
	// and order-preserving, and element i must equal ScoreOne(texts[i]).
	// Batching exists purely for throughput.
	ScoreBatch(ctx context.Context, texts []string) []ScoreResult

	// Ready reports whether the model backend is usable. A failure here is
	// the one fatal-at-startup condition of the service.
	Ready(ctx context.Context) error

	// SourceName returns a short provider label (e.g. "Inference", "Stub").
	SourceName() string
}
