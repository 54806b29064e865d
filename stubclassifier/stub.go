package stubclassifier

import (
	"context"
	"crypto/sha256"
	"encoding/binary"

	"issue-triage-pipeline/classifier"
)

// Client is a deterministic, no-network classifier stub intended for CI and
// local end-to-end runs. The score is derived from a hash of the text so the
// same input always scores the same, and the full [0,1] range is exercised.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

func (c *Client) Ready(ctx context.Context) error { return nil }

func (c *Client) ScoreOne(ctx context.Context, text string) classifier.ScoreResult {
	if text == "" {
		// Matches the real adapter's policy for unscorable input.
		return classifier.ScoreResult{Score: 0, Degraded: true}
	}

	sum := sha256.Sum256([]byte(text))
	n := binary.BigEndian.Uint32(sum[:4])
	return classifier.ScoreResult{Score: float64(n%1000) / 999.0}
}

func (c *Client) ScoreBatch(ctx context.Context, texts []string) []classifier.ScoreResult {
	results := make([]classifier.ScoreResult, len(texts))
	for i, text := range texts {
		results[i] = c.ScoreOne(ctx, text)
	}
	return results
}
