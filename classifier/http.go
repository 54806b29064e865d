package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"
)

// HTTPClient talks to a text-classification inference service. The service
// is expected to expose POST {baseURL}/v1/score accepting {"texts": [...]}
// and returning one {"label", "score"} pair per input text, in order.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// ScoreRequest is the inference service request payload.
type ScoreRequest struct {
	Texts []string `json:"texts"`
}

// ScoreResponse is the inference service response payload.
type ScoreResponse struct {
	Results []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	} `json:"results"`
}

// NewHTTPClient creates a classifier client for the given inference service.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SourceName identifies this provider in run summaries.
func (c *HTTPClient) SourceName() string {
	return "Inference"
}

// Ready probes the inference service health endpoint.
func (c *HTTPClient) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create readiness request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service returned status %d", resp.StatusCode)
	}
	return nil
}

// ScoreOne scores a single text. Model failures degrade to a zero score.
func (c *HTTPClient) ScoreOne(ctx context.Context, text string) ScoreResult {
	results := c.ScoreBatch(ctx, []string{text})
	return results[0]
}

// ScoreBatch scores texts in a single call to the inference service. A
// whole-call failure degrades every element; a malformed or out-of-range
// element degrades only that element.
func (c *HTTPClient) ScoreBatch(ctx context.Context, texts []string) []ScoreResult {
	results := make([]ScoreResult, len(texts))
	if len(texts) == 0 {
		return results
	}

	response, err := c.score(ctx, texts)
	if err != nil {
		log.WithError(err).Warnf("scoring call failed, degrading %d texts to 0.0", len(texts))
		for i := range results {
			results[i] = ScoreResult{Score: 0, Degraded: true}
		}
		return results
	}

	if len(response.Results) != len(texts) {
		log.Warnf("inference service returned %d results for %d texts, degrading batch", len(response.Results), len(texts))
		for i := range results {
			results[i] = ScoreResult{Score: 0, Degraded: true}
		}
		return results
	}

	for i, r := range response.Results {
		if r.Score < 0 || r.Score > 1 {
			log.Warnf("score %v out of range for text %d, degrading to 0.0", r.Score, i)
			results[i] = ScoreResult{Score: 0, Degraded: true}
			continue
		}
		results[i] = ScoreResult{Score: r.Score}
	}
	return results
}

func (c *HTTPClient) score(ctx context.Context, texts []string) (*ScoreResponse, error) {
	requestBody, err := json.Marshal(ScoreRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/score", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to inference service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference service returned status %d", resp.StatusCode)
	}

	var response ScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &response, nil
}
