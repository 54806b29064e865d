package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"
)

// Translator maps text between languages. Translation is advisory: a failed
// call returns the original text with degraded=true and must never abort the
// pipeline.
type Translator interface {
	// Translate converts text to the target language code (e.g. "en", "ar").
	// The source language is auto-detected.
	Translate(ctx context.Context, text, target string) (translated string, degraded bool)
}

// Client calls an external translation service. The service is expected to
// accept POST {baseURL}/translate with {"q", "source", "target"} and return
// {"translated"}.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateResponse struct {
	Translated string `json:"translated"`
}

// NewClient creates a translation client with a bounded per-call timeout so
// a slow translation backend cannot stall a whole run.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Translate(ctx context.Context, text, target string) (string, bool) {
	if text == "" {
		return text, false
	}

	translated, err := c.translate(ctx, text, target)
	if err != nil {
		log.WithError(err).Debugf("translation to %q failed, passing text through", target)
		return text, true
	}
	if translated == "" {
		// An empty translation of non-empty input is useless for grouping.
		return text, true
	}
	return translated, false
}

func (c *Client) translate(ctx context.Context, text, target string) (string, error) {
	requestBody, err := json.Marshal(translateRequest{
		Q:      text,
		Source: "auto",
		Target: target,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request to translation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation service returned status %d", resp.StatusCode)
	}

	var response translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return response.Translated, nil
}

// Noop passes text through unchanged. Used when translation is disabled or
// the target language already matches the text.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Translate(ctx context.Context, text, target string) (string, bool) {
	return text, false
}
