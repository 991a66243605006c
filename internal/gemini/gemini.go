// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gemini implements the language-model capability on top of the
// Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/deep-research/pkg/types"
)

// apiBase is the Gemini models endpoint. Package-level var for test substitution.
var apiBase = "https://generativelanguage.googleapis.com/v1beta/models"

// backoffBase controls the base duration for exponential backoff on
// transient failures. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// ErrMissingAPIKey indicates the Gemini credential was not configured.
var ErrMissingAPIKey = errors.New("gemini-api-key not set")

// RateLimitError reports provider throttling or overload. The session
// controller matches on this type to apply its escalating backoff policy
// instead of the fixed-delay one.
type RateLimitError struct {
	StatusCode int
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Gemini API rate limited (HTTP %d): %s", e.StatusCode, e.Message)
}

// Client calls the Gemini generateContent API with one role configuration.
type Client struct {
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	MaxRetries      int
	HTTPClient      *http.Client
}

// NewClient builds a Client from an LLMConfig.
func NewClient(cfg types.LLMConfig) *Client {
	httpClient := http.DefaultClient
	if cfg.Timeout > 0 {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		APIKey:          cfg.APIKey,
		Model:           cfg.Model,
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
		MaxRetries:      cfg.MaxRetries,
		HTTPClient:      httpClient,
	}
}

// geminiRequest is the request body for the generateContent API.
type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// geminiResponse is the response body from the generateContent API.
type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

// Complete sends a prompt and returns the model's text. Transient failures
// (network errors, HTTP 5xx) are retried with exponential backoff up to
// MaxRetries. Throttled responses surface immediately as *RateLimitError so
// the session controller can apply its own backoff policy.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := c.complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		var rle *RateLimitError
		if errors.As(err, &rle) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     c.Temperature,
			MaxOutputTokens: c.MaxOutputTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", apiBase, c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		msg := strings.TrimSpace(string(body))
		if throttled(resp.StatusCode, msg) {
			return "", &RateLimitError{StatusCode: resp.StatusCode, Message: msg}
		}
		return "", fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, msg)
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return "", fmt.Errorf("decoding Gemini response: %w", err)
	}

	if len(gResp.Candidates) == 0 {
		return "", fmt.Errorf("Gemini API returned no candidates")
	}

	var b strings.Builder
	for _, part := range gResp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text content in Gemini API response")
	}
	return b.String(), nil
}

// throttled reports whether a non-200 response signals rate limiting or
// overload: HTTP 429, 503, or a RESOURCE_EXHAUSTED status in the body.
func throttled(code int, body string) bool {
	if code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable {
		return true
	}
	return strings.Contains(body, "RESOURCE_EXHAUSTED")
}
