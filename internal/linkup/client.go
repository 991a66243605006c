// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package linkup implements the budgeted web search capability on top of
// the LinkUp search API.
package linkup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/deep-research/internal/httputil"
	"github.com/pdiddy/deep-research/pkg/types"
)

// apiBase is the LinkUp search endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.linkup.so/v1/search"

// ErrMissingAPIKey indicates the LinkUp credential was not configured.
// Fixing it requires configuration, not a retry against the provider.
var ErrMissingAPIKey = errors.New("linkup-api-key not set")

// Client queries the LinkUp search API.
type Client struct {
	HTTPClient *http.Client
	APIKey     string
	UserAgent  string
}

// searchRequest is the request body for the LinkUp search API.
type searchRequest struct {
	Query      string `json:"q"`
	Depth      string `json:"depth"`
	OutputType string `json:"outputType"`
}

// searchResponse is the response body for outputType "searchResults".
type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// sourcedAnswerResponse is the response body for outputType "sourcedAnswer".
type sourcedAnswerResponse struct {
	Answer  string         `json:"answer"`
	Sources []searchResult `json:"sources"`
}

// Search performs one provider call and renders the response as text for
// the synthesis context. The caller is responsible for budgeting and pacing.
func (c *Client) Search(ctx context.Context, query string, depth types.Depth, outputType types.OutputType) (string, error) {
	if c.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(searchRequest{
		Query:      query,
		Depth:      string(depth),
		OutputType: string(outputType),
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("LinkUp API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("LinkUp API returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading LinkUp response: %w", err)
	}

	return renderResponse(raw, outputType), nil
}

// renderResponse flattens the provider JSON into readable text blocks. An
// unrecognized payload is passed through verbatim so the synthesis stage
// still sees something useful.
func renderResponse(raw []byte, outputType types.OutputType) string {
	switch outputType {
	case types.OutputSourcedAnswer:
		var sa sourcedAnswerResponse
		if err := json.Unmarshal(raw, &sa); err == nil && sa.Answer != "" {
			var b strings.Builder
			b.WriteString(sa.Answer)
			if len(sa.Sources) > 0 {
				b.WriteString("\n\nSources:\n")
				writeResults(&b, sa.Sources)
			}
			return b.String()
		}
	default:
		var sr searchResponse
		if err := json.Unmarshal(raw, &sr); err == nil && len(sr.Results) > 0 {
			var b strings.Builder
			writeResults(&b, sr.Results)
			return b.String()
		}
	}
	return string(raw)
}

func writeResults(b *strings.Builder, results []searchResult) {
	for i, r := range results {
		fmt.Fprintf(b, "%d. %s\n", i+1, r.Name)
		if r.URL != "" {
			fmt.Fprintf(b, "   %s\n", r.URL)
		}
		if r.Content != "" {
			fmt.Fprintf(b, "   %s\n", strings.TrimSpace(r.Content))
		}
		if i < len(results)-1 {
			b.WriteString("\n")
		}
	}
}
