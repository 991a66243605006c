// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	backoffBase = time.Millisecond
}

// serveAPI points apiBase at a test server for the duration of the test.
func serveAPI(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	ts := httptest.NewServer(handler)
	old := apiBase
	apiBase = ts.URL
	t.Cleanup(func() {
		apiBase = old
		ts.Close()
	})
}

func textResponse(text string) geminiResponse {
	return geminiResponse{
		Candidates: []geminiCandidate{
			{Content: geminiContent{Parts: []geminiPart{{Text: text}}}},
		},
	}
}

func TestCompleteSuccess(t *testing.T) {
	var gotReq geminiRequest
	var gotKey string
	serveAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(textResponse("the report"))
	})

	c := &Client{APIKey: "gk_test", Model: "gemini-2.5-pro", Temperature: 0.4, MaxOutputTokens: 4000}
	got, err := c.Complete(context.Background(), "write a report")
	require.NoError(t, err)

	assert.Equal(t, "the report", got)
	assert.Equal(t, "gk_test", gotKey)
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "write a report", gotReq.Contents[0].Parts[0].Text)
	assert.Equal(t, 0.4, gotReq.GenerationConfig.Temperature)
	assert.Equal(t, 4000, gotReq.GenerationConfig.MaxOutputTokens)
}

func TestCompleteMissingKey(t *testing.T) {
	c := &Client{Model: "gemini-2.5-pro"}
	_, err := c.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestCompleteRateLimitedNoInternalRetry(t *testing.T) {
	var calls int32
	serveAPI(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error":{"status":"RESOURCE_EXHAUSTED"}}`, http.StatusTooManyRequests)
	})

	c := &Client{APIKey: "gk_test", Model: "gemini-2.5-pro", MaxRetries: 3}
	_, err := c.Complete(context.Background(), "prompt")

	var rle *RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, http.StatusTooManyRequests, rle.StatusCode)
	// Rate limits surface immediately; the session controller owns that backoff.
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCompleteOverloadIsRateLimit(t *testing.T) {
	serveAPI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	})

	c := &Client{APIKey: "gk_test", Model: "gemini-2.5-pro"}
	_, err := c.Complete(context.Background(), "prompt")

	var rle *RateLimitError
	assert.ErrorAs(t, err, &rle)
}

func TestCompleteRetriesTransientFailures(t *testing.T) {
	var calls int32
	serveAPI(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 2 {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(textResponse("recovered"))
	})

	c := &Client{APIKey: "gk_test", Model: "gemini-2.5-pro", MaxRetries: 3}
	got, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCompleteExhaustsRetries(t *testing.T) {
	var calls int32
	serveAPI(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	c := &Client{APIKey: "gk_test", Model: "gemini-2.5-pro", MaxRetries: 2}
	_, err := c.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 retries")
	// 1 initial + 2 retries.
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCompleteEmptyCandidates(t *testing.T) {
	serveAPI(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse{})
	})

	c := &Client{APIKey: "gk_test", Model: "gemini-2.5-pro", MaxRetries: 0}
	_, err := c.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}
