// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/deep-research/internal/report"
	"github.com/pdiddy/deep-research/pkg/types"
)

// Runner is one pipeline attempt as seen by the retry controller.
type Runner interface {
	Execute(ctx context.Context, query string) (types.ResearchReport, error)
}

// Factory builds a fresh Runner per attempt, so configuration is
// re-checked and the search budget starts clean on every retry.
type Factory func(w io.Writer) (Runner, error)

// Controller retries whole pipeline attempts with a differentiated backoff
// policy: rate-limit failures escalate linearly, everything else waits a
// fixed delay. It is the sole boundary deciding retry vs. terminal message;
// no error crosses it.
type Controller struct {
	cfg     types.PipelineConfig
	factory Factory
	w       io.Writer
}

// NewController builds a Controller that constructs real pipelines.
func NewController(cfg types.PipelineConfig, w io.Writer) *Controller {
	return &Controller{
		cfg: cfg,
		factory: func(w io.Writer) (Runner, error) {
			return New(cfg, w)
		},
		w: w,
	}
}

// RunResearch executes the full research session for query and always
// returns text: the report body on success, otherwise an actionable
// failure message.
func RunResearch(ctx context.Context, query string, cfg types.PipelineConfig, w io.Writer) string {
	return NewController(cfg, w).Run(ctx, query)
}

// Run is RunDetailed without the structured report.
func (c *Controller) Run(ctx context.Context, query string) string {
	text, _ := c.RunDetailed(ctx, query)
	return text
}

// RunDetailed runs the retry loop and returns the user-facing text plus,
// when an attempt succeeded, the structured report for archiving. The text
// contract holds on every path.
func (c *Controller) RunDetailed(ctx context.Context, query string) (string, *types.ResearchReport) {
	if strings.TrimSpace(query) == "" {
		return "Please provide a non-empty research question.", nil
	}

	maxRetries := c.cfg.Retry.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	delay := c.cfg.Retry.RetryDelay
	if delay <= 0 {
		delay = 3 * time.Second
	}
	minChars := c.cfg.Retry.MinReportChars
	if minChars <= 0 {
		minChars = report.SubstantialChars
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		// Linearly increasing delay between attempts: attempt 0 waits 0.
		if attempt > 0 {
			if !sleepCtx(ctx, delay*time.Duration(attempt)) {
				return cancelledMessage(ctx), nil
			}
		}

		rep, err := c.attempt(ctx, query)
		if err == nil {
			if len(rep.Body) < minChars {
				return limitedContentMessage(rep.Body), nil
			}
			return rep.Body, &rep
		}

		switch Classify(err) {
		case KindRateLimited:
			if attempt < maxRetries-1 {
				wait := delay * time.Duration(attempt+1)
				fmt.Fprintf(c.w, "rate limit encountered, waiting %v before retry\n", wait)
				if !sleepCtx(ctx, wait) {
					return cancelledMessage(ctx), nil
				}
				continue
			}
			return rateLimitedMessage(), nil

		default:
			if attempt < maxRetries-1 {
				fmt.Fprintf(c.w, "error on attempt %d, retrying in %v: %v\n", attempt+1, delay, err)
				if !sleepCtx(ctx, delay) {
					return cancelledMessage(ctx), nil
				}
				continue
			}
			return terminalMessage(err), nil
		}
	}

	return "Maximum retries exceeded. Please try again later or contact support if the issue persists.", nil
}

// attempt builds a fresh pipeline and runs it once. Construction failures
// (missing credentials) count as attempt failures, faithfully retried even
// though retrying cannot fix configuration.
func (c *Controller) attempt(ctx context.Context, query string) (types.ResearchReport, error) {
	p, err := c.factory(c.w)
	if err != nil {
		return types.ResearchReport{}, err
	}
	return p.Execute(ctx, query)
}

// sleepCtx waits d unless the context ends first. Returns false when
// interrupted.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func cancelledMessage(ctx context.Context) string {
	return fmt.Sprintf("Research cancelled: %v", ctx.Err())
}

func limitedContentMessage(body string) string {
	return fmt.Sprintf("Research completed but content seems limited. Here's what was found:\n\n%s\n\n[Note: for more comprehensive results, try refining your query or checking API limits]", body)
}

func rateLimitedMessage() string {
	return `API Rate Limited: the language model provider is currently overloaded. Please try again in a few minutes. For comprehensive research, consider:

1. Breaking your query into smaller, more specific questions
2. Trying again during off-peak hours
3. Using more specific search terms`
}

// terminalMessage renders the final failure after retries are exhausted,
// with remediation guidance specific to the error kind.
func terminalMessage(err error) string {
	switch Classify(err) {
	case KindCapabilityUnavailable:
		return fmt.Sprintf("Search Provider Unavailable: %v\nCheck that the LinkUp integration is configured and the provider endpoint is reachable.", err)
	case KindMissingCredential:
		return fmt.Sprintf("Configuration Error: %v\nAdd the missing key under .secrets/ (gemini-api-key, linkup-api-key) or set it in the config file.", err)
	default:
		return fmt.Sprintf(`Error: %v

Troubleshooting tips:
1. Try simplifying your query
2. Check your API key configuration
3. Ensure a stable internet connection
4. Try breaking complex queries into smaller parts`, err)
	}
}
