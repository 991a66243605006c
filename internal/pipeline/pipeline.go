// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the two-stage research pipeline: a budgeted
// search stage feeding a synthesis stage, wrapped by a session retry
// controller that always returns text.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/deep-research/internal/gemini"
	"github.com/pdiddy/deep-research/internal/linkup"
	"github.com/pdiddy/deep-research/internal/report"
	"github.com/pdiddy/deep-research/internal/session"
	"github.com/pdiddy/deep-research/pkg/types"
)

// Completer abstracts the language-model capability so tests can supply a
// mock. One Completer serves one role.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Searcher abstracts the budgeted search capability.
type Searcher interface {
	Search(ctx context.Context, query string) (types.SearchRecord, error)
}

// Pipeline runs one two-stage research attempt. Stage 2 never starts
// before stage 1 completes; its input is stage 1's accumulated output.
type Pipeline struct {
	planner Completer
	writer  Completer
	search  Searcher
	session *session.Session
	cfg     types.PipelineConfig
	w       io.Writer
}

// New builds a Pipeline from cfg, constructing the provider clients and a
// fresh search session. Missing credentials fail here so each attempt
// re-checks configuration.
func New(cfg types.PipelineConfig, w io.Writer) (*Pipeline, error) {
	if cfg.LLM.APIKey == "" {
		return nil, errKind(KindMissingCredential, "constructing language model client", gemini.ErrMissingAPIKey)
	}
	if cfg.Search.APIKey == "" {
		return nil, errKind(KindMissingCredential, "constructing search client", linkup.ErrMissingAPIKey)
	}

	sess := session.New(cfg.Search.MaxSearches)
	searchClient := &linkup.Client{
		HTTPClient: httpClient(cfg.Search.Timeout),
		APIKey:     cfg.Search.APIKey,
		UserAgent:  cfg.Search.UserAgent,
	}
	llm := gemini.NewClient(cfg.LLM)

	return &Pipeline{
		planner: llm,
		writer:  llm,
		search:  linkup.NewCapability(searchClient, sess, cfg.Search),
		session: sess,
		cfg:     cfg,
		w:       w,
	}, nil
}

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		return http.DefaultClient
	}
	return &http.Client{Timeout: timeout}
}

// Execute runs both stages under the pipeline's wall-clock ceiling and
// returns the synthesized report. The session budget is reset at the start
// so retry attempts never inherit a spent budget.
func (p *Pipeline) Execute(ctx context.Context, query string) (types.ResearchReport, error) {
	if p.cfg.MaxExecutionTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.MaxExecutionTime)
		defer cancel()
	}

	p.session.Reset()

	searchContext, depths, err := p.runSearchStage(ctx, query)
	if err != nil {
		return types.ResearchReport{}, fmt.Errorf("search stage: %w", err)
	}

	body, err := p.runSynthesisStage(ctx, query, searchContext)
	if err != nil {
		return types.ResearchReport{}, fmt.Errorf("synthesis stage: %w", err)
	}

	return types.ResearchReport{
		Query:        query,
		Body:         body,
		WordCount:    report.WordCount(body),
		SearchesUsed: p.session.Count(),
		DepthProfile: depths,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// runSearchStage plans strategic queries and executes them sequentially
// through the budgeted capability, accumulating annotated results as the
// synthesis context plus the depth of each completed search. The stage
// stops early when the capability reports the budget exhausted.
func (p *Pipeline) runSearchStage(ctx context.Context, query string) (string, []types.Depth, error) {
	stageCtx := ctx
	if p.cfg.SearchStage.MaxExecutionTime > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, p.cfg.SearchStage.MaxExecutionTime)
		defer cancel()
	}

	queries, err := p.planQueries(stageCtx, query)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	var depths []types.Depth
	for _, q := range queries {
		rec, err := p.search.Search(stageCtx, q)
		if err != nil {
			return "", nil, err
		}
		if rec.LimitReached {
			fmt.Fprintf(p.w, "search budget exhausted after %d searches\n", p.session.Count())
			break
		}
		fmt.Fprintf(p.w, "search %d/%d (%s): %s\n", rec.Sequence, p.session.Max(), rec.Depth, q)
		if rec.Sequence > 0 {
			depths = append(depths, rec.Depth)
		}
		b.WriteString(rec.Text)
		b.WriteString("\n\n")
	}

	if err := stageCtx.Err(); err != nil {
		return "", nil, err
	}
	if b.Len() == 0 {
		return "", nil, errors.New("no search results gathered")
	}
	return b.String(), depths, nil
}

// planQueries asks the search-role model for strategic queries, retrying
// within the stage's iteration ceiling. Rate limits propagate so the
// session controller can back off; any other planning failure falls back
// to template-derived angle queries rather than aborting the stage.
func (p *Pipeline) planQueries(ctx context.Context, query string) ([]string, error) {
	max := p.session.Max()

	prompt, err := renderPlannerPrompt(query, max)
	if err != nil {
		return nil, err
	}

	iterations := p.cfg.SearchStage.MaxIterations
	if iterations <= 0 {
		iterations = 1
	}

	var lastErr error
	for i := 0; i < iterations; i++ {
		text, err := p.planner.Complete(ctx, prompt)
		if err == nil {
			if queries := parsePlannedQueries(text, max); len(queries) > 0 {
				return queries, nil
			}
			lastErr = errors.New("planner returned no queries")
			continue
		}
		if Classify(err) == KindRateLimited || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		lastErr = err
	}

	fmt.Fprintf(p.w, "query planning failed (%v), using fallback angles\n", lastErr)
	return fallbackQueries(query, max), nil
}

// runSynthesisStage turns the accumulated search context into the report
// body using the writer role, retrying within its iteration ceiling.
func (p *Pipeline) runSynthesisStage(ctx context.Context, query, searchContext string) (string, error) {
	stageCtx := ctx
	if p.cfg.WriterStage.MaxExecutionTime > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, p.cfg.WriterStage.MaxExecutionTime)
		defer cancel()
	}

	prompt, err := renderWriterPrompt(query, searchContext)
	if err != nil {
		return "", err
	}

	iterations := p.cfg.WriterStage.MaxIterations
	if iterations <= 0 {
		iterations = 1
	}

	var lastErr error
	for i := 0; i < iterations; i++ {
		text, err := p.writer.Complete(stageCtx, prompt)
		if err == nil {
			if strings.TrimSpace(text) != "" {
				return text, nil
			}
			lastErr = errors.New("writer returned empty report")
			continue
		}
		if Classify(err) == KindRateLimited || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}
