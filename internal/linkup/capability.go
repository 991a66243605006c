// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package linkup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/deep-research/internal/session"
	"github.com/pdiddy/deep-research/pkg/types"
)

// ErrUnavailable indicates the search capability was constructed without a
// provider client.
var ErrUnavailable = errors.New("search provider unavailable: no LinkUp client configured")

// Capability wraps the LinkUp client with session budgeting, depth
// escalation, pacing, and result truncation. One Capability serves one
// pipeline attempt and shares its Session with the attempt.
type Capability struct {
	client  *Client
	session *session.Session
	cfg     types.SearchConfig
}

// NewCapability builds a Capability over client and sess. A nil client is
// allowed; every Search then fails with ErrUnavailable.
func NewCapability(client *Client, sess *session.Session, cfg types.SearchConfig) *Capability {
	if cfg.MaxResultChars <= 0 {
		cfg.MaxResultChars = 4000
	}
	if cfg.OutputType == "" {
		cfg.OutputType = types.OutputSearchResults
	}
	return &Capability{client: client, session: sess, cfg: cfg}
}

// Search runs one budgeted search call.
//
// A denied budget is a soft stop, not an error: the returned record carries
// LimitReached and a message telling the caller to work with existing
// results. Provider failures are likewise absorbed into the record text so
// one failed search does not abort the session. Only a missing capability
// or credential is a hard error.
func (c *Capability) Search(ctx context.Context, query string) (types.SearchRecord, error) {
	if c.client == nil {
		return types.SearchRecord{}, ErrUnavailable
	}

	if !c.session.CheckAndReserve() {
		return types.SearchRecord{
			Query:        query,
			LimitReached: true,
			Text: fmt.Sprintf("Maximum search limit (%d) reached. Please analyze existing results.",
				c.session.Max()),
		}, nil
	}

	if c.client.APIKey == "" {
		return types.SearchRecord{}, ErrMissingAPIKey
	}

	depth := c.session.NextDepth()

	// Pace provider calls to stay under rate limits.
	if c.cfg.PacingDelay > 0 {
		select {
		case <-ctx.Done():
			return types.SearchRecord{}, ctx.Err()
		case <-time.After(c.cfg.PacingDelay):
		}
	}

	raw, err := c.client.Search(ctx, query, depth, c.cfg.OutputType)
	if err != nil {
		if errors.Is(err, ErrMissingAPIKey) {
			return types.SearchRecord{}, err
		}
		return types.SearchRecord{
			Query: query,
			Depth: depth,
			Text:  fmt.Sprintf("Error occurred while searching: %v", err),
		}, nil
	}

	seq := c.session.RecordCompletedSearch()

	text := raw
	truncated := false
	// The ceiling counts characters, not bytes, so multibyte results are
	// cut on a rune boundary.
	if runes := []rune(text); len(runes) > c.cfg.MaxResultChars {
		text = string(runes[:c.cfg.MaxResultChars]) +
			fmt.Sprintf("\n... [Results truncated at %d chars for efficiency, search %d using %s depth]",
				c.cfg.MaxResultChars, seq, depth)
		truncated = true
	}

	return types.SearchRecord{
		Query:     query,
		Sequence:  seq,
		Depth:     depth,
		Truncated: truncated,
		Text:      fmt.Sprintf("Search %d/%d (%s depth):\n%s", seq, c.session.Max(), depth, text),
	}, nil
}
