// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures used across pipeline stages.
package types

import "time"

// Depth selects how thorough a single web search is.
type Depth string

const (
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// OutputType selects the shape of the search provider's response.
type OutputType string

const (
	OutputSearchResults OutputType = "searchResults"
	OutputSourcedAnswer OutputType = "sourcedAnswer"
	OutputStructured    OutputType = "structured"
)

// SearchRecord is the outcome of one budgeted search call.
type SearchRecord struct {
	// Query is the query string sent to the provider.
	Query string `json:"query" yaml:"query"`

	// Sequence is the 1-indexed position of this search within the session.
	// Zero when the call was denied by the budget.
	Sequence int `json:"sequence" yaml:"sequence"`

	// Depth is the depth the provider was invoked with.
	Depth Depth `json:"depth" yaml:"depth"`

	// Text is the annotated result text handed to the synthesis stage. On a
	// provider failure it carries a descriptive error message instead, so one
	// failed search does not abort the session.
	Text string `json:"text" yaml:"text"`

	// Truncated reports whether the provider response was cut to the
	// configured character ceiling.
	Truncated bool `json:"truncated" yaml:"truncated"`

	// LimitReached reports that the session budget was exhausted before this
	// call. The stage controller stops issuing searches when it is set; Text
	// still carries the soft-limit message for the synthesis context.
	LimitReached bool `json:"limit_reached" yaml:"limit_reached"`
}

// ResearchReport is the final synthesized artifact of one pipeline run.
type ResearchReport struct {
	// Query is the research question the report answers.
	Query string `json:"query" yaml:"query"`

	// Body is the markdown-formatted report text.
	Body string `json:"body" yaml:"body"`

	// WordCount is computed from Body with markdown markers stripped.
	WordCount int `json:"word_count" yaml:"word_count"`

	// SearchesUsed is how many budgeted searches completed during the run.
	SearchesUsed int `json:"searches_used" yaml:"searches_used"`

	// DepthProfile lists the depth of each completed search in order, so an
	// archived report records how the budget was spent.
	DepthProfile []Depth `json:"depth_profile,omitempty" yaml:"depth_profile,omitempty"`

	// GeneratedAt is when the synthesis stage finished.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}
