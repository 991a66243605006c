// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session tracks the search budget for one research session.
package session

import "github.com/pdiddy/deep-research/pkg/types"

// DefaultMaxSearches is the per-session search budget.
const DefaultMaxSearches = 5

// Session counts completed searches against a fixed budget. A Session is
// owned by exactly one pipeline attempt and must be Reset at the start of
// every attempt so budgets do not carry over. Searches are issued
// sequentially by one stage, so the counter needs no locking; a parallel
// search stage would have to serialize access.
type Session struct {
	count int
	max   int
}

// New returns a Session with the given budget. Non-positive budgets fall
// back to DefaultMaxSearches.
func New(maxSearches int) *Session {
	if maxSearches <= 0 {
		maxSearches = DefaultMaxSearches
	}
	return &Session{max: maxSearches}
}

// Reset sets the counter back to zero. Idempotent.
func (s *Session) Reset() {
	s.count = 0
}

// CheckAndReserve reports whether another search may start. It does not
// increment the counter; only a completed search consumes budget.
func (s *Session) CheckAndReserve() bool {
	return s.count < s.max
}

// RecordCompletedSearch increments the counter and returns the new count.
// Call it only after a provider call completes successfully, so failed
// calls do not consume budget.
func (s *Session) RecordCompletedSearch() int {
	s.count++
	return s.count
}

// Count returns the number of completed searches.
func (s *Session) Count() int { return s.count }

// Max returns the session budget.
func (s *Session) Max() int { return s.max }

// NextSequence returns the 1-indexed sequence number the next search
// would be assigned.
func (s *Session) NextSequence() int { return s.count + 1 }

// NextDepth returns the depth for the upcoming search: every third search
// in the session runs deep, the rest run standard.
func (s *Session) NextDepth() types.Depth {
	if s.NextSequence()%3 == 0 {
		return types.DepthDeep
	}
	return types.DepthStandard
}
