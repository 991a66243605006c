// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pdiddy/deep-research/internal/gemini"
	"github.com/pdiddy/deep-research/internal/linkup"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindGeneric},
		{"plain error", errors.New("boom"), KindGeneric},
		{"typed pipeline error", errKind(KindProvider, "search failed", nil), KindProvider},
		{"wrapped pipeline error", fmt.Errorf("stage: %w", errKind(KindMissingCredential, "no key", nil)), KindMissingCredential},
		{"typed rate limit", &gemini.RateLimitError{StatusCode: 429, Message: "slow down"}, KindRateLimited},
		{"wrapped rate limit", fmt.Errorf("synthesis stage: %w", &gemini.RateLimitError{StatusCode: 503}), KindRateLimited},
		{"capability unavailable", fmt.Errorf("search stage: %w", linkup.ErrUnavailable), KindCapabilityUnavailable},
		{"linkup credential", linkup.ErrMissingAPIKey, KindMissingCredential},
		{"gemini credential", gemini.ErrMissingAPIKey, KindMissingCredential},
		{"vocabulary rate limit", errors.New("provider said: Rate Limit exceeded"), KindRateLimited},
		{"vocabulary overloaded", errors.New("model is OVERLOADED right now"), KindRateLimited},
		{"vocabulary quota", errors.New("quota exhausted for project"), KindRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	base := errors.New("underlying")
	e := errKind(KindProvider, "calling provider", base)
	if got := e.Error(); got != "calling provider: underlying" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(e, base) {
		t.Error("errKind should wrap the underlying error")
	}
}
