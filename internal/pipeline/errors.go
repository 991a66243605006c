// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/deep-research/internal/gemini"
	"github.com/pdiddy/deep-research/internal/linkup"
)

// Kind classifies a pipeline failure for the session retry controller.
type Kind int

const (
	// KindGeneric covers anything the other kinds do not.
	KindGeneric Kind = iota

	// KindCapabilityUnavailable means a required external capability could
	// not be constructed.
	KindCapabilityUnavailable

	// KindMissingCredential means a required secret is absent; retrying
	// without fixing configuration will not help.
	KindMissingCredential

	// KindProvider means the search provider call itself failed.
	KindProvider

	// KindRateLimited means the model provider signaled overload or quota
	// exhaustion; retried with escalating backoff.
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindCapabilityUnavailable:
		return "capability_unavailable"
	case KindMissingCredential:
		return "missing_credential"
	case KindProvider:
		return "provider"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "generic"
	}
}

// Error is a pipeline failure tagged with its Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Msg != "" {
			return fmt.Sprintf("%s: %v", e.Msg, e.Err)
		}
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// errKind wraps err with an explicit kind.
func errKind(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// rateLimitVocabulary is matched case-insensitively against error text from
// providers that do not surface a typed rate-limit signal.
var rateLimitVocabulary = []string{"rate limit", "overloaded", "quota"}

// Classify maps an error to its Kind. Typed signals from the capability
// wrappers take precedence; free-text vocabulary matching is the fallback
// for wrapped provider messages.
func Classify(err error) Kind {
	if err == nil {
		return KindGeneric
	}

	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}

	var rle *gemini.RateLimitError
	if errors.As(err, &rle) {
		return KindRateLimited
	}

	if errors.Is(err, linkup.ErrUnavailable) {
		return KindCapabilityUnavailable
	}
	if errors.Is(err, linkup.ErrMissingAPIKey) || errors.Is(err, gemini.ErrMissingAPIKey) {
		return KindMissingCredential
	}

	msg := strings.ToLower(err.Error())
	for _, kw := range rateLimitVocabulary {
		if strings.Contains(msg, kw) {
			return KindRateLimited
		}
	}

	return KindGeneric
}
