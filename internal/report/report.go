// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report analyzes synthesized report text: word counts with
// markdown stripped, substantiality thresholds, and page estimates.
package report

import (
	"math"
	"regexp"
	"strings"
)

const (
	// SubstantialChars is the minimum body length for a report to be
	// accepted as non-degenerate.
	SubstantialChars = 500

	// ComprehensiveWords is the word count at which a report counts as
	// comprehensive.
	ComprehensiveWords = 1000

	// wordsPerPage approximates a printed page for the page estimate.
	wordsPerPage = 500
)

var (
	markerPattern = regexp.MustCompile("[*#`]")
	linkPattern   = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
)

// StripMarkdown removes emphasis and heading markers and collapses link
// syntax to the link text.
func StripMarkdown(body string) string {
	clean := markerPattern.ReplaceAllString(body, "")
	return linkPattern.ReplaceAllString(clean, "$1")
}

// WordCount counts whitespace-separated words in the stripped body.
func WordCount(body string) int {
	return len(strings.Fields(StripMarkdown(body)))
}

// Substantial reports whether the body meets the acceptance threshold.
func Substantial(body string) bool {
	return len(body) >= SubstantialChars
}

// Comprehensive reports whether the body meets the comprehensive word count.
func Comprehensive(body string) bool {
	return WordCount(body) >= ComprehensiveWords
}

// EstimatePages returns the approximate printed page count, at least 1.
func EstimatePages(body string) int {
	pages := int(math.Round(float64(WordCount(body)) / wordsPerPage))
	if pages < 1 {
		return 1
	}
	return pages
}
