// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"strings"
	"testing"
)

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"headings", "# Title\n## Section", " Title\n Section"},
		{"emphasis", "this is **bold** and *italic*", "this is bold and italic"},
		{"code", "`code` span", "code span"},
		{"links collapse to text", "see [the report](https://example.com/r)", "see the report"},
		{"plain text untouched", "no markup here", "no markup here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdown(tt.in); got != tt.want {
				t.Errorf("StripMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"plain words", "one two three", 3},
		{"markers not counted", "# Heading\n**bold** word", 3},
		{"link counts as its text", "[two words](https://example.com)", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WordCount(tt.in); got != tt.want {
				t.Errorf("WordCount(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestSubstantial(t *testing.T) {
	if Substantial(strings.Repeat("a", SubstantialChars-1)) {
		t.Error("body below threshold reported substantial")
	}
	if !Substantial(strings.Repeat("a", SubstantialChars)) {
		t.Error("body at threshold reported not substantial")
	}
}

func TestComprehensive(t *testing.T) {
	short := strings.Repeat("word ", ComprehensiveWords-1)
	long := strings.Repeat("word ", ComprehensiveWords)
	if Comprehensive(short) {
		t.Error("999 words reported comprehensive")
	}
	if !Comprehensive(long) {
		t.Error("1000 words reported not comprehensive")
	}
}

func TestEstimatePages(t *testing.T) {
	if got := EstimatePages("just a few words"); got != 1 {
		t.Errorf("EstimatePages(short) = %d, want 1", got)
	}
	if got := EstimatePages(strings.Repeat("word ", 1500)); got != 3 {
		t.Errorf("EstimatePages(1500 words) = %d, want 3", got)
	}
}
