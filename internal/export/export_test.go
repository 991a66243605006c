// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deep-research/pkg/types"
)

func sampleReport() types.ResearchReport {
	return types.ResearchReport{
		Query:        "solar adoption",
		Body:         "# Summary\n\nSolar capacity **doubled**. See [IEA](https://iea.org).\n",
		WordCount:    5,
		SearchesUsed: 5,
		GeneratedAt:  time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"txt", FormatText, false},
		{"text", FormatText, false},
		{"MD", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{" pages ", FormatPaginated, false},
		{"pdf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextStripsMarkdown(t *testing.T) {
	got := Text(sampleReport())
	if strings.ContainsAny(got, "#*") {
		t.Errorf("Text() retained markdown markers: %q", got)
	}
	if !strings.Contains(got, "See IEA.") {
		t.Errorf("Text() should collapse links to their text: %q", got)
	}
}

func TestMarkdownHeader(t *testing.T) {
	got := Markdown(sampleReport())
	assert.True(t, strings.HasPrefix(got, "# Research Report: solar adoption\n"))
	assert.Contains(t, got, "*Generated: 2026-03-14 09:26 UTC*")
	assert.Contains(t, got, "Solar capacity **doubled**", "body passes through unmodified")
}

func TestPaginated(t *testing.T) {
	rep := sampleReport()
	// 100 body lines span three 48-line pages.
	rep.Body = strings.TrimSuffix(strings.Repeat("line of findings\n", 100), "\n")

	got := Paginated(rep)
	assert.Contains(t, got, "RESEARCH REPORT")
	assert.Contains(t, got, "solar adoption")
	assert.Contains(t, got, "March 14, 2026 09:26 UTC")
	assert.Contains(t, got, "- 1 of 3 -")
	assert.Contains(t, got, "- 3 of 3 -")
	assert.NotContains(t, got, "- 4 of")
}

func TestPaginatedShortBodySinglePage(t *testing.T) {
	got := Paginated(sampleReport())
	assert.Contains(t, got, "- 1 of 1 -")
}

func TestFileName(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	tests := []struct {
		f    Format
		want string
	}{
		{FormatText, "research_report_20260314_092653.txt"},
		{FormatMarkdown, "research_report_20260314_092653.md"},
		{FormatPaginated, "research_report_20260314_092653.txt"},
	}
	for _, tt := range tests {
		if got := FileName(ts, tt.f); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteFile(sampleReport(), FormatMarkdown, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Research Report: solar adoption")
	assert.True(t, strings.HasSuffix(path, ".md"))
}
