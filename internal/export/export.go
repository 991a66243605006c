// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders accepted research reports into downloadable
// formats: plain text, annotated Markdown, and a paginated text document.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/deep-research/internal/report"
	"github.com/pdiddy/deep-research/pkg/types"
)

// Format identifies an export rendering.
type Format string

const (
	FormatText      Format = "txt"
	FormatMarkdown  Format = "md"
	FormatPaginated Format = "pages"
)

// linesPerPage is the body capacity of one page in the paginated format,
// excluding the footer.
const linesPerPage = 48

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "pages", "paginated":
		return FormatPaginated, nil
	}
	return "", fmt.Errorf("unknown export format %q (want txt, md, or pages)", s)
}

// Render produces the report in the requested format.
func Render(rep types.ResearchReport, f Format) (string, error) {
	switch f {
	case FormatText:
		return Text(rep), nil
	case FormatMarkdown:
		return Markdown(rep), nil
	case FormatPaginated:
		return Paginated(rep), nil
	}
	return "", fmt.Errorf("unknown export format %q", f)
}

// Text returns the report body stripped of Markdown formatting.
func Text(rep types.ResearchReport) string {
	return strings.TrimSpace(report.StripMarkdown(rep.Body)) + "\n"
}

// Markdown returns the raw report body preceded by a generated header
// block identifying the query and generation time.
func Markdown(rep types.ResearchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Research Report: %s\n\n", rep.Query)
	fmt.Fprintf(&b, "*Generated: %s*\n\n", rep.GeneratedAt.Format("2006-01-02 15:04 UTC"))
	b.WriteString("---\n\n")
	b.WriteString(rep.Body)
	if !strings.HasSuffix(rep.Body, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

// Paginated renders the report as a plain-text document: a title page
// carrying the query, timestamp, and word count, followed by body pages of
// linesPerPage lines each with a centered page footer.
func Paginated(rep types.ResearchReport) string {
	var b strings.Builder

	b.WriteString(titlePage(rep))

	lines := strings.Split(strings.TrimSpace(report.StripMarkdown(rep.Body)), "\n")
	pages := (len(lines) + linesPerPage - 1) / linesPerPage
	if pages == 0 {
		pages = 1
	}

	for p := 0; p < pages; p++ {
		start := p * linesPerPage
		end := start + linesPerPage
		if end > len(lines) {
			end = len(lines)
		}
		b.WriteString(strings.Join(lines[start:end], "\n"))
		b.WriteString("\n")
		b.WriteString(pageFooter(p+1, pages))
	}

	return b.String()
}

func titlePage(rep types.ResearchReport) string {
	var b strings.Builder
	rule := strings.Repeat("=", 72)
	b.WriteString(rule + "\n\n")
	b.WriteString(center("RESEARCH REPORT") + "\n\n")
	b.WriteString(center(rep.Query) + "\n\n")
	b.WriteString(center(rep.GeneratedAt.Format("January 2, 2006 15:04 UTC")) + "\n")
	b.WriteString(center(fmt.Sprintf("%d words, %d searches",
		rep.WordCount, rep.SearchesUsed)) + "\n\n")
	b.WriteString(rule + "\n\n")
	return b.String()
}

func pageFooter(page, total int) string {
	return "\n" + center(fmt.Sprintf("- %d of %d -", page, total)) + "\n\n"
}

func center(s string) string {
	const width = 72
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", (width-len(s))/2) + s
}

// FileName returns the conventional export file name for a report:
// research_report_YYYYMMDD_HHMMSS plus the format extension.
func FileName(generatedAt time.Time, f Format) string {
	ext := string(f)
	if f == FormatPaginated {
		ext = "txt"
	}
	return fmt.Sprintf("research_report_%s.%s", generatedAt.Format("20060102_150405"), ext)
}

// WriteFile renders the report and writes it under dir using the
// conventional file name, creating dir if needed. It returns the written
// path.
func WriteFile(rep types.ResearchReport, f Format, dir string) (string, error) {
	content, err := Render(rep, f)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(rep.GeneratedAt, f))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}
