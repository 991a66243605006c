// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// plannerPromptTmpl asks the search-role model for strategically distinct
// queries, one per angle the report needs to cover.
var plannerPromptTmpl = template.Must(template.New("planner").Parse(`You are a comprehensive web researcher planning a systematic, multi-angle investigation of a topic.

Research topic: {{.Query}}

Propose exactly {{.Count}} targeted web search queries covering, in order:
1. Main topic overview and background
2. Current statistics, data, and trends
3. Recent developments and news
4. Expert opinions and analysis
5. Detailed aspects and implications

Each query should be specific and focused on authoritative sources. Respond with only the queries, one per line, no numbering and no other text.
`))

// writerPromptTmpl asks the writer-role model for the structured report.
// The word targets are generation instructions; the controller validates
// only the coarser substantiality threshold.
var writerPromptTmpl = template.Must(template.New("writer").Parse(`You are a skilled research writer who synthesizes multiple sources into coherent, detailed analyses.

Create a comprehensive research report about: {{.Query}}

Requirements:
- Target length: 1500-2000 words (2-3 pages)
- Use ALL provided search results effectively
- Create a well-structured report with clear sections:
  * Executive Summary (150-200 words)
  * Introduction and Background (300-400 words)
  * Key Findings and Analysis (600-800 words)
  * Current Trends and Developments (300-400 words)
  * Conclusion and Implications (200-300 words)

Content guidelines:
- Include specific data, statistics, and examples
- Cite sources appropriately throughout
- Provide balanced analysis with multiple perspectives
- Use clear headings and subheadings
- Include relevant quotes from experts (if available)
- Maintain professional, informative tone
- Ensure logical flow between sections

Format as markdown with proper headings and formatting.

Search results:

{{.Context}}
`))

func renderPlannerPrompt(query string, count int) (string, error) {
	var buf bytes.Buffer
	err := plannerPromptTmpl.Execute(&buf, struct {
		Query string
		Count int
	}{Query: query, Count: count})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderWriterPrompt(query, searchContext string) (string, error) {
	var buf bytes.Buffer
	err := writerPromptTmpl.Execute(&buf, struct {
		Query   string
		Context string
	}{Query: query, Context: searchContext})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// parsePlannedQueries extracts non-empty query lines from the planner
// response, dropping list markers the model may add anyway, capped at max.
func parsePlannedQueries(text string, max int) []string {
	var queries []string
	for _, line := range strings.Split(text, "\n") {
		q := strings.TrimSpace(line)
		q = strings.TrimLeft(q, "-*0123456789.) ")
		if q == "" {
			continue
		}
		queries = append(queries, q)
		if len(queries) == max {
			break
		}
	}
	return queries
}

// fallbackQueries derives the five strategic angles directly from the
// topic when query planning fails.
func fallbackQueries(query string, max int) []string {
	angles := []string{
		"%s overview background",
		"%s statistics data trends",
		"%s recent developments news",
		"%s expert opinion analysis",
		"%s implications detailed aspects",
	}
	var queries []string
	for _, angle := range angles {
		queries = append(queries, fmt.Sprintf(angle, query))
		if len(queries) == max {
			break
		}
	}
	return queries
}
