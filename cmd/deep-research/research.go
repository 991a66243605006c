// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deep-research/internal/archive"
	"github.com/pdiddy/deep-research/internal/pipeline"
	"github.com/pdiddy/deep-research/internal/report"
	"github.com/pdiddy/deep-research/internal/secrets"
	"github.com/pdiddy/deep-research/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [question]",
	Short: "Run a research session and produce a report",
	Long: `Research runs the full two-stage pipeline for a question: up to five
budgeted web searches (every third search at deep intensity) followed by
report synthesis. The session retries transient failures with escalating
backoff for rate limits, and always prints a result or an actionable
message. Accepted reports are saved to the local archive.`,
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	cfg := pipelineConfig(cmd)

	ctx := context.Background()
	if cfg.MaxExecutionTime > 0 {
		// Leave headroom for the retry controller's backoff waits.
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*cfg.MaxExecutionTime)
		defer cancel()
	}

	controller := pipeline.NewController(cfg, os.Stderr)
	text, rep := controller.RunDetailed(ctx, queryText)

	fmt.Println(text)

	if rep == nil {
		return nil
	}

	printReportStatus(rep)

	noArchive, _ := cmd.Flags().GetBool("no-archive")
	if noArchive {
		return nil
	}

	store, err := archive.NewStore(archiveConfig(cmd))
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer store.Close()

	id, err := store.Save(ctx, *rep)
	if err != nil {
		return fmt.Errorf("archiving report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Archived as %s\n", id)
	return nil
}

func printReportStatus(rep *types.ResearchReport) {
	status := "partial"
	if report.Comprehensive(rep.Body) {
		status = "comprehensive"
	}
	fmt.Fprintf(os.Stderr, "\n%s report: %d words (~%d pages), %d searches used\n",
		status, rep.WordCount, report.EstimatePages(rep.Body), rep.SearchesUsed)
}

// pipelineConfig assembles the pipeline configuration from defaults, the
// config file, and flags, in increasing precedence. API keys come from the
// config file first, falling back to .secrets/.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()

	if viper.IsSet("llm.model") {
		cfg.LLM.Model = viper.GetString("llm.model")
	}
	if viper.IsSet("llm.temperature") {
		cfg.LLM.Temperature = viper.GetFloat64("llm.temperature")
	}
	if viper.IsSet("search.max_searches") {
		cfg.Search.MaxSearches = viper.GetInt("search.max_searches")
	}
	if viper.IsSet("search.pacing_delay") {
		cfg.Search.PacingDelay = viper.GetDuration("search.pacing_delay")
	}
	if viper.IsSet("retry.max_retries") {
		cfg.Retry.MaxRetries = viper.GetInt("retry.max_retries")
	}
	if viper.IsSet("retry.retry_delay") {
		cfg.Retry.RetryDelay = viper.GetDuration("retry.retry_delay")
	}

	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.LLM.Model = model
	}
	if maxSearches, _ := cmd.Flags().GetInt("max-searches"); maxSearches > 0 {
		cfg.Search.MaxSearches = maxSearches
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.MaxExecutionTime = timeout
	}

	cfg.LLM.APIKey = secretDefault(secrets.KeyGemini, viper.GetString("llm.api_key"))
	cfg.Search.APIKey = secretDefault(secrets.KeyLinkup, viper.GetString("search.api_key"))

	return cfg
}

func archiveConfig(cmd *cobra.Command) types.ArchiveConfig {
	dir, _ := cmd.Flags().GetString("archive-dir")
	if dir == "" {
		dir = viper.GetString("archive.dir")
	}
	if dir == "" {
		dir = "reports"
	}
	return types.ArchiveConfig{Dir: dir}
}

func init() {
	researchCmd.Flags().String("query", "", "research question (alternative to positional args)")
	researchCmd.Flags().String("model", "", "language model identifier")
	researchCmd.Flags().Int("max-searches", 0, "search budget per session (default 5)")
	researchCmd.Flags().Duration("timeout", 10*time.Minute, "wall-clock ceiling for one pipeline attempt")
	researchCmd.Flags().String("archive-dir", "", "base directory for the report archive (default: reports)")
	researchCmd.Flags().Bool("no-archive", false, "do not save the report to the archive")

	rootCmd.AddCommand(researchCmd)
}
