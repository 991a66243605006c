// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/archive"
	"github.com/pdiddy/deep-research/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse the report archive (list, show, search, export)",
	Long: `History manages the local archive of accepted research reports. Use
subcommands to list recent reports, show a report body, run full-text
search over archived reports, or export the archive to YAML.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived reports, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := archive.NewStore(archiveConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	sums, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSummaries(sums, jsonOutput)
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print an archived report body",
	Long: `Show prints the full Markdown body of an archived report. Accepts a
unique ID prefix; with no argument it shows the most recent report.`,
	RunE: runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := archive.NewStore(archiveConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	rep, err := lookupReport(store, args)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "# %s (%s)\n\n", rep.Query, rep.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Println(rep.Body)
	return nil
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over archived reports",
	RunE:  runHistorySearch,
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("search query required")
	}

	store, err := archive.NewStore(archiveConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	sums, err := store.SearchReports(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSummaries(sums, jsonOutput)
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the report archive to YAML",
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, err := archive.NewStore(archiveConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	path, err := store.ExportYAML(context.Background())
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

// --- shared helpers ---

func lookupReport(store *archive.Store, args []string) (types.ResearchReport, error) {
	if len(args) > 0 {
		return store.Get(context.Background(), args[0])
	}
	return store.Latest(context.Background())
}

func formatSummaries(sums []archive.Summary, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sums)
	}

	if len(sums) == 0 {
		fmt.Println("No reports found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-12s  %-50s  %-7s  %-8s  %s\n",
		"ID", "Query", "Words", "Searches", "Generated")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, s := range sums {
		query := s.Query
		if len(query) > 50 {
			query = query[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-12s  %-50s  %-7d  %-8d  %s\n",
			s.ID, query, s.WordCount, s.SearchesUsed,
			s.GeneratedAt.Format("2006-01-02 15:04"))
	}

	fmt.Fprintf(os.Stdout, "\n%d reports\n", len(sums))
	return nil
}

func init() {
	historyCmd.PersistentFlags().String("archive-dir", "", "base directory for the report archive (default: reports)")

	historyListCmd.Flags().Int("limit", 0, "maximum reports to list (0 = use default)")
	historyListCmd.Flags().Bool("json", false, "output results as JSON")

	historySearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	historySearchCmd.Flags().Bool("json", false, "output results as JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
