// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/archive"
	"github.com/pdiddy/deep-research/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export an archived report to a file",
	Long: `Export renders an archived report as plain text, Markdown, or a
paginated text document and writes it under the export directory using the
conventional research_report_YYYYMMDD_HHMMSS name. Accepts a unique ID
prefix; with no argument it exports the most recent report.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	formatName, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	store, err := archive.NewStore(archiveConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	rep, err := lookupReport(store, args)
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("output-dir")
	path, err := export.WriteFile(rep, format, outDir)
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

func init() {
	exportCmd.Flags().String("format", "md", "export format: txt, md, or pages")
	exportCmd.Flags().String("output-dir", "reports/exports", "directory for exported files")
	exportCmd.Flags().String("archive-dir", "", "base directory for the report archive (default: reports)")

	rootCmd.AddCommand(exportCmd)
}
