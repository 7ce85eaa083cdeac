package main

import (
	"fmt"

	"github.com/franz/music-catalog/internal/report"
	"github.com/franz/music-catalog/internal/store"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a Markdown data summary report",
	Long: `Generate a data summary report in Markdown format.

The report includes:
- Catalog overview (tracks, artists, albums, explicit share, years)
- Duration and follower statistics
- Top artists and most popular tracks
- The last cleaning run and its stages, when history is available
- Chart datasets already written by 'mcat charts'

The report is saved to <artifacts>/reports/summary-<timestamp>.md`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	// Report-specific flags
	reportCmd.Flags().String("out", "", "output file (default: <artifacts>/reports/summary-<timestamp>.md)")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	tracks, err := a.loadCatalog()
	if err != nil {
		return err
	}

	// History is optional for the report
	var db *store.Store
	if db, err = a.openStore(); err != nil {
		a.log.Warn("Run history unavailable: %v", err)
		db = nil
	} else {
		defer db.Close()
	}

	a.log.Info("Analyzing data...")
	summaryReport, err := report.GenerateSummaryReport(tracks, db, a.cfg.ChartsDir())
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	summaryReport.EventLogPath = a.events.Path()
	if summaryReport.SnapshotPath == "" {
		summaryReport.SnapshotPath = a.cfg.SnapshotPath
	}

	outputPath, _ := cmd.Flags().GetString("out")
	if outputPath == "" {
		outputPath = report.DefaultReportPath(a.cfg.ReportsDir())
	}

	if err := report.WriteMarkdownReport(summaryReport, outputPath); err != nil {
		return err
	}

	a.log.Success("Report written to %s", outputPath)
	fmt.Fprintln(a.out, outputPath)
	return nil
}
