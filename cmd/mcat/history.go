package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/franz/music-catalog/internal/store"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recent cleaning runs",
	Long: `List recent cleaning runs, newest first. With a run ID (or a unique
prefix of one) the stage breakdown of that run is shown instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "l", 10, "number of runs to list (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	db, err := a.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 1 {
		return showRun(a, db, args[0])
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := db.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		a.log.Info("No cleaning runs recorded yet (run 'mcat clean')")
		return nil
	}

	heading(a.out, "Cleaning runs")
	table := newTable(a.out, "Run", "Started", "Status", "Encoding", "Rows in", "Rows out", "Removed", "Duration")
	for _, r := range runs {
		duration := ""
		if !r.FinishedAt.IsZero() {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		table.Append([]string{
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			statusText(r.Status),
			r.Encoding,
			count(r.RowsIn),
			count(r.RowsOut),
			count(r.Removed()),
			duration,
		})
	}
	table.Render()
	return nil
}

// showRun prints the stages of the run whose ID starts with prefix
func showRun(a *app, db *store.Store, prefix string) error {
	runs, err := db.ListRuns(0)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	var match *store.Run
	for _, r := range runs {
		if strings.HasPrefix(r.ID, prefix) {
			if match != nil {
				return fmt.Errorf("run prefix %q is ambiguous", prefix)
			}
			match = r
		}
	}
	if match == nil {
		return fmt.Errorf("run %q not found", prefix)
	}

	stages, err := db.GetStageResults(match.ID)
	if err != nil {
		return fmt.Errorf("failed to read stage results: %w", err)
	}

	heading(a.out, "Run %s (%s)", match.ID, statusText(match.Status))
	fmt.Fprintf(a.out, "Source:   %s\n", match.SourcePath)
	if match.SnapshotPath != "" {
		fmt.Fprintf(a.out, "Snapshot: %s\n", match.SnapshotPath)
	}
	if match.Error != "" {
		color.New(color.FgRed).Fprintf(a.out, "Error:    %s\n", match.Error)
	}

	if len(stages) == 0 {
		return nil
	}
	table := newTable(a.out, "#", "Stage", "Before", "After", "Changed", "ms", "Note")
	for _, st := range stages {
		note := st.Note
		if st.Skipped {
			note = "skipped: " + note
		}
		table.Append([]string{
			count(st.Seq),
			st.Stage,
			count(st.RowsBefore),
			count(st.RowsAfter),
			count(st.Changed),
			fmt.Sprintf("%d", st.DurationMs),
			note,
		})
	}
	table.Render()
	return nil
}

func statusText(status string) string {
	switch status {
	case store.StatusSucceeded:
		return color.GreenString(status)
	case store.StatusFailed:
		return color.RedString(status)
	default:
		return color.YellowString(status)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
