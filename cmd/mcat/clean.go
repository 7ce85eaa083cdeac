package main

import (
	"fmt"

	"github.com/franz/music-catalog/internal/clean"
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean the raw export and write the canonical snapshot",
	Long: `Load the raw export, run the cleaning stages and write the snapshot.

Stages, in order:
1. deduplicate       keep the first row of each track ID
2. drop-incomplete   drop rows missing ID, track name or artist name
3. normalize-text    trim track, artist and album names
4. coerce-types      explicit flag to true/false, release dates to YYYY-MM-DD
5. validate-numeric  drop bad durations and followers, clamp popularity
6. sort              track popularity, highest first

A stage whose columns are absent is skipped with a warning. Every run is
recorded in the history database (see 'mcat history').`,
	RunE: runCleanCmd,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().Bool("list", false, "list the stages in order without running them")
}

func runCleanCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if list, _ := cmd.Flags().GetBool("list"); list {
		cleaner := clean.NewCleaner(clean.Options{}, a.log, a.events)
		for i, name := range cleaner.StageNames() {
			fmt.Fprintf(a.out, "%d. %s\n", i+1, name)
		}
		return nil
	}

	res, err := a.runClean()
	if err != nil {
		return err
	}

	heading(a.out, "Cleaning stages")
	table := newTable(a.out, "#", "Stage", "Before", "After", "Removed", "Changed", "Note")
	for i, st := range res.result.Stages {
		note := st.Note
		if st.Skipped {
			note = "skipped: " + note
		}
		table.Append([]string{
			count(i + 1),
			st.Name,
			count(st.RowsBefore),
			count(st.RowsAfter),
			count(st.Removed()),
			count(st.Changed),
			note,
		})
	}
	table.SetFooter([]string{"", "total", count(res.result.RowsIn), count(res.result.RowsOut), count(res.result.Removed()), "", ""})
	table.Render()

	if res.run != nil {
		a.log.Info("Run %s recorded in %s", res.run.ID, a.cfg.DBPath)
	}
	if !res.saved {
		a.log.Warn("Snapshot was not written; the next command will clean again")
	}
	a.log.Debug("Cleaning took %s", res.result.Duration)
	return nil
}
