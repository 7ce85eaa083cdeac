package main

import (
	"github.com/franz/music-catalog/internal/catalog"
	"github.com/franz/music-catalog/internal/dataset"
	"github.com/franz/music-catalog/internal/util"
	"github.com/spf13/cobra"
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "List the tracks with the highest (or lowest) value of a column",
	Long: `List the first N tracks ordered by a numeric column. Ties keep their
catalog order and tracks without a value are left out.

Numeric columns: track_popularity, artist_popularity, artist_followers,
track_duration_min, album_total_tracks, year.`,
	RunE: runTop,
}

func init() {
	rootCmd.AddCommand(topCmd)

	topCmd.Flags().StringP("column", "c", string(dataset.TrackPopularity), "numeric column to rank by")
	topCmd.Flags().IntP("count", "n", 10, "number of tracks")
	topCmd.Flags().Bool("asc", false, "lowest values first")
}

func runTop(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("column")
	n, _ := cmd.Flags().GetInt("count")
	asc, _ := cmd.Flags().GetBool("asc")

	col, err := resolveColumn(name)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	tracks, err := a.loadCatalog()
	if err != nil {
		return err
	}

	top, err := catalog.TopN(tracks, col, n, asc)
	if err != nil {
		return err
	}

	order := "highest"
	if asc {
		order = "lowest"
	}
	heading(a.out, "Top %d tracks by %s (%s first)", len(top), col, order)
	table := newTable(a.out, "#", "Track", "Artist", string(col))
	for i, t := range top {
		v, _ := t.Value(col)
		table.Append([]string{count(i + 1), util.Truncate(t.Name, 40), util.Truncate(t.Artist, 30), util.FormatNumber(v, decimalsFor(col))})
	}
	table.Render()
	return nil
}

// decimalsFor picks display precision for a numeric column
func decimalsFor(c dataset.Column) int {
	if c == dataset.Duration {
		return 2
	}
	return 0
}
