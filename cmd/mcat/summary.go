package main

import (
	"fmt"
	"io"

	"github.com/franz/music-catalog/internal/catalog"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a summary of the catalog and the top artists",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().IntP("top", "n", 5, "number of top artists to show")
}

func runSummary(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	tracks, err := a.loadCatalog()
	if err != nil {
		return err
	}

	n, _ := cmd.Flags().GetInt("top")
	printSummary(a.out, catalog.Summarize(tracks))
	printTopArtists(a.out, catalog.TopArtists(tracks, n))
	return nil
}

func printSummary(w io.Writer, s catalog.Summary) {
	heading(w, "Data summary")
	table := newTable(w, "Metric", "Value")
	table.Append([]string{"Tracks", count(s.Tracks)})
	table.Append([]string{"Artists", count(s.Artists)})
	table.Append([]string{"Albums", count(s.Albums)})
	table.Append([]string{"Explicit tracks", fmt.Sprintf("%s (%.1f%%)",
		count(s.Explicit), catalog.Percentage(float64(s.Explicit), float64(s.Tracks)))})
	table.Append([]string{"Avg popularity", num(s.AvgPopularity, 1)})
	if s.YearMin.Valid {
		table.Append([]string{"Release years", fmt.Sprintf("%.0f - %.0f", s.YearMin.Value, s.YearMax.Value)})
	}
	table.Append([]string{"Avg duration (min)", num(s.AvgDuration, 2)})
	table.Append([]string{"Duration range (min)", num(s.MinDuration, 2) + " - " + num(s.MaxDuration, 2)})
	table.Append([]string{"Avg followers", num(s.AvgFollowers, 0)})
	table.Append([]string{"Max followers", num(s.MaxFollowers, 0)})
	table.Append([]string{"Avg album tracks", num(s.AvgAlbumTracks, 1)})
	table.Render()
}

func printTopArtists(w io.Writer, ranks []catalog.ArtistRank) {
	if len(ranks) == 0 {
		return
	}
	heading(w, "Top %d artists", len(ranks))
	table := newTable(w, "#", "Artist", "Popularity", "Tracks")
	for i, r := range ranks {
		table.Append([]string{count(i + 1), r.Artist, fmt.Sprintf("%.0f", r.Popularity), count(r.Tracks)})
	}
	table.Render()
}
