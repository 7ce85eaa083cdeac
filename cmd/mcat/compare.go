package main

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/franz/music-catalog/internal/catalog"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare [artist] [artist]",
	Short: "Compare two artists side by side",
	Long: `Compare two artists on track count, popularity, followers, duration,
albums, explicit content and genres. Names match case-insensitively.

Either name may be a number from the suggestion list, which holds the top
10 artists by popularity. Without arguments the list is printed.`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	tracks, err := a.loadCatalog()
	if err != nil {
		return err
	}

	top := catalog.TopArtists(tracks, 10)
	suggestions := catalog.ArtistNames(top)
	if len(args) < 2 {
		printTopArtists(a.out, top)
		a.log.Info("Pick two artists by name or number: mcat compare 1 2")
		return nil
	}

	left := catalog.ResolveArtist(args[0], suggestions)
	right := catalog.ResolveArtist(args[1], suggestions)

	c := catalog.CompareArtists(tracks, left, right)
	found := 1
	if c.Outcome == catalog.NotFound {
		found = 0
	}
	a.events.LogQuery("compare", left+" vs "+right, found)

	if c.Outcome == catalog.NotFound {
		color.New(color.FgYellow).Fprintf(a.out, "Artist not found: %s\n", strings.Join(c.Missing, ", "))
		return nil
	}

	printComparison(a.out, c)
	return nil
}

func printComparison(w io.Writer, c *catalog.Comparison) {
	heading(w, "%s vs %s", c.Left.Artist, c.Right.Artist)

	better := color.New(color.FgGreen, color.Bold).SprintFunc()
	table := newTable(w, "Metric", c.Left.Artist, c.Right.Artist)
	for _, m := range c.Metrics {
		left, right := m.Left, m.Right
		if m.Label == "Genres" {
			left, right = ellipsis(left, c.Left.GenresCut), ellipsis(right, c.Right.GenresCut)
		}
		switch m.Winner() {
		case -1:
			left = better(left)
		case 1:
			right = better(right)
		}
		table.Append([]string{m.Label, left, right})
	}
	table.Render()
}

// ellipsis marks a value that was shortened for display
func ellipsis(s string, cut bool) string {
	if cut {
		return s + "..."
	}
	return s
}
