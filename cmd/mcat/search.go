package main

import (
	"strings"

	"github.com/fatih/color"
	"github.com/franz/music-catalog/internal/catalog"
	"github.com/franz/music-catalog/internal/util"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search tracks by name",
	Long: `Find tracks whose name contains the query, ignoring case.
Accented letters must match ("cafe" does not find "café").
Results are ordered by popularity and each (track, artist) pair is shown
once. The number of rows shown is capped by --limit (default from
search-limit in the config).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Int("limit", 0, "maximum number of results (0 uses search-limit)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	tracks, err := a.loadCatalog()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	results := catalog.Search(tracks, query)
	a.events.LogQuery("search", query, len(results))

	if len(results) == 0 {
		color.New(color.FgYellow).Fprintf(a.out, "No tracks found matching %q\n", query)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = a.cfg.SearchLimit
	}
	shown := results
	if len(shown) > limit {
		shown = shown[:limit]
	}

	heading(a.out, "%d tracks matching %q", len(results), query)
	table := newTable(a.out, "Track", "Artist", "Popularity", "Album", "Duration (min)", "Explicit")
	for _, r := range shown {
		table.Append([]string{
			util.Truncate(r.Name, 40),
			util.Truncate(r.Artist, 30),
			num(r.Popularity, 0),
			util.Truncate(r.Album, 30),
			num(r.Duration, 2),
			yesNo(r.Explicit),
		})
	}
	table.Render()

	if len(results) > len(shown) {
		a.log.Info("Showing %d of %d results (use --limit to see more)", len(shown), len(results))
	}
	return nil
}
