package main

import (
	"fmt"

	"github.com/franz/music-catalog/internal/catalog"
	"github.com/franz/music-catalog/internal/dataset"
	"github.com/franz/music-catalog/internal/util"
	"github.com/spf13/cobra"
)

var binsCmd = &cobra.Command{
	Use:   "bins",
	Short: "Group a numeric column into categories",
	Long: `Partition a numeric column into right-closed intervals (lo, hi] and
count the tracks in each.

Use --bins for equal-width intervals over the observed range, or --edges
for explicit boundaries. Labels default to Cat_1..Cat_n.

Example:
  mcat bins -c track_popularity --edges 0,30,60,100 --labels low,mid,high`,
	RunE: runBins,
}

func init() {
	rootCmd.AddCommand(binsCmd)

	binsCmd.Flags().StringP("column", "c", string(dataset.TrackPopularity), "numeric column")
	binsCmd.Flags().IntP("bins", "b", 5, "number of equal-width bins (ignored with --edges)")
	binsCmd.Flags().Float64Slice("edges", nil, "explicit bin edges, ascending")
	binsCmd.Flags().StringSlice("labels", nil, "bin labels, one per bin")
}

func runBins(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("column")
	col, err := resolveColumn(name)
	if err != nil {
		return err
	}

	var spec catalog.BinSpec
	spec.Edges, _ = cmd.Flags().GetFloat64Slice("edges")
	spec.Labels, _ = cmd.Flags().GetStringSlice("labels")
	if len(spec.Labels) == 0 {
		spec.Labels = nil
	}
	if len(spec.Edges) == 0 {
		spec.Edges = nil
		spec.Count, _ = cmd.Flags().GetInt("bins")
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

	b, err := catalog.BinColumn(tracks, col, spec)
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrValidation, err)
	}

	binned := 0
	for _, c := range b.Counts {
		binned += c
	}

	decimals := decimalsFor(col) + 2
	heading(a.out, "%s in %d categories", col, len(b.Labels))
	table := newTable(a.out, "Category", "Interval", "Tracks", "Share")
	for i, label := range b.Labels {
		interval := fmt.Sprintf("(%s, %s]",
			util.FormatNumber(b.Edges[i], decimals), util.FormatNumber(b.Edges[i+1], decimals))
		table.Append([]string{
			label,
			interval,
			count(b.Counts[i]),
			fmt.Sprintf("%.1f%%", catalog.Percentage(float64(b.Counts[i]), float64(binned))),
		})
	}
	table.Render()

	if outside := len(tracks) - binned; outside > 0 {
		a.log.Info("%s tracks have no value or fall outside the edges", count(outside))
	}
	return nil
}
