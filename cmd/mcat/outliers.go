package main

import (
	"github.com/franz/music-catalog/internal/catalog"
	"github.com/franz/music-catalog/internal/dataset"
	"github.com/franz/music-catalog/internal/util"
	"github.com/spf13/cobra"
)

var outliersCmd = &cobra.Command{
	Use:   "outliers",
	Short: "Show how many tracks fall outside k standard deviations of a column",
	Long: `Compute mean ± k sample standard deviations of a numeric column and
count the tracks inside that interval (edges included). Tracks without a
value are not counted. k defaults to outlier-k from the config.`,
	RunE: runOutliers,
}

func init() {
	rootCmd.AddCommand(outliersCmd)

	outliersCmd.Flags().StringP("column", "c", string(dataset.TrackPopularity), "numeric column")
	outliersCmd.Flags().Float64P("k", "k", 0, "standard deviations to keep (0 uses outlier-k)")
}

func runOutliers(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("column")
	col, err := resolveColumn(name)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	k, _ := cmd.Flags().GetFloat64("k")
	if k <= 0 {
		k = a.cfg.OutlierK
	}

	tracks, err := a.loadCatalog()
	if err != nil {
		return err
	}

	kept, bounds, err := catalog.FilterOutliers(tracks, col, k)
	if err != nil {
		return err
	}
	measured := len(catalog.Values(tracks, col))

	decimals := decimalsFor(col) + 2
	heading(a.out, "Outliers in %s (k = %s)", col, util.FormatNumber(k, 2))
	table := newTable(a.out, "Metric", "Value")
	table.Append([]string{"Tracks with a value", count(measured)})
	if bounds.Valid {
		table.Append([]string{"Mean", util.FormatNumber(bounds.Mean, decimals)})
		table.Append([]string{"Std dev", util.FormatNumber(bounds.StdDev, decimals)})
		table.Append([]string{"Lower bound", util.FormatNumber(bounds.Lower, decimals)})
		table.Append([]string{"Upper bound", util.FormatNumber(bounds.Upper, decimals)})
	} else {
		table.Append([]string{"Bounds", "too few values, nothing filtered"})
	}
	table.Append([]string{"Kept", count(len(kept))})
	table.Append([]string{"Outliers", count(measured - len(kept))})
	table.Render()
	return nil
}
