package main

import (
	"fmt"
	"os"
	"time"

	"github.com/franz/music-catalog/internal/analytics"
	"github.com/franz/music-catalog/internal/util"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var chartsCmd = &cobra.Command{
	Use:   "charts [chart...]",
	Short: "Write chart datasets as JSON",
	Long: `Build chart datasets from the catalog and write each one as indented
JSON to <output>/charts/NN_name.json. Without arguments every chart is
built. A chart can be named by name (pareto), number (6) or file stem
(06_pareto).

A chart that cannot be built is reported and the others are still written.
Use --list to see the available charts.`,
	RunE: runCharts,
}

func init() {
	rootCmd.AddCommand(chartsCmd)

	chartsCmd.Flags().Bool("list", false, "list available charts and exit")
}

func runCharts(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list"); list {
		table := newTable(cmd.OutOrStdout(), "#", "Name", "Kind", "Title")
		for _, c := range analytics.Charts() {
			table.Append([]string{fmt.Sprintf("%02d", c.Seq), c.Name, string(c.Kind), c.Title})
		}
		table.Render()
		return nil
	}

	charts, err := analytics.Select(args)
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

	dir := a.cfg.ChartsDir()
	a.log.Info("Writing %d chart datasets to %s", len(charts), dir)

	var bar *progressbar.ProgressBar
	if util.IsTerminal(os.Stderr.Fd()) && !a.log.IsQuiet() {
		bar = progressbar.NewOptions(len(charts),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Charts"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
		)
	}

	datasets, failures := analytics.Generate(charts, tracks, func(c analytics.Chart, err error) {
		if bar != nil {
			bar.Add(1)
		}
		if err != nil {
			a.events.LogChart(c.Name, "", err)
		}
	})
	if bar != nil {
		bar.Finish()
	}

	written := 0
	for _, ds := range datasets {
		path, err := analytics.Write(dir, ds)
		a.events.LogChart(ds.Name, path, err)
		if err != nil {
			failures = append(failures, analytics.Failure{Chart: ds.Name, Err: err})
			continue
		}
		written++
		a.log.Debug("  %s -> %s", ds.Name, path)
	}

	for _, f := range failures {
		a.log.Warn("Chart %s failed: %v", f.Chart, f.Err)
	}

	if written > 0 {
		a.log.Success("Wrote %d of %d chart datasets to %s", written, len(charts), dir)
	}
	if written == 0 && len(failures) > 0 {
		return fmt.Errorf("no chart could be written")
	}
	return nil
}
