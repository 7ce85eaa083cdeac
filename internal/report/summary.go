package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franz/music-catalog/internal/catalog"
	"github.com/franz/music-catalog/internal/dataset"
	"github.com/franz/music-catalog/internal/store"
	"github.com/franz/music-catalog/internal/util"
)

// SummaryReport represents a complete data summary report
type SummaryReport struct {
	GeneratedAt time.Time

	// Catalog overview
	Summary    catalog.Summary
	TopArtists []catalog.ArtistRank
	TopTracks  []catalog.Track

	// Last successful cleaning run, if the history has one
	Run    *store.Run
	Stages []store.StageResult

	// Chart dataset files present in the charts directory
	Charts []string

	// Metadata
	SourcePath   string
	SnapshotPath string
	DatabasePath string
	EventLogPath string
}

// GenerateSummaryReport builds a report from the canonical tracks, the run
// history and the chart datasets already written to chartsDir. db and
// chartsDir are optional.
func GenerateSummaryReport(tracks []catalog.Track, db *store.Store, chartsDir string) (*SummaryReport, error) {
	report := &SummaryReport{
		GeneratedAt: time.Now(),
		Summary:     catalog.Summarize(tracks),
		TopArtists:  catalog.TopArtists(tracks, 10),
	}

	top, err := catalog.TopN(tracks, dataset.TrackPopularity, 10, false)
	if err != nil {
		return nil, err
	}
	report.TopTracks = top

	if db != nil {
		report.DatabasePath = db.Path()

		run, err := db.LatestRun()
		if err != nil {
			return nil, fmt.Errorf("failed to read run history: %w", err)
		}
		if run != nil {
			report.Run = run
			report.SourcePath = run.SourcePath
			report.SnapshotPath = run.SnapshotPath

			stages, err := db.GetStageResults(run.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to read stage results: %w", err)
			}
			report.Stages = stages
		}
	}

	if chartsDir != "" {
		report.Charts = gatherCharts(chartsDir)
	}

	return report, nil
}

// gatherCharts lists the chart dataset files in dir, in name order
func gatherCharts(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil
	}
	charts := make([]string, 0, len(matches))
	for _, m := range matches {
		charts = append(charts, filepath.Base(m))
	}
	return charts
}

// WriteMarkdownReport writes the summary report as Markdown
func WriteMarkdownReport(report *SummaryReport, outputPath string) error {
	content := RenderMarkdown(report)

	err := util.WriteFileAtomic(outputPath, 0644, func(w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: failed to write report: %v", util.ErrWriteFailure, err)
	}
	return nil
}

// RenderMarkdown renders the report without writing it
func RenderMarkdown(report *SummaryReport) string {
	var md strings.Builder
	s := report.Summary

	// Header
	md.WriteString("# Music Catalog - Data Summary\n\n")
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))

	if report.SourcePath != "" {
		md.WriteString(fmt.Sprintf("**Source:** `%s`\n\n", report.SourcePath))
	}
	if report.SnapshotPath != "" {
		md.WriteString(fmt.Sprintf("**Snapshot:** `%s`\n\n", report.SnapshotPath))
	}
	if report.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", report.DatabasePath))
	}
	if report.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", report.EventLogPath))
	}

	md.WriteString("---\n\n")

	// Overview
	md.WriteString("## 📊 Overview\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Tracks | %s |\n", util.FormatNumber(float64(s.Tracks), 0)))
	md.WriteString(fmt.Sprintf("| Artists | %s |\n", util.FormatNumber(float64(s.Artists), 0)))
	md.WriteString(fmt.Sprintf("| Albums | %s |\n", util.FormatNumber(float64(s.Albums), 0)))
	md.WriteString(fmt.Sprintf("| Explicit Tracks | %s (%.1f%%) |\n",
		util.FormatNumber(float64(s.Explicit), 0),
		catalog.Percentage(float64(s.Explicit), float64(s.Tracks))))
	md.WriteString(fmt.Sprintf("| Avg Popularity | %s |\n", formatNum(s.AvgPopularity, 1)))
	if s.YearMin.Valid {
		md.WriteString(fmt.Sprintf("| Release Years | %.0f - %.0f |\n", s.YearMin.Value, s.YearMax.Value))
	}
	md.WriteString("\n")

	// Duration and followers
	md.WriteString("## 🎵 Tracks & Artists\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Avg Duration (min) | %s |\n", formatNum(s.AvgDuration, 2)))
	md.WriteString(fmt.Sprintf("| Shortest (min) | %s |\n", formatNum(s.MinDuration, 2)))
	md.WriteString(fmt.Sprintf("| Longest (min) | %s |\n", formatNum(s.MaxDuration, 2)))
	md.WriteString(fmt.Sprintf("| Avg Followers | %s |\n", formatNum(s.AvgFollowers, 0)))
	md.WriteString(fmt.Sprintf("| Max Followers | %s |\n", formatNum(s.MaxFollowers, 0)))
	md.WriteString(fmt.Sprintf("| Avg Album Tracks | %s |\n", formatNum(s.AvgAlbumTracks, 1)))
	md.WriteString("\n")

	// Top artists
	if len(report.TopArtists) > 0 {
		md.WriteString(fmt.Sprintf("## 🏆 Top Artists (Top %d)\n\n", len(report.TopArtists)))
		md.WriteString("| # | Artist | Popularity | Tracks |\n")
		md.WriteString("|---|--------|------------|--------|\n")
		for i, a := range report.TopArtists {
			md.WriteString(fmt.Sprintf("| %d | %s | %.0f | %d |\n",
				i+1, escapeCell(a.Artist), a.Popularity, a.Tracks))
		}
		md.WriteString("\n")
	}

	// Top tracks
	if len(report.TopTracks) > 0 {
		md.WriteString(fmt.Sprintf("## 🔥 Most Popular Tracks (Top %d)\n\n", len(report.TopTracks)))
		md.WriteString("| # | Track | Artist | Popularity |\n")
		md.WriteString("|---|-------|--------|------------|\n")
		for i, t := range report.TopTracks {
			md.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n",
				i+1, escapeCell(util.Truncate(t.Name, 60)), escapeCell(t.Artist), formatNum(t.Popularity, 0)))
		}
		md.WriteString("\n")
	}

	// Cleaning
	if report.Run != nil {
		run := report.Run
		md.WriteString("## 🧹 Cleaning\n\n")
		md.WriteString("| Metric | Value |\n")
		md.WriteString("|--------|-------|\n")
		md.WriteString(fmt.Sprintf("| Run | `%s` |\n", run.ID))
		if run.Encoding != "" {
			md.WriteString(fmt.Sprintf("| Encoding | %s |\n", run.Encoding))
		}
		md.WriteString(fmt.Sprintf("| Rows In | %s |\n", util.FormatNumber(float64(run.RowsIn), 0)))
		md.WriteString(fmt.Sprintf("| Rows Out | %s |\n", util.FormatNumber(float64(run.RowsOut), 0)))
		md.WriteString(fmt.Sprintf("| Rows Removed | %s |\n", util.FormatNumber(float64(run.Removed()), 0)))
		if !run.FinishedAt.IsZero() {
			md.WriteString(fmt.Sprintf("| Finished | %s |\n", run.FinishedAt.Local().Format("2006-01-02 15:04:05")))
		}
		md.WriteString("\n")

		if len(report.Stages) > 0 {
			md.WriteString("| Stage | Before | After | Changed | Note |\n")
			md.WriteString("|-------|--------|-------|---------|------|\n")
			for _, st := range report.Stages {
				note := st.Note
				if st.Skipped {
					note = "⏭️ skipped: " + note
				}
				md.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %s |\n",
					st.Stage, st.RowsBefore, st.RowsAfter, st.Changed, escapeCell(note)))
			}
			md.WriteString("\n")
		}
	}

	// Charts
	if len(report.Charts) > 0 {
		md.WriteString("## 📈 Chart Datasets\n\n")
		for _, c := range report.Charts {
			md.WriteString(fmt.Sprintf("- `%s`\n", c))
		}
		md.WriteString("\n")
	}

	// Footer
	md.WriteString("---\n\n")
	md.WriteString("*Generated by mcat - Music Catalog*\n")

	return md.String()
}

func formatNum(n catalog.Num, decimals int) string {
	if !n.Valid {
		return "N/A"
	}
	return util.FormatNumber(n.Value, decimals)
}

// escapeCell keeps user text from breaking a Markdown table row
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

// DefaultReportPath returns a timestamped report path under dir
func DefaultReportPath(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("summary-%s.md", time.Now().Format("20060102-150405")))
}

// LatestEventLog returns the newest event log in dir, or ""
func LatestEventLog(dir string) string {
	matches, err := filepath.Glob(filepath.Join(dir, "events-*.jsonl"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	// Timestamped names sort chronologically
	latest := matches[len(matches)-1]
	if _, err := os.Stat(latest); err != nil {
		return ""
	}
	return latest
}
