// Package clean turns a raw catalog table into the canonical table: unique
// identifiers, no incomplete rows, trimmed text, strict booleans and dates,
// validated numbers, sorted by popularity.
package clean

import (
	"fmt"
	"strings"
	"time"

	"github.com/franz/music-catalog/internal/dataset"
	"github.com/franz/music-catalog/internal/report"
	"github.com/franz/music-catalog/internal/util"
)

// Options controls pipeline side effects
type Options struct {
	AtomicSnapshot bool
}

// StageStats records what one stage did
type StageStats struct {
	Name       string
	RowsBefore int
	RowsAfter  int
	Changed    int // cells rewritten, or rows moved for the sort stage
	Skipped    bool
	Note       string
	Duration   time.Duration
}

// Removed returns how many rows the stage dropped
func (s StageStats) Removed() int {
	return s.RowsBefore - s.RowsAfter
}

// Result summarises a Clean call
type Result struct {
	RowsIn   int
	RowsOut  int
	Stages   []StageStats
	Duration time.Duration
}

// Removed returns the total number of rows dropped
func (r *Result) Removed() int {
	return r.RowsIn - r.RowsOut
}

// Cleaner runs the cleaning stages in order
type Cleaner struct {
	opts   Options
	log    *util.Logger
	events *report.EventLogger
	stages []Stage
}

// NewCleaner creates a Cleaner with the default stages. events may be nil.
func NewCleaner(opts Options, logger *util.Logger, events *report.EventLogger) *Cleaner {
	return &Cleaner{
		opts:   opts,
		log:    logger,
		events: events,
		stages: DefaultStages(),
	}
}

// Clean runs every stage on a private copy of raw and returns the canonical
// table. raw is never modified. Any stage error aborts the run and no table
// is returned.
func (c *Cleaner) Clean(raw *dataset.Table) (*dataset.Table, *Result, error) {
	start := time.Now()
	t := raw.Clone()
	res := &Result{RowsIn: t.Len()}

	c.log.Info("Cleaning %s rows...", util.FormatNumber(float64(t.Len()), 0))

	for _, stage := range c.stages {
		stats := StageStats{Name: stage.Name, RowsBefore: t.Len()}

		present, ok := stage.runnable(t.Schema)
		if !ok {
			missing := t.Schema.Missing(stage.Columns...)
			stats.Skipped = true
			stats.Note = "missing columns: " + joinColumns(missing)
			stats.RowsAfter = t.Len()
			res.Stages = append(res.Stages, stats)

			c.log.Warn("  %s skipped (%s)", stage.Name, stats.Note)
			c.events.LogSkip(stage.Name, stats.Note)
			continue
		}

		stageStart := time.Now()
		changed, err := stage.apply(t, present)
		if err != nil {
			c.events.LogError(report.EventStage, raw.Source, err)
			return nil, nil, fmt.Errorf("stage %s: %w", stage.Name, err)
		}
		stats.Changed = changed
		stats.RowsAfter = t.Len()
		stats.Duration = time.Since(stageStart)
		if len(present) < len(stage.Columns) {
			stats.Note = "partial: " + joinColumns(t.Schema.Missing(stage.Columns...)) + " absent"
		}
		res.Stages = append(res.Stages, stats)

		if removed := stats.Removed(); removed > 0 {
			c.log.Info("  %s: %s rows removed", stage.Name, util.FormatNumber(float64(removed), 0))
		} else {
			c.log.Debug("  %s: %d cells changed", stage.Name, changed)
		}
		c.events.LogStage(stage.Name, stats.RowsBefore, stats.RowsAfter, stats.Changed, stats.Duration)
	}

	res.RowsOut = t.Len()
	res.Duration = time.Since(start)
	c.log.Success("Cleaning complete: %s valid rows (%s removed)",
		util.FormatNumber(float64(res.RowsOut), 0), util.FormatNumber(float64(res.Removed()), 0))

	return t, res, nil
}

// Save writes the canonical table to the snapshot path
func (c *Cleaner) Save(t *dataset.Table, path string) error {
	start := time.Now()
	err := dataset.WriteSnapshot(path, t, c.opts.AtomicSnapshot)
	c.events.LogSave(path, t.Len(), time.Since(start), err)
	if err != nil {
		c.log.Error("Failed to save snapshot: %v", err)
		return err
	}
	c.log.Success("Snapshot saved to %s", path)
	return nil
}

// StageNames lists the pipeline stages in order
func (c *Cleaner) StageNames() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name
	}
	return names
}

func joinColumns(cols []dataset.Column) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}
