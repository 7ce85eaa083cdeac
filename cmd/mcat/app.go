package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/franz/music-catalog/internal/catalog"
	"github.com/franz/music-catalog/internal/clean"
	"github.com/franz/music-catalog/internal/config"
	"github.com/franz/music-catalog/internal/dataset"
	"github.com/franz/music-catalog/internal/report"
	"github.com/franz/music-catalog/internal/store"
	"github.com/franz/music-catalog/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries what every command needs: the resolved configuration, the
// console logger and the event log. It is built once per invocation.
type app struct {
	cfg    *config.Config
	log    *util.Logger
	events *report.EventLogger
	out    io.Writer
}

// newApp resolves configuration and opens the event log
func newApp(cmd *cobra.Command) (*app, error) {
	if configErr != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidConfig, configErr)
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	if !cfg.Color {
		color.NoColor = true
	}

	logCfg := cfg.LogConfig()
	// Colour only when stderr is a terminal
	logCfg.Colors = logCfg.Colors && util.IsTerminal(os.Stderr.Fd())
	logger := util.NewLogger(logCfg)

	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("Using config file: %s", used)
	}

	level, err := report.ParseEventLevel(strings.ToLower(cfg.EventLevel))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}

	events, err := report.NewEventLogger(cfg.ArtifactsDir, level)
	if err != nil {
		logger.Warn("Failed to create event logger: %v", err)
		events = report.NullLogger()
	}
	if events.Path() != "" {
		logger.Debug("Event log: %s", events.Path())
	}

	return &app{
		cfg:    cfg,
		log:    logger,
		events: events,
		out:    cmd.OutOrStdout(),
	}, nil
}

// Close flushes the event log
func (a *app) Close() {
	a.events.Close()
}

// openStore opens the run history. History is optional, so callers treat a
// failure as a warning.
func (a *app) openStore() (*store.Store, error) {
	db, err := store.Open(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// loadRaw reads the raw export with encoding fallback
func (a *app) loadRaw() (*dataset.Table, error) {
	encodings, err := dataset.Encodings(a.cfg.Encodings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}

	a.log.Info("Loading %s", a.cfg.RawPath)
	raw, err := dataset.Load(a.cfg.RawPath, encodings)
	if err != nil {
		a.events.LogLoad(a.cfg.RawPath, "", 0, err)
		return nil, err
	}
	a.events.LogLoad(a.cfg.RawPath, raw.Encoding, raw.Len(), nil)
	a.log.Info("Loaded %s rows (%s)", util.FormatNumber(float64(raw.Len()), 0), raw.Encoding)
	a.log.Debug("Known columns: %s", columnList(raw.Schema.Positions()))

	for _, c := range []dataset.Column{dataset.TrackID, dataset.TrackName, dataset.ArtistName} {
		if !raw.Schema.Has(c) {
			a.log.Warn("Column %s not found; stages that need it will be skipped", c)
		}
	}
	return raw, nil
}

// columnList joins column names for display
func columnList(cols []dataset.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// cleanResult is the outcome of a full raw-to-snapshot run
type cleanResult struct {
	table  *dataset.Table
	result *clean.Result
	run    *store.Run
	saved  bool
}

// runClean loads the raw export, cleans it, writes the snapshot and records
// the run in the history. Loading and cleaning failures are fatal; a failed
// snapshot write or an unavailable history is reported and tolerated.
func (a *app) runClean() (*cleanResult, error) {
	db, err := a.openStore()
	if err != nil {
		a.log.Warn("Run history unavailable: %v", err)
	} else {
		defer db.Close()
	}

	var run *store.Run
	if db != nil {
		if run, err = db.StartRun(a.cfg.RawPath); err != nil {
			a.log.Warn("Failed to record run: %v", err)
			run = nil
		} else {
			a.events.SetRunID(run.ID)
		}
	}

	out := &cleanResult{run: run}
	fail := func(err error) (*cleanResult, error) {
		if run != nil {
			run.Status = store.StatusFailed
			run.Error = err.Error()
			if ferr := db.FinishRun(run, nil); ferr != nil {
				a.log.Warn("Failed to record run: %v", ferr)
			}
		}
		return nil, err
	}

	raw, err := a.loadRaw()
	if err != nil {
		return fail(err)
	}

	cleaner := clean.NewCleaner(clean.Options{AtomicSnapshot: a.cfg.AtomicSnapshot}, a.log, a.events)
	table, result, err := cleaner.Clean(raw)
	if err != nil {
		return fail(err)
	}
	out.table = table
	out.result = result

	if err := cleaner.Save(table, a.cfg.SnapshotPath); err == nil {
		out.saved = true
	} else {
		a.log.Warn("Continuing without a snapshot")
	}

	if run != nil {
		run.Encoding = raw.Encoding
		run.RowsIn = result.RowsIn
		run.RowsOut = result.RowsOut
		run.Status = store.StatusSucceeded
		if out.saved {
			run.SnapshotPath = a.cfg.SnapshotPath
		}
		if err := db.FinishRun(run, stageResults(result)); err != nil {
			a.log.Warn("Failed to record run: %v", err)
		}
	}

	return out, nil
}

// stageResults converts pipeline statistics into history rows
func stageResults(res *clean.Result) []store.StageResult {
	results := make([]store.StageResult, len(res.Stages))
	for i, st := range res.Stages {
		results[i] = store.StageResult{
			Seq:        i + 1,
			Stage:      st.Name,
			RowsBefore: st.RowsBefore,
			RowsAfter:  st.RowsAfter,
			Changed:    st.Changed,
			Skipped:    st.Skipped,
			Note:       st.Note,
			DurationMs: st.Duration.Milliseconds(),
		}
	}
	return results
}

// loadCatalog returns the canonical tracks, preferring the snapshot and
// falling back to cleaning the raw export
func (a *app) loadCatalog() ([]catalog.Track, error) {
	if util.FileExists(a.cfg.SnapshotPath) {
		t, err := dataset.LoadSnapshot(a.cfg.SnapshotPath)
		if err == nil {
			a.events.LogSnapshot(a.cfg.SnapshotPath, t.Len())
			a.log.Info("Loaded snapshot %s (%s tracks)", a.cfg.SnapshotPath, util.FormatNumber(float64(t.Len()), 0))
			return catalog.FromTable(t), nil
		}
		if !errors.Is(err, util.ErrUnreadableFormat) {
			return nil, err
		}
		a.log.Warn("Snapshot unreadable, rebuilding from raw data: %v", err)
	}

	res, err := a.runClean()
	if err != nil {
		return nil, err
	}
	return catalog.FromTable(res.table), nil
}

// resolveColumn parses a column flag and checks it is numeric
func resolveColumn(name string) (dataset.Column, error) {
	c, ok := dataset.ParseColumn(name)
	if !ok {
		return "", fmt.Errorf("%w: unknown column %q", util.ErrValidation, name)
	}
	if !c.IsNumeric() {
		return "", fmt.Errorf("%w: column %s is not numeric", util.ErrValidation, c)
	}
	return c, nil
}
