package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/franz/music-catalog/internal/config"
	"github.com/franz/music-catalog/internal/dataset"
	"github.com/franz/music-catalog/internal/report"
	"github.com/franz/music-catalog/internal/store"
	"github.com/franz/music-catalog/internal/util"
)

const rawCSV = `track_id,track_name,artist_name,album_name,explicit,track_popularity,artist_popularity,artist_followers,track_duration_min,album_release_date
1, Love Story ,A,Fearless,False,90,95,1200000,3.9,2008-11-11
2,I Love You,B,Pipe Dream,True,70,80,5000,4.1,2019
2,I Love You,B,Pipe Dream,True,70,80,5000,4.1,2019
3,,C,Nothing,False,10,5,10,3.0,2020-01-01
4,Long Mix,D,Club,0,150,60,200,45.0,2021-05-05
5,Quiet,B,Pipe Dream,1,40,80,5000,2.5,2019-03
`

func testApp(t *testing.T) *app {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.RawPath = filepath.Join(dir, "raw", "spotify_data.csv")
	cfg.SnapshotPath = filepath.Join(dir, "processed", "spotify_data_clean.csv")
	cfg.DBPath = filepath.Join(dir, "mcat-state.db")
	cfg.ArtifactsDir = filepath.Join(dir, "artifacts")
	cfg.OutputDir = filepath.Join(dir, "output")

	if err := os.MkdirAll(filepath.Dir(cfg.RawPath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.RawPath, []byte(rawCSV), 0644); err != nil {
		t.Fatal(err)
	}

	return &app{
		cfg:    cfg,
		log:    util.Discard(),
		events: report.NullLogger(),
		out:    &bytes.Buffer{},
	}
}

func TestRunCleanRecordsHistory(t *testing.T) {
	a := testApp(t)

	res, err := a.runClean()
	if err != nil {
		t.Fatalf("runClean failed: %v", err)
	}
	// duplicate, missing name and the 45 minute track are removed
	if res.result.RowsIn != 6 || res.result.RowsOut != 3 {
		t.Errorf("rows %d -> %d, want 6 -> 3", res.result.RowsIn, res.result.RowsOut)
	}
	if !res.saved || !util.FileExists(a.cfg.SnapshotPath) {
		t.Error("snapshot not written")
	}

	db, err := store.Open(a.cfg.DBPath)
	if err != nil {
		t.Fatalf("failed to open history: %v", err)
	}
	defer db.Close()

	run, err := db.LatestRun()
	if err != nil || run == nil {
		t.Fatalf("no run recorded: %v", err)
	}
	if run.ID != res.run.ID || run.RowsOut != 3 || run.Encoding != "utf-8" || run.SnapshotPath != a.cfg.SnapshotPath {
		t.Errorf("unexpected run %+v", run)
	}
	stages, err := db.GetStageResults(run.ID)
	if err != nil {
		t.Fatalf("GetStageResults failed: %v", err)
	}
	if len(stages) != 6 || stages[0].Stage != "deduplicate" || stages[0].RowsAfter != 5 {
		t.Errorf("unexpected stages %+v", stages)
	}
}

func TestRunCleanFailureIsRecorded(t *testing.T) {
	a := testApp(t)
	a.cfg.RawPath = filepath.Join(t.TempDir(), "missing.csv")

	if _, err := a.runClean(); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	db, err := store.Open(a.cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	runs, err := db.ListRuns(0)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one run, got %d (%v)", len(runs), err)
	}
	if runs[0].Status != store.StatusFailed || runs[0].Error == "" {
		t.Errorf("failure not recorded: %+v", runs[0])
	}
}

func TestLoadCatalogPrefersSnapshot(t *testing.T) {
	a := testApp(t)

	tracks, err := a.loadCatalog()
	if err != nil {
		t.Fatalf("loadCatalog failed: %v", err)
	}
	if len(tracks) != 3 || tracks[0].Name != "Love Story" {
		t.Fatalf("unexpected tracks %+v", tracks)
	}

	// Remove the raw file; the snapshot alone must be enough now
	if err := os.Remove(a.cfg.RawPath); err != nil {
		t.Fatal(err)
	}
	again, err := a.loadCatalog()
	if err != nil {
		t.Fatalf("loadCatalog from snapshot failed: %v", err)
	}
	if len(again) != len(tracks) {
		t.Errorf("snapshot has %d tracks, want %d", len(again), len(tracks))
	}
	for i := range tracks {
		if again[i].ID != tracks[i].ID || again[i].Explicit != tracks[i].Explicit || again[i].Year != tracks[i].Year {
			t.Errorf("track %d differs: %+v vs %+v", i, again[i], tracks[i])
		}
	}

	db, err := store.Open(a.cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if runs, _ := db.ListRuns(0); len(runs) != 1 {
		t.Errorf("snapshot load should not record a run, got %d runs", len(runs))
	}
}

func TestLoadCatalogSurvivesSnapshotWriteFailure(t *testing.T) {
	a := testApp(t)
	// A directory where the snapshot file should be makes the write fail
	a.cfg.SnapshotPath = t.TempDir()

	tracks, err := a.loadCatalog()
	if err != nil {
		t.Fatalf("loadCatalog failed: %v", err)
	}
	if len(tracks) != 3 {
		t.Errorf("expected 3 tracks, got %d", len(tracks))
	}
}

func TestResolveColumn(t *testing.T) {
	if c, err := resolveColumn("popularity"); err != nil || c != dataset.TrackPopularity {
		t.Errorf("resolveColumn(popularity) = %v, %v", c, err)
	}
	if _, err := resolveColumn("artist_name"); !errors.Is(err, util.ErrValidation) {
		t.Errorf("expected ErrValidation for text column, got %v", err)
	}
	if _, err := resolveColumn("tempo"); !errors.Is(err, util.ErrValidation) {
		t.Errorf("expected ErrValidation for unknown column, got %v", err)
	}
}

func TestStageResults(t *testing.T) {
	a := testApp(t)
	res, err := a.runClean()
	if err != nil {
		t.Fatal(err)
	}
	rows := stageResults(res.result)
	for i, r := range rows {
		if r.Seq != i+1 || r.Stage != res.result.Stages[i].Name {
			t.Errorf("row %d = %+v", i, r)
		}
	}
}
