package clean

import (
	"errors"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"github.com/franz/music-catalog/internal/dataset"
	"github.com/franz/music-catalog/internal/util"
)

var rawHeader = []string{
	"track_id", "track_name", "artist_name", "album_name", "explicit",
	"track_popularity", "artist_popularity", "artist_followers",
	"track_duration_min", "album_release_date", "album_total_tracks",
}

func rawFixture() *dataset.Table {
	return dataset.NewTable(rawHeader, [][]string{
		{"1", " Song A ", "Artist A", " Album ", "TRUE", "120", "50", "1000", "3.5", "2020-05-17", "10"},
		{"1", "Dup", "Artist A", "x", "FALSE", "10", "50", "1000", "3.5", "2020", "10"},
		{"2", "Song B", "Artist B", "Al", "0", "-5", "105", "200", "4", "bad", "12"},
		{"3", "   ", "Artist C", "Al", "1", "50", "50", "10", "3", "2019", "1"},
		{"4", "Song D", "Artist D", "Al", "true", "70", "60", "-1", "3", "2019", "1"},
		{"5", "Song E", "Artist E", "Al", "False", "80", "60", "5", "30", "2019", "1"},
		{"6", "Song F", "Artist F", "Al", "yes", "", "60", "5", "0.5", "", "1"},
		{"7", "Song G", "Artist G", "Al", "1.0", "80.6", "60", "5", "2", "2018-01-01", "1"},
	})
}

func newTestCleaner() *Cleaner {
	return NewCleaner(Options{AtomicSnapshot: true}, util.Discard(), nil)
}

func column(t *dataset.Table, c dataset.Column) []string {
	out := make([]string, t.Len())
	for i := range t.Rows {
		out[i] = t.Get(i, c)
	}
	return out
}

func TestCleanCanonicalTable(t *testing.T) {
	out, res, err := newTestCleaner().Clean(rawFixture())
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	if res.RowsIn != 8 || res.RowsOut != 4 || res.Removed() != 4 {
		t.Errorf("unexpected row counts: in=%d out=%d", res.RowsIn, res.RowsOut)
	}

	checks := []struct {
		col  dataset.Column
		want []string
	}{
		{dataset.TrackID, []string{"1", "7", "2", "6"}},
		{dataset.TrackName, []string{"Song A", "Song G", "Song B", "Song F"}},
		{dataset.AlbumName, []string{"Album", "Al", "Al", "Al"}},
		{dataset.Explicit, []string{"true", "true", "false", ""}},
		{dataset.TrackPopularity, []string{"100", "81", "0", ""}},
		{dataset.ArtistPopularity, []string{"50", "60", "100", "60"}},
		{dataset.ReleaseDate, []string{"2020-05-17", "2018-01-01", "", ""}},
		{dataset.Year, []string{"2020", "2018", "", ""}},
	}
	for _, c := range checks {
		if got := column(out, c.col); !reflect.DeepEqual(got, c.want) {
			t.Errorf("%s = %v, want %v", c.col, got, c.want)
		}
	}
}

func TestCleanInvariants(t *testing.T) {
	out, _, err := newTestCleaner().Clean(rawFixture())
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	seen := map[string]bool{}
	for i := range out.Rows {
		id := out.Get(i, dataset.TrackID)
		if seen[id] {
			t.Errorf("duplicate identifier %s", id)
		}
		seen[id] = true

		d, _ := strconv.ParseFloat(out.Get(i, dataset.Duration), 64)
		if d <= 0 || d >= 30 {
			t.Errorf("row %d: duration %v outside (0, 30)", i, d)
		}
		f, _ := strconv.ParseFloat(out.Get(i, dataset.ArtistFollowers), 64)
		if f < 0 {
			t.Errorf("row %d: negative followers %v", i, f)
		}
		for _, c := range []dataset.Column{dataset.TrackPopularity, dataset.ArtistPopularity} {
			raw := out.Get(i, c)
			if raw == "" {
				continue
			}
			p, err := strconv.Atoi(raw)
			if err != nil || p < 0 || p > 100 {
				t.Errorf("row %d: %s = %q not an integer in [0, 100]", i, c, raw)
			}
		}
	}
}

func TestCleanStageStats(t *testing.T) {
	_, res, err := newTestCleaner().Clean(rawFixture())
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	removed := map[string]int{}
	for _, s := range res.Stages {
		if s.Skipped {
			t.Errorf("stage %s unexpectedly skipped", s.Name)
		}
		removed[s.Name] = s.Removed()
	}

	want := map[string]int{
		"deduplicate":      1,
		"drop-incomplete":  1,
		"normalize-text":   0,
		"coerce-types":     0,
		"validate-numeric": 2,
		"sort":             0,
	}
	if !reflect.DeepEqual(removed, want) {
		t.Errorf("removed per stage = %v, want %v", removed, want)
	}
}

func TestStageNames(t *testing.T) {
	want := []string{"deduplicate", "drop-incomplete", "normalize-text", "coerce-types", "validate-numeric", "sort"}
	if got := newTestCleaner().StageNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("StageNames() = %v, want %v", got, want)
	}
}

func TestCleanDoesNotMutateSource(t *testing.T) {
	raw := rawFixture()
	if _, _, err := newTestCleaner().Clean(raw); err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	if raw.Len() != 8 {
		t.Errorf("source lost rows: %d", raw.Len())
	}
	if got := raw.Get(0, dataset.TrackName); got != " Song A " {
		t.Errorf("source cell rewritten: %q", got)
	}
	if raw.Schema.Has(dataset.Year) {
		t.Error("source gained a year column")
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	c := newTestCleaner()
	first, _, err := c.Clean(rawFixture())
	if err != nil {
		t.Fatalf("first Clean failed: %v", err)
	}

	second, res, err := c.Clean(first)
	if err != nil {
		t.Fatalf("second Clean failed: %v", err)
	}
	if res.Removed() != 0 {
		t.Errorf("second pass removed %d rows", res.Removed())
	}
	if !reflect.DeepEqual(first.Header, second.Header) {
		t.Errorf("header changed: %v -> %v", first.Header, second.Header)
	}
	if !reflect.DeepEqual(first.Rows, second.Rows) {
		t.Errorf("rows changed:\n%v\n%v", first.Rows, second.Rows)
	}
}

func TestCleanSkipsStagesWithoutColumns(t *testing.T) {
	raw := dataset.NewTable(
		[]string{"track_name", "artist_name"},
		[][]string{{" a ", "x"}, {"", "y"}, {"b", "z"}},
	)

	out, res, err := newTestCleaner().Clean(raw)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if out.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", out.Len())
	}

	skipped := map[string]bool{}
	for _, s := range res.Stages {
		skipped[s.Name] = s.Skipped
	}
	want := map[string]bool{
		"deduplicate":      true,
		"drop-incomplete":  false,
		"normalize-text":   false,
		"coerce-types":     true,
		"validate-numeric": true,
		"sort":             true,
	}
	if !reflect.DeepEqual(skipped, want) {
		t.Errorf("skipped = %v, want %v", skipped, want)
	}
	if res.Stages[0].Note == "" {
		t.Error("skipped stage should carry a note")
	}
}

func TestCleanValidationFailure(t *testing.T) {
	raw := dataset.NewTable(
		[]string{"track_id", "track_name", "artist_name", "track_popularity"},
		[][]string{{"1", "a", "x", "50"}, {"2", "b", "y", "very popular"}},
	)

	out, res, err := newTestCleaner().Clean(raw)
	if !errors.Is(err, util.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if out != nil || res != nil {
		t.Error("failed clean must not return a partial result")
	}
}

func TestSortIsStable(t *testing.T) {
	raw := dataset.NewTable(
		[]string{"track_id", "track_name", "artist_name", "track_popularity"},
		[][]string{
			{"a", "n", "x", "50"},
			{"b", "n", "x", ""},
			{"c", "n", "x", "70"},
			{"d", "n", "x", "50"},
			{"e", "n", "x", "70"},
		},
	)

	out, _, err := newTestCleaner().Clean(raw)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	want := []string{"c", "e", "a", "d", "b"}
	if got := column(out, dataset.TrackID); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	c := newTestCleaner()
	out, _, err := c.Clean(rawFixture())
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "processed", "clean.csv")
	if err := c.Save(out, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := dataset.LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Len() != out.Len() {
		t.Errorf("row count %d, want %d", loaded.Len(), out.Len())
	}
	if !reflect.DeepEqual(loaded.Header, out.Header) {
		t.Errorf("header %v, want %v", loaded.Header, out.Header)
	}
	if !reflect.DeepEqual(column(loaded, dataset.Year), column(out, dataset.Year)) {
		t.Errorf("year column not recomputed identically")
	}
}
