package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/franz/music-catalog/internal/catalog"
	"github.com/franz/music-catalog/internal/dataset"
	"github.com/franz/music-catalog/internal/util"
)

// fixture builds a catalog large enough for every chart: 12 artists with
// descending track counts, two album types and a spread of years
func fixture() []catalog.Track {
	var tracks []catalog.Track
	for a := 0; a < 12; a++ {
		for i := 0; i < 12-a; i++ {
			n := len(tracks)
			albumType := "album"
			if n%3 == 0 {
				albumType = "single"
			}
			tracks = append(tracks, catalog.Track{
				ID:               fmt.Sprintf("t%d", n),
				Name:             fmt.Sprintf("Song %d", n),
				Artist:           fmt.Sprintf("Artist %02d", a),
				Album:            fmt.Sprintf("Album %d", a),
				AlbumType:        albumType,
				Explicit:         n%2 == 0,
				Popularity:       catalog.NumOf(float64(35 + (n*7)%60)),
				ArtistPopularity: catalog.NumOf(float64(90 - a*5)),
				Followers:        catalog.NumOf(float64(1000 * (12 - a))),
				Duration:         catalog.NumOf(2.5 + float64(n%10)*0.2),
				AlbumTracks:      catalog.NumOf(float64(8 + n%6)),
				Year:             catalog.NumOf(float64(2012 + n%10)),
			})
		}
	}
	return tracks
}

func build(t *testing.T, name string, tracks []catalog.Track) interface{} {
	t.Helper()
	c, err := Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%s) failed: %v", name, err)
	}
	ds, err := c.Build(tracks)
	if err != nil {
		t.Fatalf("%s failed: %v", name, err)
	}
	return ds.Payload
}

func TestLookup(t *testing.T) {
	for _, key := range []string{"pareto", "6", "06", "06_pareto", " PARETO "} {
		c, err := Lookup(key)
		if err != nil || c.Name != "pareto" {
			t.Errorf("Lookup(%q) = %v, %v", key, c.Name, err)
		}
	}
	if _, err := Lookup("pie"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	charts, err := Select(nil)
	if err != nil || len(charts) != 10 {
		t.Fatalf("Select(nil) = %d charts, %v", len(charts), err)
	}
	charts, err = Select([]string{"radar", "7", "bar"})
	if err != nil || len(charts) != 2 {
		t.Errorf("expected duplicates collapsed, got %d charts, %v", len(charts), err)
	}
}

func TestHeatmapDiagonalIsOne(t *testing.T) {
	p := build(t, "heatmap", fixture()).(HeatmapPayload)

	if len(p.Matrix) != len(HeatmapColumns) {
		t.Fatalf("matrix has %d rows", len(p.Matrix))
	}
	for i := range p.Matrix {
		if p.Matrix[i][i] != 1 {
			t.Errorf("diagonal %d = %v, want 1", i, p.Matrix[i][i])
		}
		for j := range p.Matrix {
			if p.Matrix[i][j] != p.Matrix[j][i] {
				t.Errorf("matrix not symmetric at %d,%d", i, j)
			}
			if v := float64(p.Matrix[i][j]); v < -1-1e-9 || v > 1+1e-9 {
				t.Errorf("correlation out of range at %d,%d: %v", i, j, v)
			}
		}
	}
}

func TestCorrelation(t *testing.T) {
	tracks := []catalog.Track{
		{Popularity: catalog.NumOf(1), Duration: catalog.NumOf(2)},
		{Popularity: catalog.NumOf(2), Duration: catalog.NumOf(4)},
		{Popularity: catalog.NumOf(3), Duration: catalog.NumOf(6)},
		{Popularity: catalog.NumOf(4)},
	}
	if got := Correlation(tracks, dataset.TrackPopularity, dataset.Duration); math.Abs(got-1) > 1e-12 {
		t.Errorf("perfect correlation = %v", got)
	}
	if got := Correlation(tracks, dataset.TrackPopularity, dataset.ArtistFollowers); !math.IsNaN(got) {
		t.Errorf("correlation without data should be NaN, got %v", got)
	}
}

func TestParetoEndsAtHundred(t *testing.T) {
	p := build(t, "pareto", fixture()).(ParetoPayload)

	if len(p.Artists) != 12 {
		t.Fatalf("expected 12 artists, got %d", len(p.Artists))
	}
	if p.Artists[0].Artist != "Artist 00" || p.Artists[0].Count != 12 {
		t.Errorf("first row = %+v", p.Artists[0])
	}
	if last := p.Artists[len(p.Artists)-1].CumulativePct; last != 100 {
		t.Errorf("cumulative share ends at %v", last)
	}
	for i := 1; i < len(p.Artists); i++ {
		if p.Artists[i].CumulativePct < p.Artists[i-1].CumulativePct {
			t.Errorf("cumulative share decreases at %d", i)
		}
	}
	if p.CrossIndex < 0 || p.Artists[p.CrossIndex].CumulativePct < 80 {
		t.Errorf("cross index %d does not reach 80%%", p.CrossIndex)
	}
	if p.CrossIndex > 0 && p.Artists[p.CrossIndex-1].CumulativePct >= 80 {
		t.Errorf("cross index %d is not the first to reach 80%%", p.CrossIndex)
	}
}

func TestWaterfall(t *testing.T) {
	tracks := []catalog.Track{
		{Year: catalog.NumOf(2014)},
		{Year: catalog.NumOf(2015)},
		{Year: catalog.NumOf(2017)},
		{Year: catalog.NumOf(2017)},
		{Year: catalog.NumOf(2017)},
		{},
	}
	p := build(t, "waterfall", tracks).(WaterfallPayload)

	if len(p.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %+v", p.Steps)
	}
	if p.Steps[0].Year != 2015 || p.Steps[0].Change != nil {
		t.Errorf("first step = %+v", p.Steps[0])
	}
	if p.Steps[1].Count != 3 || p.Steps[1].Change == nil || *p.Steps[1].Change != 2 {
		t.Errorf("second step = %+v", p.Steps[1])
	}
}

func TestSummarizeQuartiles(t *testing.T) {
	s, ok := Summarize([]float64{5, 1, 4, 2, 3})
	if !ok {
		t.Fatal("expected a summary")
	}
	if s.N != 5 || s.Min != 1 || s.Median != 3 || s.Max != 5 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.Q1 > s.Median || s.Q3 < s.Median {
		t.Errorf("quartiles out of order: %+v", s)
	}
	if _, ok := Summarize(nil); ok {
		t.Error("empty input has no summary")
	}
}

func TestDensityIntegratesToOne(t *testing.T) {
	xs := []float64{40, 50, 55, 60, 70}
	h := ScottBandwidth(xs)
	if h <= 0 {
		t.Fatalf("bandwidth = %v", h)
	}

	grid := make([]float64, 2001)
	for i := range grid {
		grid[i] = float64(i)*0.1 - 50
	}
	density := Density(xs, grid, h)

	area := 0.0
	for _, d := range density {
		area += d * 0.1
	}
	if math.Abs(area-1) > 0.01 {
		t.Errorf("density integrates to %v", area)
	}
}

func TestSankeyThreshold(t *testing.T) {
	var tracks []catalog.Track
	for i := 0; i < 11; i++ {
		tracks = append(tracks, catalog.Track{AlbumType: "album", Explicit: true, Popularity: catalog.NumOf(75)})
	}
	for i := 0; i < 10; i++ {
		tracks = append(tracks, catalog.Track{AlbumType: "single", Popularity: catalog.NumOf(20)})
	}

	p := build(t, "sankey", tracks).(SankeyPayload)
	if len(p.Flows) != 1 {
		t.Fatalf("expected one flow above the threshold, got %+v", p.Flows)
	}
	f := p.Flows[0]
	if f.AlbumType != "album" || !f.Explicit || f.Band != "high" || f.Count != 11 {
		t.Errorf("unexpected flow %+v", f)
	}
	if len(p.Links) != 2 || p.Links[0].Value != 11 {
		t.Errorf("unexpected links %+v", p.Links)
	}
	if p.Nodes[p.Links[1].Target] != "popularity:high" {
		t.Errorf("second link ends at %s", p.Nodes[p.Links[1].Target])
	}
}

func TestGenerateContinuesPastFailures(t *testing.T) {
	// No release year at or after 2015 so the waterfall fails
	tracks := fixture()
	for i := range tracks {
		tracks[i].Year = catalog.NumOf(2000)
	}

	var seen []string
	datasets, failures := Generate(Charts(), tracks, func(c Chart, err error) {
		seen = append(seen, c.Name)
	})

	if len(seen) != 10 {
		t.Errorf("callback ran %d times", len(seen))
	}
	if len(failures) != 1 || failures[0].Chart != "waterfall" {
		t.Fatalf("unexpected failures %v", failures)
	}
	if len(datasets) != 9 {
		t.Errorf("expected 9 datasets, got %d", len(datasets))
	}
}

func TestWriteDataset(t *testing.T) {
	c, _ := Lookup("heatmap")
	tracks := fixture()
	tracks[0].Followers = catalog.Num{}
	ds, err := c.Build(tracks[:1])
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "charts")
	path, err := Write(dir, ds)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if filepath.Base(path) != "02_heatmap.json" {
		t.Errorf("unexpected file name %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Name    string `json:"name"`
		Payload struct {
			Matrix [][]*float64 `json:"matrix"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	// One track gives no defined correlations; NaN must encode as null
	if decoded.Name != "heatmap" || decoded.Payload.Matrix[0][0] != nil {
		t.Errorf("unexpected document: %s", data)
	}
}

func TestBuildEmpty(t *testing.T) {
	for _, c := range Charts() {
		if _, err := c.Build(nil); err == nil {
			t.Errorf("%s: expected error for empty catalog", c.Name)
		}
	}
}
