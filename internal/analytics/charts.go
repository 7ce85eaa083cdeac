package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/franz/music-catalog/internal/catalog"
	"github.com/franz/music-catalog/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	barArtists       = 15
	histogramBins    = 30
	kdePoints        = 200
	paretoArtists    = 20
	paretoThreshold  = 80.0
	radarArtists     = 5
	waterfallFrom    = 2015
	swarmSampleSize  = 500
	sankeyMinFlow    = 10
	boxplotTopGroups = 3
)

// HeatmapColumns are the attributes correlated by the heatmap
var HeatmapColumns = []dataset.Column{
	dataset.TrackPopularity,
	dataset.ArtistPopularity,
	dataset.ArtistFollowers,
	dataset.Duration,
	dataset.AlbumTracks,
}

func explicitGroup(t catalog.Track) string {
	if t.Explicit {
		return "explicit"
	}
	return "clean"
}

var explicitGroups = []string{"clean", "explicit"}

// Bar

// ArtistValue is one bar of an artist ranking
type ArtistValue struct {
	Artist string `json:"artist"`
	Value  Value  `json:"value"`
}

// BarPayload ranks artists by their highest artist popularity
type BarPayload struct {
	Artists []ArtistValue `json:"artists"`
	Mean    Value         `json:"mean"`
	Leader  string        `json:"leader"`
}

func buildBar(tracks []catalog.Track) (interface{}, error) {
	ranks := catalog.TopArtists(tracks, barArtists)
	if len(ranks) == 0 {
		return nil, errNoData
	}
	p := BarPayload{Leader: ranks[0].Artist}
	pops := make([]float64, len(ranks))
	for i, r := range ranks {
		p.Artists = append(p.Artists, ArtistValue{Artist: r.Artist, Value: Value(r.Popularity)})
		pops[i] = r.Popularity
	}
	p.Mean = Value(stat.Mean(pops, nil))
	return p, nil
}

// Heatmap

// HeatmapPayload is a correlation matrix over Columns, row-major
type HeatmapPayload struct {
	Columns []string  `json:"columns"`
	Matrix  [][]Value `json:"matrix"`
}

// Correlation returns the Pearson correlation of columns a and b over the
// tracks that carry both values. NaN when undefined.
func Correlation(tracks []catalog.Track, a, b dataset.Column) float64 {
	var xs, ys []float64
	for _, t := range tracks {
		x, okx := t.Value(a)
		y, oky := t.Value(b)
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 || stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	if a == b {
		return 1
	}
	return stat.Correlation(xs, ys, nil)
}

func buildHeatmap(tracks []catalog.Track) (interface{}, error) {
	p := HeatmapPayload{}
	for _, c := range HeatmapColumns {
		p.Columns = append(p.Columns, string(c))
	}
	p.Matrix = make([][]Value, len(HeatmapColumns))
	for i, a := range HeatmapColumns {
		p.Matrix[i] = make([]Value, len(HeatmapColumns))
		for j, b := range HeatmapColumns {
			if j < i {
				p.Matrix[i][j] = p.Matrix[j][i]
				continue
			}
			p.Matrix[i][j] = Value(Correlation(tracks, a, b))
		}
	}
	return p, nil
}

// Histogram

// Histogram holds len(Edges)-1 bin counts
type Histogram struct {
	Edges  []Value `json:"edges"`
	Counts []int   `json:"counts"`
}

// HistogramPayload feeds the popularity and duration histograms
type HistogramPayload struct {
	Popularity         Histogram            `json:"popularity"`
	PopularityMean     Value                `json:"popularity_mean"`
	DurationByExplicit map[string]Histogram `json:"duration_by_explicit"`
}

// histogramEdges spans [min, max] of xs in n equal bins
func histogramEdges(xs []float64, n int) []float64 {
	lo, hi := floats.Min(xs), floats.Max(xs)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	return floats.Span(make([]float64, n+1), lo, hi)
}

// histogram counts xs into the bins of edges; the last bin is closed
func histogram(xs, edges []float64) Histogram {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	dividers := append([]float64(nil), edges...)
	dividers[len(dividers)-1] = math.Nextafter(dividers[len(dividers)-1], math.Inf(1))

	var inRange []float64
	for _, x := range sorted {
		if x >= dividers[0] && x < dividers[len(dividers)-1] {
			inRange = append(inRange, x)
		}
	}

	counts := stat.Histogram(nil, dividers, inRange, nil)
	h := Histogram{Edges: values(edges), Counts: make([]int, len(counts))}
	for i, c := range counts {
		h.Counts[i] = int(c)
	}
	return h
}

func buildHistogram(tracks []catalog.Track) (interface{}, error) {
	pops := catalog.Values(tracks, dataset.TrackPopularity)
	durations := catalog.Values(tracks, dataset.Duration)
	if len(pops) == 0 || len(durations) == 0 {
		return nil, errNoData
	}

	p := HistogramPayload{
		Popularity:         histogram(pops, histogramEdges(pops, histogramBins)),
		PopularityMean:     Value(stat.Mean(pops, nil)),
		DurationByExplicit: make(map[string]Histogram),
	}

	edges := histogramEdges(durations, histogramBins)
	groups := make(map[string][]float64)
	for _, t := range tracks {
		if t.Duration.Valid {
			g := explicitGroup(t)
			groups[g] = append(groups[g], t.Duration.Value)
		}
	}
	for _, g := range explicitGroups {
		p.DurationByExplicit[g] = histogram(groups[g], edges)
	}
	return p, nil
}

// Boxplot

// FiveNumber is a box-and-whisker summary of one sample
type FiveNumber struct {
	N      int   `json:"n"`
	Min    Value `json:"min"`
	Q1     Value `json:"q1"`
	Median Value `json:"median"`
	Q3     Value `json:"q3"`
	Max    Value `json:"max"`
}

// Summarize returns the five-number summary of xs using empirical
// quantiles. ok is false for an empty input.
func Summarize(xs []float64) (FiveNumber, bool) {
	if len(xs) == 0 {
		return FiveNumber{}, false
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	q := func(p float64) Value {
		return Value(stat.Quantile(p, stat.Empirical, sorted, nil))
	}
	return FiveNumber{
		N:      len(sorted),
		Min:    Value(sorted[0]),
		Q1:     q(0.25),
		Median: q(0.5),
		Q3:     q(0.75),
		Max:    Value(sorted[len(sorted)-1]),
	}, true
}

// BoxGroup is the summary of one metric within one group
type BoxGroup struct {
	Metric  string     `json:"metric"`
	Group   string     `json:"group"`
	Summary FiveNumber `json:"summary"`
}

// BoxplotPayload lists every box of the boxplot chart
type BoxplotPayload struct {
	Groups []BoxGroup `json:"groups"`
}

// topGroups returns the n most frequent non-empty keys, ties in first-seen order
func topGroups(tracks []catalog.Track, key func(catalog.Track) string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, t := range tracks {
		k := key(t)
		if k == "" {
			continue
		}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > n {
		order = order[:n]
	}
	return order
}

func buildBoxplot(tracks []catalog.Track) (interface{}, error) {
	p := BoxplotPayload{}
	add := func(metric dataset.Column, group string, subset []catalog.Track) {
		if s, ok := Summarize(catalog.Values(subset, metric)); ok {
			p.Groups = append(p.Groups, BoxGroup{Metric: string(metric), Group: group, Summary: s})
		}
	}
	filter := func(keep func(catalog.Track) bool) []catalog.Track {
		var out []catalog.Track
		for _, t := range tracks {
			if keep(t) {
				out = append(out, t)
			}
		}
		return out
	}

	add(dataset.TrackPopularity, "all", tracks)
	for _, g := range explicitGroups {
		g := g
		add(dataset.TrackPopularity, g, filter(func(t catalog.Track) bool { return explicitGroup(t) == g }))
	}
	for _, at := range topGroups(tracks, func(t catalog.Track) string { return t.AlbumType }, boxplotTopGroups) {
		at := at
		add(dataset.Duration, at, filter(func(t catalog.Track) bool { return t.AlbumType == at }))
	}

	if len(p.Groups) == 0 {
		return nil, errNoData
	}
	return p, nil
}

// KDE

// Curve is a kernel density estimate sampled on X
type Curve struct {
	Group     string  `json:"group"`
	N         int     `json:"n"`
	Bandwidth Value   `json:"bandwidth"`
	X         []Value `json:"x"`
	Density   []Value `json:"density"`
}

// KDEPayload holds one density curve per explicit group
type KDEPayload struct {
	Curves []Curve `json:"curves"`
	Mean   Value   `json:"mean"`
}

// ScottBandwidth is the Gaussian kernel bandwidth std·n^(-1/5)
func ScottBandwidth(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil) * math.Pow(float64(len(xs)), -0.2)
}

// Density evaluates a Gaussian kernel density estimate of xs at grid
func Density(xs, grid []float64, bandwidth float64) []float64 {
	out := make([]float64, len(grid))
	n := float64(len(xs))
	for _, x := range xs {
		k := distuv.Normal{Mu: x, Sigma: bandwidth}
		for i, g := range grid {
			out[i] += k.Prob(g) / n
		}
	}
	return out
}

func buildKDE(tracks []catalog.Track) (interface{}, error) {
	all := catalog.Values(tracks, dataset.TrackPopularity)
	if len(all) < 2 {
		return nil, errNoData
	}

	groups := map[string][]float64{"all": all}
	for _, t := range tracks {
		if t.Popularity.Valid {
			g := explicitGroup(t)
			groups[g] = append(groups[g], t.Popularity.Value)
		}
	}

	p := KDEPayload{Mean: Value(stat.Mean(all, nil))}
	for _, name := range append([]string{"all"}, explicitGroups...) {
		xs := groups[name]
		h := ScottBandwidth(xs)
		if h == 0 {
			continue
		}
		grid := floats.Span(make([]float64, kdePoints), floats.Min(xs)-3*h, floats.Max(xs)+3*h)
		p.Curves = append(p.Curves, Curve{
			Group:     name,
			N:         len(xs),
			Bandwidth: Value(h),
			X:         values(grid),
			Density:   values(Density(xs, grid, h)),
		})
	}
	if len(p.Curves) == 0 {
		return nil, errors.New("popularity has no spread")
	}
	return p, nil
}

// Pareto

// ParetoRow is one artist with its running share of all tracks
type ParetoRow struct {
	Artist        string `json:"artist"`
	Count         int    `json:"count"`
	CumulativePct Value  `json:"cumulative_pct"`
}

// ParetoPayload ranks artists by track count
type ParetoPayload struct {
	Artists []ParetoRow `json:"artists"`
	// CrossIndex is the first row whose cumulative share reaches 80%
	CrossIndex int `json:"cross_index"`
}

func buildPareto(tracks []catalog.Track) (interface{}, error) {
	top := topGroups(tracks, func(t catalog.Track) string { return t.Artist }, paretoArtists)
	if len(top) == 0 {
		return nil, errNoData
	}
	counts := make(map[string]int)
	for _, t := range tracks {
		counts[t.Artist]++
	}

	total := 0
	for _, a := range top {
		total += counts[a]
	}

	p := ParetoPayload{CrossIndex: -1}
	cum := 0
	for i, a := range top {
		cum += counts[a]
		pct := catalog.Percentage(float64(cum), float64(total))
		if i == len(top)-1 {
			pct = 100
		}
		p.Artists = append(p.Artists, ParetoRow{Artist: a, Count: counts[a], CumulativePct: Value(pct)})
		if p.CrossIndex < 0 && pct >= paretoThreshold {
			p.CrossIndex = i
		}
	}
	return p, nil
}

// Radar

// RadarSeries holds one artist's normalized values, one per axis
type RadarSeries struct {
	Artist string  `json:"artist"`
	Values []Value `json:"values"`
}

// RadarPayload compares the leading artists on shared axes
type RadarPayload struct {
	Axes   []string      `json:"axes"`
	Series []RadarSeries `json:"series"`
}

var radarAxes = []string{
	"artist popularity",
	"followers (norm)",
	"track popularity",
	"avg duration (norm)",
	"track count (norm)",
}

func buildRadar(tracks []catalog.Track) (interface{}, error) {
	ranks := catalog.TopArtists(tracks, radarArtists)
	if len(ranks) == 0 {
		return nil, errNoData
	}

	maxOf := func(c dataset.Column) float64 {
		vs := catalog.Values(tracks, c)
		if len(vs) == 0 {
			return 0
		}
		return floats.Max(vs)
	}
	maxFollowers := maxOf(dataset.ArtistFollowers)
	maxDuration := maxOf(dataset.Duration)
	maxCount := 0
	counts := make(map[string]int)
	byArtist := make(map[string][]catalog.Track)
	for _, t := range tracks {
		counts[t.Artist]++
		byArtist[t.Artist] = append(byArtist[t.Artist], t)
		if counts[t.Artist] > maxCount {
			maxCount = counts[t.Artist]
		}
	}

	meanOf := func(ts []catalog.Track, c dataset.Column) float64 {
		vs := catalog.Values(ts, c)
		if len(vs) == 0 {
			return 0
		}
		return stat.Mean(vs, nil)
	}

	p := RadarPayload{Axes: radarAxes}
	for _, r := range ranks {
		ts := byArtist[r.Artist]
		p.Series = append(p.Series, RadarSeries{
			Artist: r.Artist,
			Values: values([]float64{
				meanOf(ts, dataset.ArtistPopularity),
				catalog.Percentage(meanOf(ts, dataset.ArtistFollowers), maxFollowers),
				meanOf(ts, dataset.TrackPopularity),
				catalog.Percentage(meanOf(ts, dataset.Duration), maxDuration),
				catalog.Percentage(float64(len(ts)), float64(maxCount)),
			}),
		})
	}
	return p, nil
}

// Waterfall

// WaterfallStep is the track count of one release year
type WaterfallStep struct {
	Year   int  `json:"year"`
	Count  int  `json:"count"`
	Change *int `json:"change"` // null for the first year
}

// WaterfallPayload lists release years in ascending order
type WaterfallPayload struct {
	Steps []WaterfallStep `json:"steps"`
}

func buildWaterfall(tracks []catalog.Track) (interface{}, error) {
	counts := make(map[int]int)
	for _, t := range tracks {
		if t.Year.Valid && t.Year.Value >= waterfallFrom {
			counts[int(t.Year.Value)]++
		}
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("no releases since %d", waterfallFrom)
	}

	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)

	p := WaterfallPayload{}
	for i, y := range years {
		step := WaterfallStep{Year: y, Count: counts[y]}
		if i > 0 {
			change := counts[y] - counts[years[i-1]]
			step.Change = &change
		}
		p.Steps = append(p.Steps, step)
	}
	return p, nil
}

// Swarm

// SwarmGroup holds the sampled popularity points of one group
type SwarmGroup struct {
	Group  string  `json:"group"`
	N      int     `json:"n"`
	Median Value   `json:"median"`
	Points []Value `json:"points"`
}

// SwarmPayload feeds the swarm chart
type SwarmPayload struct {
	Groups []SwarmGroup `json:"groups"`
}

// sample picks at most n items at an even stride so output is reproducible
func sample(ts []catalog.Track, n int) []catalog.Track {
	if len(ts) <= n {
		return ts
	}
	out := make([]catalog.Track, 0, n)
	step := float64(len(ts)) / float64(n)
	for i := 0; i < n; i++ {
		out = append(out, ts[int(float64(i)*step)])
	}
	return out
}

func buildSwarm(tracks []catalog.Track) (interface{}, error) {
	var scored []catalog.Track
	for _, t := range tracks {
		if t.Popularity.Valid {
			scored = append(scored, t)
		}
	}
	if len(scored) == 0 {
		return nil, errNoData
	}

	all := make(map[string][]float64)
	points := make(map[string][]float64)
	for _, t := range scored {
		g := explicitGroup(t)
		all[g] = append(all[g], t.Popularity.Value)
	}
	for _, t := range sample(scored, swarmSampleSize) {
		g := explicitGroup(t)
		points[g] = append(points[g], t.Popularity.Value)
	}

	p := SwarmPayload{}
	for _, g := range explicitGroups {
		s, ok := Summarize(all[g])
		if !ok {
			continue
		}
		p.Groups = append(p.Groups, SwarmGroup{
			Group:  g,
			N:      s.N,
			Median: s.Median,
			Points: values(points[g]),
		})
	}
	return p, nil
}

// Sankey

// Flow counts tracks along one album type, explicit and band path
type Flow struct {
	AlbumType string `json:"album_type"`
	Explicit  bool   `json:"explicit"`
	Band      string `json:"band"`
	Count     int    `json:"count"`
}

// Link is a weighted edge between two indexes into Nodes
type Link struct {
	Source int `json:"source"`
	Target int `json:"target"`
	Value  int `json:"value"`
}

// SankeyPayload is the node and link list of the Sankey diagram
type SankeyPayload struct {
	Nodes []string `json:"nodes"`
	Links []Link   `json:"links"`
	Flows []Flow   `json:"flows"`
}

// PopularityBands partitions track popularity for the Sankey diagram
var PopularityBands = catalog.BinSpec{
	Edges:  []float64{0, 30, 60, 100},
	Labels: []string{"low", "mid", "high"},
}

func buildSankey(tracks []catalog.Track) (interface{}, error) {
	bands, err := catalog.BinColumn(tracks, dataset.TrackPopularity, PopularityBands)
	if err != nil {
		return nil, err
	}

	type key struct {
		albumType string
		explicit  bool
		band      string
	}
	counts := make(map[key]int)
	var order []key
	for i, t := range tracks {
		band := bands.Label(i)
		if t.AlbumType == "" || band == "" {
			continue
		}
		k := key{t.AlbumType, t.Explicit, band}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}

	p := SankeyPayload{}
	for _, k := range order {
		if counts[k] > sankeyMinFlow {
			p.Flows = append(p.Flows, Flow{AlbumType: k.albumType, Explicit: k.explicit, Band: k.band, Count: counts[k]})
		}
	}
	if len(p.Flows) == 0 {
		return nil, fmt.Errorf("no flow has more than %d tracks", sankeyMinFlow)
	}

	nodes := make(map[string]int)
	node := func(name string) int {
		if i, ok := nodes[name]; ok {
			return i
		}
		nodes[name] = len(p.Nodes)
		p.Nodes = append(p.Nodes, name)
		return nodes[name]
	}
	for _, f := range p.Flows {
		node("album:" + f.AlbumType)
	}
	node("explicit:true")
	node("explicit:false")
	for _, label := range PopularityBands.Labels {
		node("popularity:" + label)
	}

	links := make(map[[2]int]int)
	var linkOrder [][2]int
	addLink := func(src, dst, n int) {
		k := [2]int{src, dst}
		if _, ok := links[k]; !ok {
			linkOrder = append(linkOrder, k)
		}
		links[k] += n
	}
	for _, f := range p.Flows {
		exp := node("explicit:" + strconv.FormatBool(f.Explicit))
		addLink(node("album:"+f.AlbumType), exp, f.Count)
		addLink(exp, node("popularity:"+f.Band), f.Count)
	}
	for _, k := range linkOrder {
		p.Links = append(p.Links, Link{Source: k[0], Target: k[1], Value: links[k]})
	}
	return p, nil
}
