// Package analytics computes the numeric datasets behind the catalog charts.
// Rendering is left to an external tool; each dataset is written as a JSON
// document it can consume.
package analytics

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/franz/music-catalog/internal/catalog"
	"github.com/franz/music-catalog/internal/util"
)

// Kind is the chart family a dataset feeds
type Kind string

const (
	KindBar       Kind = "bar"
	KindHeatmap   Kind = "heatmap"
	KindHistogram Kind = "histogram"
	KindBoxplot   Kind = "boxplot"
	KindKDE       Kind = "kde"
	KindPareto    Kind = "pareto"
	KindRadar     Kind = "radar"
	KindWaterfall Kind = "waterfall"
	KindSwarm     Kind = "swarm"
	KindSankey    Kind = "sankey"
)

// Value is a float that encodes NaN and infinities as JSON null
type Value float64

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

func values(fs []float64) []Value {
	out := make([]Value, len(fs))
	for i, f := range fs {
		out[i] = Value(f)
	}
	return out
}

// Dataset is one computed chart dataset
type Dataset struct {
	Seq     int         `json:"seq"`
	Name    string      `json:"name"`
	Title   string      `json:"title"`
	Kind    Kind        `json:"kind"`
	Tracks  int         `json:"tracks"`
	Payload interface{} `json:"payload"`
}

// FileName is the conventional file name, e.g. "06_pareto.json"
func (d *Dataset) FileName() string {
	return fmt.Sprintf("%02d_%s.json", d.Seq, d.Name)
}

// Chart describes a dataset builder
type Chart struct {
	Seq   int
	Name  string
	Title string
	Kind  Kind
	build func(tracks []catalog.Track) (interface{}, error)
}

// Build computes the dataset for tracks
func (c Chart) Build(tracks []catalog.Track) (*Dataset, error) {
	if len(tracks) == 0 {
		return nil, errNoData
	}
	payload, err := c.build(tracks)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		Seq:     c.Seq,
		Name:    c.Name,
		Title:   c.Title,
		Kind:    c.Kind,
		Tracks:  len(tracks),
		Payload: payload,
	}, nil
}

var errNoData = errors.New("not enough data")

// Charts lists every chart in menu order
func Charts() []Chart {
	return []Chart{
		{1, "bar", "Most popular artists", KindBar, buildBar},
		{2, "heatmap", "Correlation of numeric attributes", KindHeatmap, buildHeatmap},
		{3, "histogram", "Popularity and duration distributions", KindHistogram, buildHistogram},
		{4, "boxplot", "Popularity and duration spread", KindBoxplot, buildBoxplot},
		{5, "kde", "Popularity density", KindKDE, buildKDE},
		{6, "pareto", "Tracks per artist (80/20)", KindPareto, buildPareto},
		{7, "radar", "Top artist profiles", KindRadar, buildRadar},
		{8, "waterfall", "Tracks per release year", KindWaterfall, buildWaterfall},
		{9, "swarm", "Popularity by explicit flag", KindSwarm, buildSwarm},
		{10, "sankey", "Album type to explicit to popularity", KindSankey, buildSankey},
	}
}

// Lookup finds a chart by name ("pareto"), number ("6", "06") or file
// stem ("06_pareto")
func Lookup(key string) (Chart, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, c := range Charts() {
		seq := strconv.Itoa(c.Seq)
		stem := fmt.Sprintf("%02d_%s", c.Seq, c.Name)
		if key == c.Name || key == seq || key == fmt.Sprintf("%02d", c.Seq) || key == stem {
			return c, nil
		}
	}
	return Chart{}, fmt.Errorf("%w: unknown chart %q", util.ErrNotFound, key)
}

// Select resolves chart keys; no keys selects every chart
func Select(keys []string) ([]Chart, error) {
	if len(keys) == 0 {
		return Charts(), nil
	}
	var out []Chart
	seen := make(map[int]bool)
	for _, k := range keys {
		c, err := Lookup(k)
		if err != nil {
			return nil, err
		}
		if !seen[c.Seq] {
			seen[c.Seq] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// Failure records a chart that could not be built or written
type Failure struct {
	Chart string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Chart, f.Err)
}

// Generate builds the selected charts. A failing chart is recorded and
// the batch continues. done, when set, is called after every chart.
func Generate(charts []Chart, tracks []catalog.Track, done func(c Chart, err error)) ([]*Dataset, []Failure) {
	var out []*Dataset
	var failures []Failure
	for _, c := range charts {
		ds, err := c.Build(tracks)
		if err != nil {
			failures = append(failures, Failure{Chart: c.Name, Err: err})
		} else {
			out = append(out, ds)
		}
		if done != nil {
			done(c, err)
		}
	}
	return out, failures
}
