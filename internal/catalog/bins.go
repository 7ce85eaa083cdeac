package catalog

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/franz/music-catalog/internal/dataset"
	"gonum.org/v1/gonum/floats"
)

// BinSpec describes how to partition a numeric column. Either Count
// equal-width bins over the observed range, or explicit Edges.
type BinSpec struct {
	Count  int
	Edges  []float64
	Labels []string // defaults to Cat_1..Cat_n
}

// Binning is the outcome of Bin. Index holds the bin of each input value,
// or -1 for values that are absent or fall outside every bin.
type Binning struct {
	Edges  []float64
	Labels []string
	Index  []int
	Counts []int
}

// Label returns the label of input value i, or "" when it has no bin
func (b *Binning) Label(i int) string {
	if b.Index[i] < 0 {
		return ""
	}
	return b.Labels[b.Index[i]]
}

// Bin partitions values into right-closed intervals (lo, hi]. With Count
// bins the lowest edge is widened by 0.1% of the range so the minimum is
// included. NaN marks an absent value.
func Bin(values []float64, spec BinSpec) (*Binning, error) {
	edges, err := binEdges(values, spec)
	if err != nil {
		return nil, err
	}
	n := len(edges) - 1

	labels := spec.Labels
	if labels == nil {
		labels = make([]string, n)
		for i := range labels {
			labels[i] = fmt.Sprintf("Cat_%d", i+1)
		}
	}
	if len(labels) != n {
		return nil, fmt.Errorf("%d labels for %d bins", len(labels), n)
	}

	b := &Binning{
		Edges:  edges,
		Labels: labels,
		Index:  make([]int, len(values)),
		Counts: make([]int, n),
	}
	for i, v := range values {
		b.Index[i] = -1
		if math.IsNaN(v) || v <= edges[0] || v > edges[n] {
			continue
		}
		// first edge >= v closes the bin
		j := sort.SearchFloat64s(edges, v)
		b.Index[i] = j - 1
		b.Counts[j-1]++
	}
	return b, nil
}

func binEdges(values []float64, spec BinSpec) ([]float64, error) {
	if len(spec.Edges) > 0 {
		if len(spec.Edges) < 2 {
			return nil, errors.New("at least two bin edges are required")
		}
		for i := 1; i < len(spec.Edges); i++ {
			if !(spec.Edges[i] > spec.Edges[i-1]) {
				return nil, errors.New("bin edges must increase monotonically")
			}
		}
		return append([]float64(nil), spec.Edges...), nil
	}

	if spec.Count < 1 {
		return nil, fmt.Errorf("bin count must be at least 1, got %d", spec.Count)
	}

	var present []float64
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return nil, errors.New("no values to bin")
	}

	lo, hi := floats.Min(present), floats.Max(present)
	if lo == hi {
		adj := 0.001 * math.Abs(lo)
		if lo == 0 {
			adj = 0.001
		}
		lo, hi = lo-adj, hi+adj
		return floats.Span(make([]float64, spec.Count+1), lo, hi), nil
	}

	edges := floats.Span(make([]float64, spec.Count+1), lo, hi)
	edges[0] -= (hi - lo) * 0.001
	return edges, nil
}

// BinColumn bins column c of tracks; Index lines up with tracks
func BinColumn(tracks []Track, c dataset.Column, spec BinSpec) (*Binning, error) {
	if err := requireNumeric(c); err != nil {
		return nil, err
	}
	values := make([]float64, len(tracks))
	for i, t := range tracks {
		v, ok := t.Value(c)
		if !ok {
			v = math.NaN()
		}
		values[i] = v
	}
	return Bin(values, spec)
}
