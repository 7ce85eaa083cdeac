package catalog

import (
	"fmt"
	"math"

	"github.com/franz/music-catalog/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// DefaultOutlierK is the default number of standard deviations kept
const DefaultOutlierK = 3.0

// Bounds is an inclusive [Lower, Upper] interval. An invalid Bounds (fewer
// than two values to measure) admits everything.
type Bounds struct {
	Mean   float64
	StdDev float64
	Lower  float64
	Upper  float64
	Valid  bool
}

// Within reports whether v lies inside the bounds, edges included
func (b Bounds) Within(v float64) bool {
	if !b.Valid {
		return true
	}
	return v >= b.Lower && v <= b.Upper
}

// OutlierBounds computes mean ± k sample standard deviations of values
func OutlierBounds(values []float64, k float64) Bounds {
	if len(values) < 2 {
		return Bounds{}
	}
	mean, std := stat.MeanStdDev(values, nil)
	return Bounds{
		Mean:   mean,
		StdDev: std,
		Lower:  mean - k*std,
		Upper:  mean + k*std,
		Valid:  true,
	}
}

// FilterOutliers keeps the tracks whose value of c lies within k standard
// deviations of the mean. Tracks without a value are dropped.
func FilterOutliers(tracks []Track, c dataset.Column, k float64) ([]Track, Bounds, error) {
	if err := requireNumeric(c); err != nil {
		return nil, Bounds{}, err
	}
	if k < 0 || math.IsNaN(k) {
		return nil, Bounds{}, fmt.Errorf("outlier multiple must be non-negative, got %v", k)
	}

	b := OutlierBounds(Values(tracks, c), k)
	out := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if v, ok := t.Value(c); ok && b.Within(v) {
			out = append(out, t)
		}
	}
	return out, b, nil
}

// SafeRatio returns part/total, or def when total is zero
func SafeRatio(part, total, def float64) float64 {
	if total == 0 {
		return def
	}
	return part / total
}

// Percentage returns part as a percentage of total, 0 when total is zero
func Percentage(part, total float64) float64 {
	return SafeRatio(part, total, 0) * 100
}
