// Package catalog answers aggregate questions about a canonical table:
// rankings, outlier filtering, binning, search and artist comparison. Every
// function is pure over a slice of Track and never modifies its input.
package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/franz/music-catalog/internal/dataset"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Num is a numeric cell that may be absent
type Num struct {
	Value float64
	Valid bool
}

// NumOf returns a present value
func NumOf(v float64) Num {
	return Num{Value: v, Valid: true}
}

// Or returns the value, or def when absent
func (n Num) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// Track is the typed view of one canonical row
type Track struct {
	ID          string
	Name        string
	Artist      string
	Album       string
	AlbumType   string
	Genres      string
	ReleaseDate string
	Explicit    bool

	Popularity       Num
	ArtistPopularity Num
	Followers        Num
	Duration         Num
	AlbumTracks      Num
	Year             Num
}

// Value returns the numeric column c of the track
func (t Track) Value(c dataset.Column) (float64, bool) {
	var n Num
	switch c {
	case dataset.TrackPopularity:
		n = t.Popularity
	case dataset.ArtistPopularity:
		n = t.ArtistPopularity
	case dataset.ArtistFollowers:
		n = t.Followers
	case dataset.Duration:
		n = t.Duration
	case dataset.AlbumTracks:
		n = t.AlbumTracks
	case dataset.Year:
		n = t.Year
	}
	return n.Value, n.Valid
}

// FromTable projects a canonical table onto tracks. Numeric cells that are
// empty or unparseable become absent values.
func FromTable(t *dataset.Table) []Track {
	tracks := make([]Track, t.Len())
	for i := range t.Rows {
		explicit, _ := dataset.ParseExplicit(t.Get(i, dataset.Explicit))
		tracks[i] = Track{
			ID:               t.Get(i, dataset.TrackID),
			Name:             t.Get(i, dataset.TrackName),
			Artist:           t.Get(i, dataset.ArtistName),
			Album:            t.Get(i, dataset.AlbumName),
			AlbumType:        t.Get(i, dataset.AlbumType),
			Genres:           t.Get(i, dataset.Genres),
			ReleaseDate:      t.Get(i, dataset.ReleaseDate),
			Explicit:         explicit,
			Popularity:       parseNum(t.Get(i, dataset.TrackPopularity)),
			ArtistPopularity: parseNum(t.Get(i, dataset.ArtistPopularity)),
			Followers:        parseNum(t.Get(i, dataset.ArtistFollowers)),
			Duration:         parseNum(t.Get(i, dataset.Duration)),
			AlbumTracks:      parseNum(t.Get(i, dataset.AlbumTracks)),
			Year:             parseNum(t.Get(i, dataset.Year)),
		}
	}
	return tracks
}

func parseNum(s string) Num {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return Num{}
	}
	return NumOf(v)
}

// Values collects the present values of column c in track order
func Values(tracks []Track, c dataset.Column) []float64 {
	out := make([]float64, 0, len(tracks))
	for _, t := range tracks {
		if v, ok := t.Value(c); ok {
			out = append(out, v)
		}
	}
	return out
}

func requireNumeric(c dataset.Column) error {
	if !c.IsNumeric() {
		return fmt.Errorf("column %q is not numeric", c)
	}
	return nil
}

// fold normalises text for case-insensitive comparison
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
