package catalog

import (
	"math"
	"strings"

	"github.com/franz/music-catalog/internal/util"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Outcome tells whether a comparison found both artists
type Outcome int

const (
	Found Outcome = iota
	NotFound
)

func (o Outcome) String() string {
	if o == NotFound {
		return "not found"
	}
	return "found"
}

// GenreWidth is how many characters of the genre list a comparison shows
const GenreWidth = 50

// ArtistStats are the descriptive metrics of one artist's tracks
type ArtistStats struct {
	Artist        string // name as stored
	Tracks        int
	AvgPopularity Num
	MaxPopularity Num
	Followers     Num // first seen
	AvgDuration   Num
	Albums        int
	Explicit      int
	ExplicitPct   float64
	Genres        string // first seen, at most GenreWidth runes
	GenresCut     bool   // Genres was shortened
}

// Metric is one row of a side-by-side comparison
type Metric struct {
	Label   string
	Left    string
	Right   string
	Numeric bool
	left    float64
	right   float64
}

// Winner returns -1 when the left side is larger, 1 when the right side
// is, and 0 for ties or non-numeric metrics
func (m Metric) Winner() int {
	switch {
	case !m.Numeric || m.left == m.right:
		return 0
	case m.left > m.right:
		return -1
	default:
		return 1
	}
}

// Comparison is the result of CompareArtists
type Comparison struct {
	Outcome Outcome
	Missing []string // names that matched nothing
	Left    ArtistStats
	Right   ArtistStats
	Metrics []Metric
}

// Get returns the metric with the given label
func (c *Comparison) Get(label string) (Metric, bool) {
	for _, m := range c.Metrics {
		if m.Label == label {
			return m, true
		}
	}
	return Metric{}, false
}

// CompareArtists compares two artists matched case-insensitively by exact
// name. If either name matches no track the Outcome is NotFound.
func CompareArtists(tracks []Track, a, b string) *Comparison {
	left := artistTracks(tracks, a)
	right := artistTracks(tracks, b)

	c := &Comparison{Outcome: Found}
	if len(left) == 0 {
		c.Missing = append(c.Missing, a)
	}
	if len(right) == 0 {
		c.Missing = append(c.Missing, b)
	}
	if len(c.Missing) > 0 {
		c.Outcome = NotFound
		return c
	}

	c.Left = describeArtist(left)
	c.Right = describeArtist(right)
	c.Metrics = buildMetrics(c.Left, c.Right)
	return c
}

func artistTracks(tracks []Track, name string) []Track {
	key := fold(strings.TrimSpace(name))
	if key == "" {
		return nil
	}
	var out []Track
	for _, t := range tracks {
		if fold(strings.TrimSpace(t.Artist)) == key {
			out = append(out, t)
		}
	}
	return out
}

func describeArtist(tracks []Track) ArtistStats {
	s := ArtistStats{Artist: tracks[0].Artist, Tracks: len(tracks)}

	pops := make([]float64, 0, len(tracks))
	durations := make([]float64, 0, len(tracks))
	albums := make(map[string]struct{})
	for _, t := range tracks {
		if t.Popularity.Valid {
			pops = append(pops, t.Popularity.Value)
		}
		if t.Duration.Valid {
			durations = append(durations, t.Duration.Value)
		}
		if !s.Followers.Valid && t.Followers.Valid {
			s.Followers = t.Followers
		}
		if t.Album != "" {
			albums[t.Album] = struct{}{}
		}
		if t.Explicit {
			s.Explicit++
		}
	}

	if len(pops) > 0 {
		s.AvgPopularity = NumOf(stat.Mean(pops, nil))
		s.MaxPopularity = NumOf(floats.Max(pops))
	}
	if len(durations) > 0 {
		s.AvgDuration = NumOf(stat.Mean(durations, nil))
	}
	s.Albums = len(albums)
	s.ExplicitPct = Percentage(float64(s.Explicit), float64(s.Tracks))
	s.Genres, s.GenresCut = prefix(tracks[0].Genres, GenreWidth)
	return s
}

func buildMetrics(l, r ArtistStats) []Metric {
	num := func(label string, a, b Num, decimals int) Metric {
		return Metric{
			Label:   label,
			Left:    util.FormatNumber(numOrNaN(a), decimals),
			Right:   util.FormatNumber(numOrNaN(b), decimals),
			Numeric: a.Valid && b.Valid,
			left:    a.Value,
			right:   b.Value,
		}
	}
	count := func(label string, a, b int) Metric {
		return num(label, NumOf(float64(a)), NumOf(float64(b)), 0)
	}

	pct := num("Explicit %", NumOf(l.ExplicitPct), NumOf(r.ExplicitPct), 1)
	pct.Left += "%"
	pct.Right += "%"

	return []Metric{
		count("Tracks", l.Tracks, r.Tracks),
		num("Avg popularity", l.AvgPopularity, r.AvgPopularity, 1),
		num("Max popularity", l.MaxPopularity, r.MaxPopularity, 0),
		num("Followers", l.Followers, r.Followers, 0),
		num("Avg duration (min)", l.AvgDuration, r.AvgDuration, 2),
		count("Albums", l.Albums, r.Albums),
		count("Explicit tracks", l.Explicit, r.Explicit),
		pct,
		{Label: "Genres", Left: l.Genres, Right: r.Genres},
	}
}

// prefix returns the first n runes of s and whether anything was dropped
func prefix(s string, n int) (string, bool) {
	r := []rune(s)
	if len(r) <= n {
		return s, false
	}
	return string(r[:n]), true
}

func numOrNaN(n Num) float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Value
}
