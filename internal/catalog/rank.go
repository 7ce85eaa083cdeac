package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/franz/music-catalog/internal/dataset"
)

// TopN returns the n tracks with the largest values of column c, or the
// smallest when ascending is set. Ties keep their input order and tracks
// without a value are never selected.
func TopN(tracks []Track, c dataset.Column, n int, ascending bool) ([]Track, error) {
	if err := requireNumeric(c); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []Track{}, nil
	}

	candidates := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if _, ok := t.Value(c); ok {
			candidates = append(candidates, t)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, _ := candidates[i].Value(c)
		b, _ := candidates[j].Value(c)
		if ascending {
			return a < b
		}
		return a > b
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates, nil
}

// ArtistRank is one artist in a popularity ranking
type ArtistRank struct {
	Artist     string
	Popularity float64
	Tracks     int
}

// TopArtists ranks artists by their highest artist popularity. Artists are
// grouped by exact name; ties keep first-appearance order.
func TopArtists(tracks []Track, n int) []ArtistRank {
	index := make(map[string]int)
	var ranks []ArtistRank
	var scored []bool

	for _, t := range tracks {
		i, seen := index[t.Artist]
		if !seen {
			i = len(ranks)
			index[t.Artist] = i
			ranks = append(ranks, ArtistRank{Artist: t.Artist})
			scored = append(scored, false)
		}
		ranks[i].Tracks++
		if t.ArtistPopularity.Valid {
			if p := t.ArtistPopularity.Value; !scored[i] || p > ranks[i].Popularity {
				ranks[i].Popularity = p
				scored[i] = true
			}
		}
	}

	out := make([]ArtistRank, 0, len(ranks))
	for i, r := range ranks {
		if scored[i] {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Popularity > out[j].Popularity })

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ArtistNames returns the artist names of a ranking in order
func ArtistNames(ranks []ArtistRank) []string {
	names := make([]string, len(ranks))
	for i, r := range ranks {
		names[i] = r.Artist
	}
	return names
}

// ResolveArtist turns user input into an artist name. A number between 1
// and len(suggestions) picks that suggestion; anything else is taken as a
// name.
func ResolveArtist(input string, suggestions []string) string {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(suggestions) {
		return suggestions[n-1]
	}
	return input
}
