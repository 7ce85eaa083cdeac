package catalog

import (
	"sort"
	"strings"
)

// SearchResult is the projection returned by Search
type SearchResult struct {
	Name       string
	Artist     string
	Popularity Num
	Album      string
	Duration   Num
	Explicit   bool
}

// Search finds tracks whose name contains query, ignoring case. Results
// are ordered by popularity (highest first, unscored last) and contain each
// (track, artist) pair once. A blank query matches nothing.
func Search(tracks []Track, query string) []SearchResult {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	needle := fold(query)

	var matches []Track
	for _, t := range tracks {
		if strings.Contains(fold(t.Name), needle) {
			matches = append(matches, t)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].Popularity, matches[j].Popularity
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Value > b.Value
	})

	type pair struct{ name, artist string }
	seen := make(map[pair]struct{}, len(matches))
	results := make([]SearchResult, 0, len(matches))
	for _, t := range matches {
		key := pair{t.Name, t.Artist}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, SearchResult{
			Name:       t.Name,
			Artist:     t.Artist,
			Popularity: t.Popularity,
			Album:      t.Album,
			Duration:   t.Duration,
			Explicit:   t.Explicit,
		})
	}
	return results
}
