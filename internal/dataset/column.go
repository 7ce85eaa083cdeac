package dataset

import "strings"

// Column is a logical column of the music catalog
type Column string

const (
	TrackID          Column = "track_id"
	TrackName        Column = "track_name"
	ArtistName       Column = "artist_name"
	AlbumName        Column = "album_name"
	Explicit         Column = "explicit"
	TrackPopularity  Column = "track_popularity"
	ArtistPopularity Column = "artist_popularity"
	ArtistFollowers  Column = "artist_followers"
	Duration         Column = "track_duration_min"
	ReleaseDate      Column = "album_release_date"
	Year             Column = "year"
	AlbumTracks      Column = "album_total_tracks"
	AlbumType        Column = "album_type"
	Genres           Column = "artist_genres"
)

// KnownColumns lists every logical column in canonical order
var KnownColumns = []Column{
	TrackID, TrackName, ArtistName, AlbumName, Explicit,
	TrackPopularity, ArtistPopularity, ArtistFollowers, Duration,
	ReleaseDate, Year, AlbumTracks, AlbumType, Genres,
}

// aliases maps alternative header spellings onto logical columns
var aliases = map[string]Column{
	"id":           TrackID,
	"name":         TrackName,
	"artist":       ArtistName,
	"album":        AlbumName,
	"popularity":   TrackPopularity,
	"followers":    ArtistFollowers,
	"duration_min": Duration,
	"release_date": ReleaseDate,
	"total_tracks": AlbumTracks,
	"genres":       Genres,
}

// NumericColumns are the columns that hold numbers after cleaning
var NumericColumns = []Column{
	TrackPopularity, ArtistPopularity, ArtistFollowers, Duration, AlbumTracks, Year,
}

// IsNumeric reports whether c holds numbers
func (c Column) IsNumeric() bool {
	for _, n := range NumericColumns {
		if n == c {
			return true
		}
	}
	return false
}

// ParseColumn resolves a user-supplied column name (canonical or alias)
func ParseColumn(name string) (Column, bool) {
	key := normalizeHeader(name)
	for _, c := range KnownColumns {
		if string(c) == key {
			return c, true
		}
	}
	if c, ok := aliases[key]; ok {
		return c, true
	}
	return "", false
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// ParseExplicit maps the explicit-flag encodings found in catalog exports
// onto a boolean. ok is false for anything unrecognised.
func ParseExplicit(s string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "1.0":
		return true, true
	case "false", "0", "0.0":
		return false, true
	}
	return false, false
}
