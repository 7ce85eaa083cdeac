package catalog

import (
	"github.com/franz/music-catalog/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the canonical table as a whole
type Summary struct {
	Tracks         int
	Artists        int
	Albums         int
	Explicit       int
	AvgPopularity  Num
	YearMin        Num
	YearMax        Num
	AvgDuration    Num
	MinDuration    Num
	MaxDuration    Num
	AvgFollowers   Num
	MaxFollowers   Num
	AvgAlbumTracks Num
}

// Summarize computes the data summary shown at startup
func Summarize(tracks []Track) Summary {
	s := Summary{Tracks: len(tracks)}

	artists := make(map[string]struct{})
	albums := make(map[string]struct{})
	for _, t := range tracks {
		if t.Artist != "" {
			artists[t.Artist] = struct{}{}
		}
		if t.Album != "" {
			albums[t.Album] = struct{}{}
		}
		if t.Explicit {
			s.Explicit++
		}
	}
	s.Artists = len(artists)
	s.Albums = len(albums)

	s.AvgPopularity = mean(Values(tracks, dataset.TrackPopularity))
	s.YearMin, s.YearMax = extent(Values(tracks, dataset.Year))

	durations := Values(tracks, dataset.Duration)
	s.AvgDuration = mean(durations)
	s.MinDuration, s.MaxDuration = extent(durations)

	followers := Values(tracks, dataset.ArtistFollowers)
	s.AvgFollowers = mean(followers)
	_, s.MaxFollowers = extent(followers)

	s.AvgAlbumTracks = mean(Values(tracks, dataset.AlbumTracks))
	return s
}

func mean(values []float64) Num {
	if len(values) == 0 {
		return Num{}
	}
	return NumOf(stat.Mean(values, nil))
}

func extent(values []float64) (Num, Num) {
	if len(values) == 0 {
		return Num{}, Num{}
	}
	return NumOf(floats.Min(values)), NumOf(floats.Max(values))
}
