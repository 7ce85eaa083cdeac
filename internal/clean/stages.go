package clean

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/franz/music-catalog/internal/dataset"
	"github.com/franz/music-catalog/internal/util"
)

// Stage is one transformation of the cleaning pipeline. A stage runs when
// the table carries at least one of its columns (all of them when
// RequireAll is set); otherwise it is skipped with a warning.
type Stage struct {
	Name       string
	Columns    []dataset.Column
	RequireAll bool
	apply      func(t *dataset.Table, present []dataset.Column) (changed int, err error)
}

// runnable returns the subset of the stage's columns the schema carries
// and whether that is enough to run the stage
func (s Stage) runnable(schema dataset.Schema) ([]dataset.Column, bool) {
	var present []dataset.Column
	for _, c := range s.Columns {
		if schema.Has(c) {
			present = append(present, c)
		}
	}
	if s.RequireAll {
		return present, len(present) == len(s.Columns)
	}
	return present, len(present) > 0
}

// DefaultStages returns the six stages in pipeline order
func DefaultStages() []Stage {
	return []Stage{
		{
			Name:       "deduplicate",
			Columns:    []dataset.Column{dataset.TrackID},
			RequireAll: true,
			apply:      deduplicate,
		},
		{
			Name:    "drop-incomplete",
			Columns: []dataset.Column{dataset.TrackID, dataset.TrackName, dataset.ArtistName},
			apply:   dropIncomplete,
		},
		{
			Name:    "normalize-text",
			Columns: []dataset.Column{dataset.TrackName, dataset.ArtistName, dataset.AlbumName},
			apply:   normalizeText,
		},
		{
			Name:    "coerce-types",
			Columns: []dataset.Column{dataset.Explicit, dataset.ReleaseDate},
			apply:   coerceTypes,
		},
		{
			Name: "validate-numeric",
			Columns: []dataset.Column{
				dataset.Duration, dataset.TrackPopularity, dataset.ArtistPopularity, dataset.ArtistFollowers,
			},
			apply: validateNumeric,
		},
		{
			Name:       "sort",
			Columns:    []dataset.Column{dataset.TrackPopularity},
			RequireAll: true,
			apply:      sortByPopularity,
		},
	}
}

// deduplicate keeps the first row for every track identifier
func deduplicate(t *dataset.Table, _ []dataset.Column) (int, error) {
	idx := t.Schema.Index(dataset.TrackID)
	seen := make(map[string]struct{}, t.Len())
	t.Filter(func(_ int, row []string) bool {
		id := row[idx]
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
		return true
	})
	return 0, nil
}

// dropIncomplete removes rows where a required column is empty or blank
func dropIncomplete(t *dataset.Table, present []dataset.Column) (int, error) {
	positions := make([]int, len(present))
	for i, c := range present {
		positions[i] = t.Schema.Index(c)
	}
	t.Filter(func(_ int, row []string) bool {
		for _, p := range positions {
			if strings.TrimSpace(row[p]) == "" {
				return false
			}
		}
		return true
	})
	return 0, nil
}

func normalizeText(t *dataset.Table, present []dataset.Column) (int, error) {
	changed := 0
	for _, c := range present {
		p := t.Schema.Index(c)
		for _, row := range t.Rows {
			trimmed := strings.TrimSpace(row[p])
			if trimmed != row[p] {
				row[p] = trimmed
				changed++
			}
		}
	}
	return changed, nil
}

func coerceTypes(t *dataset.Table, present []dataset.Column) (int, error) {
	changed := 0
	for _, c := range present {
		switch c {
		case dataset.Explicit:
			p := t.Schema.Index(c)
			for _, row := range t.Rows {
				next := ""
				if v, ok := dataset.ParseExplicit(row[p]); ok {
					next = strconv.FormatBool(v)
				}
				if next != row[p] {
					row[p] = next
					changed++
				}
			}
		case dataset.ReleaseDate:
			_, unparsed := t.NormalizeReleaseDates()
			changed += unparsed
		}
	}
	return changed, nil
}

// parseNumber reads a numeric cell. Empty and NaN cells are absent; any
// other non-number is a validation failure.
func parseNumber(t *dataset.Table, row int, c dataset.Column) (float64, bool, error) {
	raw := strings.TrimSpace(t.Get(row, c))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: column %s row %d: %q is not a number", util.ErrValidation, c, row+1, raw)
	}
	if math.IsNaN(v) {
		return 0, false, nil
	}
	return v, true, nil
}

func validateNumeric(t *dataset.Table, present []dataset.Column) (int, error) {
	has := make(map[dataset.Column]bool, len(present))
	for _, c := range present {
		has[c] = true
	}

	changed := 0
	drop := make([]bool, t.Len())
	for i := range t.Rows {
		if has[dataset.Duration] {
			d, ok, err := parseNumber(t, i, dataset.Duration)
			if err != nil {
				return 0, err
			}
			if !ok || d <= 0 || d >= 30 {
				drop[i] = true
			}
		}

		for _, c := range []dataset.Column{dataset.TrackPopularity, dataset.ArtistPopularity} {
			if !has[c] {
				continue
			}
			v, ok, err := parseNumber(t, i, c)
			if err != nil {
				return 0, err
			}
			next := ""
			if ok {
				next = strconv.Itoa(int(math.Round(math.Max(0, math.Min(100, v)))))
			}
			if next != t.Get(i, c) {
				t.Set(i, c, next)
				changed++
			}
		}

		if has[dataset.ArtistFollowers] {
			f, ok, err := parseNumber(t, i, dataset.ArtistFollowers)
			if err != nil {
				return 0, err
			}
			if !ok || f < 0 {
				drop[i] = true
			}
		}
	}

	t.Filter(func(i int, _ []string) bool { return !drop[i] })
	return changed, nil
}

// sortByPopularity orders rows by track popularity, highest first. Ties
// keep their order and rows without a score go last.
func sortByPopularity(t *dataset.Table, _ []dataset.Column) (int, error) {
	p := t.Schema.Index(dataset.TrackPopularity)

	type keyed struct {
		row   []string
		pos   int
		score float64
		ok    bool
	}
	keys := make([]keyed, t.Len())
	for i, row := range t.Rows {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[p]), 64)
		keys[i] = keyed{row: row, pos: i, score: v, ok: err == nil && !math.IsNaN(v)}
	}

	sort.SliceStable(keys, func(a, b int) bool {
		ka, kb := keys[a], keys[b]
		if ka.ok != kb.ok {
			return ka.ok
		}
		return ka.ok && ka.score > kb.score
	})

	moved := 0
	for i, k := range keys {
		if k.pos != i {
			moved++
		}
		t.Rows[i] = k.row
	}
	return moved, nil
}
