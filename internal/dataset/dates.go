package dataset

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical release-date format written after cleaning
const DateLayout = "2006-01-02"

// TwoDigitYearCutoff is the last year a 2-digit year may name; later years
// move to the previous century, so "35" reads as 1935.
var TwoDigitYearCutoff = 2030

var (
	// Release dates come with day, month or year precision
	fourDigitYearLayouts = []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01",
		"2006",
		"2006/01/02",
		"2006.01.02",
		// US exports use slashes and dashes month first, EU exports use dots day first
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "2.1.2006", "02.01.2006",
		"Jan 2, 2006", "2 Jan 2006", "January 2, 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "2.1.06", "02.01.06",
	}
)

// ParseDate parses a release date in any supported layout
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// time.Parse maps 00-68 to 2000-2068
			if t.Year() > TwoDigitYearCutoff {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// NormalizeReleaseDates rewrites every release date in canonical form and
// derives the year column. Unparseable dates leave both cells empty; the
// row itself is kept. It returns how many dates parsed and how many did not.
func (t *Table) NormalizeReleaseDates() (parsed, unparsed int) {
	if !t.Schema.Has(ReleaseDate) {
		return 0, 0
	}
	t.EnsureColumn(Year)

	for i := range t.Rows {
		raw := t.Get(i, ReleaseDate)
		d, ok := ParseDate(raw)
		if !ok {
			if strings.TrimSpace(raw) != "" {
				unparsed++
			}
			t.Set(i, ReleaseDate, "")
			t.Set(i, Year, "")
			continue
		}
		parsed++
		t.Set(i, ReleaseDate, d.Format(DateLayout))
		t.Set(i, Year, strconv.Itoa(d.Year()))
	}
	return parsed, unparsed
}
