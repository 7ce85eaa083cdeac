package util

import (
	"math"

	"github.com/dustin/go-humanize"
)

// FormatBytes renders a byte count for humans (e.g. "1.2 MB")
func FormatBytes(n int64) string {
	if n < 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(n))
}

// FormatNumber renders a number with thousands separators.
// decimals == 0 renders an integer. NaN renders as "N/A".
func FormatNumber(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	if decimals <= 0 {
		return humanize.Comma(int64(math.Round(v)))
	}
	// CommafWithDigits truncates, so round first
	scale := math.Pow(10, float64(decimals))
	return humanize.CommafWithDigits(math.Round(v*scale)/scale, decimals)
}

// Truncate shortens text to max runes, marking the cut with "..."
func Truncate(text string, max int) string {
	r := []rune(text)
	if max <= 0 || len(r) <= max {
		return text
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
