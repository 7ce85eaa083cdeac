package util

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal checks if the given file descriptor is a terminal
func IsTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// GetTerminalWidth returns the width of the terminal, or 80 if not a terminal
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // Default width
	}
	return width
}

// Rule returns a horizontal separator that fits the terminal, capped at max
func Rule(ch rune, max int) string {
	width := GetTerminalWidth()
	if max > 0 && width > max {
		width = max
	}
	out := make([]rune, width)
	for i := range out {
		out[i] = ch
	}
	return string(out)
}
