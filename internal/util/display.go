package util

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ClearToEnd erases from the cursor to the end of the screen.
const ClearToEnd = "\033[J"

// CursorUp moves the cursor n lines up. It returns "" for n <= 0.
func CursorUp(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("\033[%dA", n)
}

// GetDisplayWidth returns the column width of text, counting wide runes twice.
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// TruncateToWidth cuts text to at most width columns, marking the cut with "...".
func TruncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width <= 3 {
		return runewidth.Truncate(text, width, "")
	}
	return runewidth.Truncate(text, width, "...")
}

// PadToWidth right-pads text with spaces to width columns.
func PadToWidth(text string, width int) string {
	return runewidth.FillRight(text, width)
}

// Separator draws a horizontal rule of width columns.
func Separator(width int) string {
	if width <= 0 {
		return ""
	}
	return strings.Repeat("─", width)
}

// WrapLines hard-wraps each line of text at width columns.
func WrapLines(text string, width int) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if width <= 0 || runewidth.StringWidth(line) <= width {
			out = append(out, line)
			continue
		}
		out = append(out, strings.Split(runewidth.Wrap(line, width), "\n")...)
	}
	return out
}
