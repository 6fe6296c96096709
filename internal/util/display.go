package util

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// Terminal control sequences
const (
	ClearScreen     = "\033[2J"     // Clear entire screen
	ClearLine       = "\033[2K"     // Clear entire line
	ClearToEnd      = "\033[0J"     // Clear from cursor to end of screen
	ClearScrollback = "\033[3J"     // Clear scrollback buffer
	MoveCursorHome  = "\033[H"      // Move cursor to home position
	HideCursor      = "\033[?25l"   // Hide cursor
	ShowCursor      = "\033[?25h"   // Show cursor
	EnterAltScreen  = "\033[?1049h" // Switch to the alternate screen buffer
	ExitAltScreen   = "\033[?1049l" // Return to the normal screen buffer
)

// Printable turns whitespace into plain spaces and drops every other rune
// the terminal would interpret, such as ESC.
func Printable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsPrint(r):
			return r
		}
		return -1
	}, s)
}

// GetDisplayWidth calculates the actual display width of a string, accounting for emojis
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadString pads s with spaces to the given display width.
func PadString(s string, width int, leftAlign bool) string {
	actual := runewidth.StringWidth(s)
	if actual >= width {
		return s
	}
	padding := strings.Repeat(" ", width-actual)
	if leftAlign {
		return s + padding
	}
	return padding + s
}

// Truncate shortens s to at most width display cells, marking the cut with
// an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// CenterText centers text within the given display width
func CenterText(text string, width int) string {
	text = Truncate(text, width)
	w := runewidth.StringWidth(text)
	left := (width - w) / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", width-left-w)
}
