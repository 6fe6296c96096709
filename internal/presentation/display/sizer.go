package display

import (
	"os"

	"golang.org/x/term"
)

// Width limits for the board
const (
	defaultWidth = 80
	minWidth     = 40
	maxWidth     = 120
)

// Sizer reports the usable width of the terminal behind a file.
type Sizer struct {
	fd int
}

// NewSizer returns a sizer for f, usually os.Stdout.
func NewSizer(f *os.File) *Sizer {
	return &Sizer{fd: int(f.Fd())}
}

// Width returns the terminal width clamped to a readable range, or the
// default when the file is not a terminal.
func (s *Sizer) Width() int {
	w, _, err := term.GetSize(s.fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return clampWidth(w)
}

func clampWidth(w int) int {
	return min(max(w, minWidth), maxWidth)
}
