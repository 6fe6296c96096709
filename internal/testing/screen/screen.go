// Package screen replays terminal output onto a virtual grid so tests can
// assert on what a user would actually see after in-place redraws.
package screen

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

var csiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

// StripANSI removes CSI escape sequences, leaving printable text.
func StripANSI(s string) string {
	return csiPattern.ReplaceAllString(s, "")
}

// Screen is a fixed-width grid that grows downward as rows are written.
type Screen struct {
	width int
	rows  [][]rune
	row   int
	col   int
}

// New returns an empty screen width cells wide.
func New(width int) *Screen {
	return &Screen{width: width}
}

// Replay feeds output through a fresh screen and returns it.
func Replay(width int, output string) *Screen {
	s := New(width)
	s.Write([]byte(output))
	return s
}

// Write interprets output the way the board's renderer emits it: cursor
// home, erase line, erase below, CR/LF and SGR colors (ignored).
func (s *Screen) Write(p []byte) (int, error) {
	runes := []rune(string(p))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '\x1b':
			i = s.escape(runes, i)
		case '\r':
			s.col = 0
		case '\n':
			s.row++
		default:
			s.put(r)
		}
	}
	return len(p), nil
}

// escape applies the CSI sequence starting at runes[i] and returns the
// index of its final byte.
func (s *Screen) escape(runes []rune, i int) int {
	if i+1 >= len(runes) || runes[i+1] != '[' {
		return i
	}
	j := i + 2
	for j < len(runes) && (runes[j] == ';' || runes[j] == '?' || (runes[j] >= '0' && runes[j] <= '9')) {
		j++
	}
	if j >= len(runes) {
		return len(runes) - 1
	}

	params := string(runes[i+2 : j])
	switch runes[j] {
	case 'H':
		s.row, s.col = 0, 0
		if parts := strings.Split(params, ";"); len(parts) == 2 {
			s.row = atoi(parts[0], 1) - 1
			s.col = atoi(parts[1], 1) - 1
		}
	case 'K':
		s.eraseLine()
	case 'J':
		switch params {
		case "2":
			s.rows = nil
			return j
		case "3":
			return j
		}
		s.eraseLine()
		if s.row+1 < len(s.rows) {
			s.rows = s.rows[:s.row+1]
		}
	case 'A':
		s.row = max(0, s.row-atoi(params, 1))
	case 'B':
		s.row += atoi(params, 1)
	case 'C':
		s.col = min(s.width-1, s.col+atoi(params, 1))
	case 'D':
		s.col = max(0, s.col-atoi(params, 1))
	}
	return j
}

func (s *Screen) line(row int) []rune {
	for len(s.rows) <= row {
		blank := make([]rune, s.width)
		for k := range blank {
			blank[k] = ' '
		}
		s.rows = append(s.rows, blank)
	}
	return s.rows[row]
}

func (s *Screen) put(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 || s.col+w > s.width {
		return
	}
	line := s.line(s.row)
	line[s.col] = r
	// wide runes occupy a second, empty cell
	for k := 1; k < w; k++ {
		line[s.col+k] = 0
	}
	s.col += w
}

func (s *Screen) eraseLine() {
	if s.row >= len(s.rows) {
		return
	}
	line := s.rows[s.row]
	for k := s.col; k < len(line); k++ {
		line[k] = ' '
	}
}

// Lines returns every row with trailing blanks trimmed.
func (s *Screen) Lines() []string {
	out := make([]string, len(s.rows))
	for i := range s.rows {
		out[i] = s.Line(i)
	}
	return out
}

// Line returns row i, or "" when it was never written.
func (s *Screen) Line(i int) string {
	if i < 0 || i >= len(s.rows) {
		return ""
	}
	var b strings.Builder
	for _, r := range s.rows[i] {
		if r != 0 {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Text joins all rows with newlines.
func (s *Screen) Text() string {
	return strings.Join(s.Lines(), "\n")
}

// Contains reports whether any row holds text.
func (s *Screen) Contains(text string) bool {
	for _, l := range s.Lines() {
		if strings.Contains(l, text) {
			return true
		}
	}
	return false
}

func atoi(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
