package interaction

import "unicode"

// LineEditor holds the text typed into a one-line prompt.
type LineEditor struct {
	buf   []rune
	limit int
}

// NewLineEditor returns an editor that accepts at most limit runes. A limit
// of zero means unbounded.
func NewLineEditor(limit int) *LineEditor {
	return &LineEditor{limit: limit}
}

// Apply feeds a key event to the editor and reports whether the text
// changed. Enter and Escape are left to the caller.
func (e *LineEditor) Apply(ev KeyEvent) bool {
	switch ev.Type {
	case KeyChar:
		return e.Insert(ev.Key)
	case KeyBackspace:
		return e.Backspace()
	}
	return false
}

// Insert appends a printable rune.
func (e *LineEditor) Insert(r rune) bool {
	if !unicode.IsPrint(r) {
		return false
	}
	if e.limit > 0 && len(e.buf) >= e.limit {
		return false
	}
	e.buf = append(e.buf, r)
	return true
}

// Backspace removes the last rune.
func (e *LineEditor) Backspace() bool {
	if len(e.buf) == 0 {
		return false
	}
	e.buf = e.buf[:len(e.buf)-1]
	return true
}

// Value returns the current text.
func (e *LineEditor) Value() string {
	return string(e.buf)
}

// Reset clears the text.
func (e *LineEditor) Reset() {
	e.buf = e.buf[:0]
}
