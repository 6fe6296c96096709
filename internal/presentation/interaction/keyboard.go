// Package interaction reads keyboard input for the board.
package interaction

import (
	"io"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/penwyp/go-tally/internal/util"
)

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyType represents the type of key pressed
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyUp
	KeyDown
	KeyInterrupt
)

// Control bytes seen in raw mode
const (
	byteCtrlC     = 3
	byteTab       = 9
	byteLF        = 10
	byteCR        = 13
	byteEsc       = 27
	byteDelete    = 127
	byteBackspace = 8
)

// KeyboardReader handles keyboard input in raw mode
type KeyboardReader struct {
	in        io.Reader
	terminal  *rawTerminal
	input     chan KeyEvent
	stop      chan struct{}
	closeOnce sync.Once
}

// NewKeyboardReader puts the terminal behind f into raw mode and starts
// delivering key events.
func NewKeyboardReader(f *os.File) (*KeyboardReader, error) {
	terminal, err := enableRawMode(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	kr := newReader(f)
	kr.terminal = terminal
	go kr.readInput()
	return kr, nil
}

// NewReader delivers key events parsed from r without touching any
// terminal state. It is used for piped input and tests.
func NewReader(r io.Reader) *KeyboardReader {
	kr := newReader(r)
	go kr.readInput()
	return kr
}

func newReader(r io.Reader) *KeyboardReader {
	return &KeyboardReader{
		in:    r,
		input: make(chan KeyEvent, 16),
		stop:  make(chan struct{}),
	}
}

// readInput reads keyboard input in a goroutine
func (kr *KeyboardReader) readInput() {
	buf := make([]byte, 64)

	for {
		n, err := kr.in.Read(buf)
		if n > 0 {
			for _, ev := range ParseInput(buf[:n]) {
				select {
				case kr.input <- ev:
				case <-kr.stop:
					return
				}
			}
		}
		if err != nil {
			if err != io.EOF {
				util.LogDebug("Keyboard read stopped", util.F("error", err.Error()))
			}
			return
		}
	}
}

// ParseInput turns one read's worth of raw bytes into key events. Arrow key
// sequences are recognized; other escape sequences are dropped.
func ParseInput(buf []byte) []KeyEvent {
	var events []KeyEvent
	for len(buf) > 0 {
		switch b := buf[0]; {
		case b == byteCtrlC:
			events = append(events, KeyEvent{Key: byteCtrlC, Type: KeyInterrupt})
			buf = buf[1:]
		case b == byteCR || b == byteLF:
			events = append(events, KeyEvent{Key: '\n', Type: KeyEnter})
			buf = buf[1:]
		case b == byteDelete || b == byteBackspace:
			events = append(events, KeyEvent{Type: KeyBackspace})
			buf = buf[1:]
		case b == byteEsc:
			ev, size := parseEscape(buf)
			if ev != nil {
				events = append(events, *ev)
			}
			buf = buf[size:]
		case b < 0x20 && b != byteTab:
			buf = buf[1:]
		default:
			r, size := utf8.DecodeRune(buf)
			if r != utf8.RuneError {
				events = append(events, KeyEvent{Key: r, Type: KeyChar})
			}
			buf = buf[size:]
		}
	}
	return events
}

// parseEscape handles a buffer starting with ESC and returns the event, if
// any, with the number of bytes consumed.
func parseEscape(buf []byte) (*KeyEvent, int) {
	if len(buf) == 1 || (buf[1] != '[' && buf[1] != 'O') {
		return &KeyEvent{Key: byteEsc, Type: KeyEscape}, 1
	}
	if len(buf) < 3 {
		return nil, len(buf)
	}
	switch buf[2] {
	case 'A':
		return &KeyEvent{Type: KeyUp}, 3
	case 'B':
		return &KeyEvent{Type: KeyDown}, 3
	}
	// Skip the rest of an unknown CSI sequence up to its final byte
	for i := 2; i < len(buf); i++ {
		if buf[i] >= 0x40 && buf[i] <= 0x7E {
			return nil, i + 1
		}
	}
	return nil, len(buf)
}

// Events returns the keyboard event channel
func (kr *KeyboardReader) Events() <-chan KeyEvent {
	return kr.input
}

// Close stops the keyboard reader and restores terminal
func (kr *KeyboardReader) Close() error {
	var err error
	kr.closeOnce.Do(func() {
		close(kr.stop)
		if kr.terminal != nil {
			err = kr.terminal.restore()
		}
	})
	return err
}
