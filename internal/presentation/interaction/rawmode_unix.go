//go:build darwin || linux

package interaction

import (
	"golang.org/x/sys/unix"
)

// rawTerminal remembers the state to restore on close
type rawTerminal struct {
	fd       int
	oldState *unix.Termios
}

// enableRawMode switches off echo and line buffering. ISIG stays enabled so
// Ctrl+C still raises SIGINT.
func enableRawMode(fd int) (*rawTerminal, error) {
	oldState, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}

	newState := *oldState
	newState.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN
	newState.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	newState.Cflag |= unix.CS8
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &newState); err != nil {
		return nil, err
	}
	return &rawTerminal{fd: fd, oldState: oldState}, nil
}

func (t *rawTerminal) restore() error {
	if t.oldState == nil {
		return nil
	}
	return unix.IoctlSetTermios(t.fd, ioctlSetTermios, t.oldState)
}
