//go:build !darwin && !linux

package interaction

import "errors"

type rawTerminal struct{}

func enableRawMode(int) (*rawTerminal, error) {
	return nil, errors.New("raw terminal mode is not supported on this platform")
}

func (t *rawTerminal) restore() error {
	return nil
}
