package commands

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/penwyp/go-tally/internal/application/board"
	"github.com/penwyp/go-tally/internal/presentation/display"
	"github.com/penwyp/go-tally/internal/presentation/interaction"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNotTerminal = errors.New("the board needs an interactive terminal; use add, inc or stats instead")

func (a *app) runBoard(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, kv, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer kv.Close()

	keyboard, err := interaction.NewKeyboardReader(os.Stdin)
	if err != nil {
		return err
	}
	defer keyboard.Close()

	renderer := display.NewTerminalDisplay(os.Stdout, display.NewSizer(os.Stdout).Width)
	b := board.New(store, renderer, board.Config{
		ExportDir:     a.cfg.ExportDir,
		AlertDuration: a.cfg.AlertDuration,
	})
	return b.Run(ctx, keyboard.Events())
}
