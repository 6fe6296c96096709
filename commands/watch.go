package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/penwyp/go-tally/internal/core/model"
	"github.com/penwyp/go-tally/internal/data/storage"
	"github.com/penwyp/go-tally/internal/data/watcher"
	"github.com/penwyp/go-tally/internal/presentation/display"
	"github.com/penwyp/go-tally/internal/presentation/interaction"
	"github.com/penwyp/go-tally/internal/util"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show the board read-only and redraw when it changes",
		Long: `Follows the saved board, for example one driven by another terminal or by
scripts calling "go-tally inc". The file backend is watched with fsnotify;
database backends are polled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errNotTerminal
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			kv, err := storage.Open(ctx, a.cfg.StorageOptions())
			if err != nil {
				return err
			}
			defer kv.Close()
			repo := storage.NewRepository(kv)

			w, err := watcher.New(kv, repo.Key(), a.cfg.PollInterval)
			if err != nil {
				return err
			}
			defer w.Close()

			// q quits when stdin is a terminal; otherwise only signals stop the view
			var keys <-chan interaction.KeyEvent
			if term.IsTerminal(int(os.Stdin.Fd())) {
				keyboard, err := interaction.NewKeyboardReader(os.Stdin)
				if err != nil {
					return err
				}
				defer keyboard.Close()
				keys = keyboard.Events()
			}

			renderer := display.NewTerminalDisplay(os.Stdout, display.NewSizer(os.Stdout).Width)
			renderer.EnterAlternateScreen()
			defer renderer.ExitAlternateScreen()

			return watchLoop(ctx, repo, w, keys, renderer, describeSource(kv, repo.Key(), a.cfg.Backend))
		},
	}
}

// watchLoop redraws the saved board until ctx ends or q is pressed.
func watchLoop(ctx context.Context, repo *storage.Repository, w watcher.Watcher,
	keys <-chan interaction.KeyEvent, renderer *display.TerminalDisplay, source string) error {
	draw := func() {
		snap, err := repo.Load(ctx)
		if err != nil {
			util.LogError("Failed to reload board", util.F("error", err.Error()))
			return
		}
		renderer.Render(display.Frame{
			Snapshot: snap,
			Capacity: model.MaxTimelineEvents,
			Watching: source,
		})
	}

	draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changes():
			draw()
		case ev, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			if ev.Type == interaction.KeyInterrupt || ev.Type == interaction.KeyEscape ||
				(ev.Type == interaction.KeyChar && (ev.Key == 'q' || ev.Key == 'Q')) {
				return nil
			}
		}
	}
}

func describeSource(kv storage.KV, key, backend string) string {
	if fs, ok := kv.(*storage.FileStore); ok {
		return fs.Path(key)
	}
	return backend + " backend"
}
