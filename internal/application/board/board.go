// Package board runs the interactive tally board.
package board

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/penwyp/go-tally/internal/core/alert"
	"github.com/penwyp/go-tally/internal/core/model"
	"github.com/penwyp/go-tally/internal/core/tally"
	"github.com/penwyp/go-tally/internal/presentation/display"
	"github.com/penwyp/go-tally/internal/presentation/formatter"
	"github.com/penwyp/go-tally/internal/presentation/interaction"
	"github.com/penwyp/go-tally/internal/util"
)

// Renderer draws board frames.
type Renderer interface {
	Render(frame display.Frame)
	EnterAlternateScreen()
	ExitAlternateScreen()
}

// Config holds the board settings taken from the command line.
type Config struct {
	ExportDir     string
	AlertDuration time.Duration
}

// Board owns the interaction state and applies key presses to the store.
// All methods except Run's blocking wait must be called from the goroutine
// running Run.
type Board struct {
	store   *tally.Store
	alert   *alert.Alert
	display Renderer
	config  Config
	state   model.InteractionState
	snap    model.Snapshot
	editor  *interaction.LineEditor
	now     func() time.Time
}

// New creates a board over a loaded store.
func New(store *tally.Store, renderer Renderer, config Config) *Board {
	if config.AlertDuration <= 0 {
		config.AlertDuration = model.AlertDuration
	}
	b := &Board{
		store:   store,
		alert:   alert.New(),
		display: renderer,
		config:  config,
		snap:    store.Snapshot(),
		editor:  interaction.NewLineEditor(model.MaxTopicNameLength),
		now:     time.Now,
	}
	// frames draw from the last committed state
	store.Subscribe(func(snap model.Snapshot) { b.snap = snap })
	return b
}

// Run draws the board and processes keys until the user quits, the key
// channel closes or ctx is cancelled.
func (b *Board) Run(ctx context.Context, keys <-chan interaction.KeyEvent) error {
	util.LogInfo("Starting board", util.F("topics", len(b.snap.Topics)))

	b.display.EnterAlternateScreen()
	defer b.display.ExitAlternateScreen()
	defer b.alert.Stop()

	b.render()

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down board...")
			return nil

		case ev, ok := <-keys:
			if !ok {
				util.LogInfo("Keyboard closed, shutting down board")
				return nil
			}
			if b.HandleKey(ev) {
				return nil
			}
			b.render()

		case gen := <-b.alert.C():
			if b.alert.Expire(gen) {
				b.render()
			}
		}
	}
}

func (b *Board) render() {
	b.display.Render(b.Frame())
}

// Frame returns what the board currently shows.
func (b *Board) Frame() display.Frame {
	msg, visible := b.alert.Active()
	return display.Frame{
		Snapshot:     b.snap.Clone(),
		Capacity:     b.store.Capacity(),
		State:        b.state,
		Alert:        msg,
		AlertVisible: visible,
	}
}

// State returns the interaction state.
func (b *Board) State() model.InteractionState {
	return b.state
}

// HandleKey applies one key press and reports whether the board should quit.
func (b *Board) HandleKey(event interaction.KeyEvent) bool {
	if event.Type == interaction.KeyInterrupt {
		return true
	}

	// Handle confirm dialog inputs first
	if dialog := b.state.ConfirmDialog; dialog != nil {
		switch {
		case event.Type == interaction.KeyChar && (event.Key == 'y' || event.Key == 'Y'):
			b.state.ConfirmDialog = nil
			if dialog.OnConfirm != nil {
				dialog.OnConfirm()
			}
		case event.Type == interaction.KeyEscape,
			event.Type == interaction.KeyChar && (event.Key == 'n' || event.Key == 'N'):
			b.state.ConfirmDialog = nil
			if dialog.OnCancel != nil {
				dialog.OnCancel()
			}
		}
		return false
	}

	if b.state.Prompt != nil {
		b.handlePrompt(event)
		return false
	}

	if b.state.ShowHelp {
		switch {
		case event.Type == interaction.KeyEscape,
			event.Type == interaction.KeyChar && (event.Key == 'h' || event.Key == 'H'):
			b.state.ShowHelp = false
		case event.Type == interaction.KeyChar && (event.Key == 'q' || event.Key == 'Q'):
			return true
		}
		return false
	}

	switch event.Type {
	case interaction.KeyEscape:
		return true
	case interaction.KeyUp:
		b.moveSelection(-1)
	case interaction.KeyDown:
		b.moveSelection(1)
	case interaction.KeyEnter:
		b.increment(b.state.Selected)
	case interaction.KeyChar:
		switch key := event.Key; {
		case key >= '1' && key <= '9':
			b.increment(int(key - '1'))
		case key == ' ':
			b.increment(b.state.Selected)
		case key == 'j' || key == 'J':
			b.moveSelection(1)
		case key == 'k' || key == 'K':
			b.moveSelection(-1)
		case key == 'a' || key == 'A':
			b.openAddPrompt()
		case key == 'c' || key == 'C':
			b.confirmClearCounts()
		case key == 'r' || key == 'R':
			b.confirmResetTopics()
		case key == 'e' || key == 'E':
			b.export()
		case key == 'd' || key == 'D':
			b.alert.Dismiss()
		case key == 'h' || key == 'H':
			b.state.ShowHelp = true
		case key == 'q' || key == 'Q':
			return true
		}
	}
	return false
}

func (b *Board) moveSelection(delta int) {
	n := len(b.snap.Topics)
	if n == 0 {
		b.state.Selected = 0
		return
	}
	b.state.Selected = min(max(b.state.Selected+delta, 0), n-1)
}

// increment counts one event for the topic at position idx.
func (b *Board) increment(idx int) {
	topics := b.snap.Topics
	if idx < 0 || idx >= len(topics) {
		return
	}
	b.state.Selected = idx
	b.state.StatusMessage = ""

	err := b.store.Increment(topics[idx].ID)
	if errors.Is(err, tally.ErrTimelineFull) {
		b.alert.Raise(fmt.Sprintf("Maximum of %d events reached. Export or clear counts to continue.",
			b.store.Capacity()), b.config.AlertDuration)
	}
}

func (b *Board) openAddPrompt() {
	b.editor.Reset()
	b.state.Prompt = &model.Prompt{Title: "New topic"}
}

func (b *Board) handlePrompt(event interaction.KeyEvent) {
	switch event.Type {
	case interaction.KeyEscape:
		b.state.Prompt = nil
	case interaction.KeyEnter:
		b.state.Prompt = nil
		if topic, ok := b.store.AddTopic(b.editor.Value()); ok {
			b.state.Selected = len(b.snap.Topics) - 1
			b.state.StatusMessage = fmt.Sprintf("Added topic %q", topic.Name)
		}
	default:
		if b.editor.Apply(event) {
			b.state.Prompt.Value = b.editor.Value()
		}
	}
}

func (b *Board) confirmClearCounts() {
	b.state.ConfirmDialog = &model.ConfirmDialog{
		Title:   "Clear Counts",
		Message: "This sets every count to zero and empties the sequence. Topics are kept. Continue?",
		OnConfirm: func() {
			b.store.ClearCounts()
			b.alert.Dismiss()
			b.state.StatusMessage = "Counts cleared"
		},
	}
}

func (b *Board) confirmResetTopics() {
	b.state.ConfirmDialog = &model.ConfirmDialog{
		Title:   "Reset Topics",
		Message: "This removes every topic and event and restores Pass and Fail. Continue?",
		OnConfirm: func() {
			b.store.ResetTopics()
			b.alert.Dismiss()
			b.state.Selected = 0
			b.state.StatusMessage = "Topics reset"
		},
	}
}

func (b *Board) export() {
	paths, err := formatter.WriteExport(b.config.ExportDir, b.now(), b.snap)
	if err != nil {
		util.LogError("Export failed", util.F("error", err.Error()))
		b.state.StatusMessage = "Export failed: " + err.Error()
		return
	}
	b.state.StatusMessage = fmt.Sprintf("Exported %d files to %s", len(paths), b.config.ExportDir)
}
