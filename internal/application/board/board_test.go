package board

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/penwyp/go-tally/internal/core/model"
	"github.com/penwyp/go-tally/internal/core/tally"
	"github.com/penwyp/go-tally/internal/data/storage"
	"github.com/penwyp/go-tally/internal/presentation/display"
	"github.com/penwyp/go-tally/internal/presentation/interaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRenderer struct {
	mu      sync.Mutex
	frames  []display.Frame
	entered int
	exited  int
}

func (r *recordingRenderer) Render(f display.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *recordingRenderer) EnterAlternateScreen() { r.entered++ }
func (r *recordingRenderer) ExitAlternateScreen()  { r.exited++ }

func (r *recordingRenderer) last() display.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

func char(r rune) interaction.KeyEvent {
	return interaction.KeyEvent{Key: r, Type: interaction.KeyChar}
}

var (
	enter  = interaction.KeyEvent{Type: interaction.KeyEnter}
	escape = interaction.KeyEvent{Key: 27, Type: interaction.KeyEscape}
)

func newTestBoard(t *testing.T, opts ...tally.Option) (*Board, *tally.Store, *recordingRenderer) {
	t.Helper()
	store := tally.NewStore(storage.NewRepository(storage.NewMemoryStore()), opts...)
	store.Load(context.Background())
	r := &recordingRenderer{}
	b := New(store, r, Config{ExportDir: t.TempDir(), AlertDuration: time.Hour})
	b.now = func() time.Time { return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC) }
	return b, store, r
}

func press(b *Board, keys ...interaction.KeyEvent) bool {
	for _, k := range keys {
		if b.HandleKey(k) {
			return true
		}
	}
	return false
}

func TestNumberKeysIncrement(t *testing.T) {
	b, store, _ := newTestBoard(t)

	press(b, char('1'), char('1'), char('2'), char('9'))

	topics := store.Topics()
	assert.Equal(t, 2, topics[0].Count)
	assert.Equal(t, 1, topics[1].Count)
	assert.Len(t, store.Timeline(), 3, "key for a missing topic does nothing")
	assert.Equal(t, 1, b.State().Selected)
}

func TestSelectionAndSpace(t *testing.T) {
	b, store, _ := newTestBoard(t)

	press(b, char('j'), char(' '), interaction.KeyEvent{Type: interaction.KeyUp}, enter)
	topics := store.Topics()
	assert.Equal(t, 1, topics[0].Count)
	assert.Equal(t, 1, topics[1].Count)

	press(b, char('k'), char('k'))
	assert.Equal(t, 0, b.State().Selected, "selection stops at the top")
	press(b, char('j'), char('j'), interaction.KeyEvent{Type: interaction.KeyDown})
	assert.Equal(t, 1, b.State().Selected, "selection stops at the bottom")
}

func TestAddTopicPrompt(t *testing.T) {
	b, store, _ := newTestBoard(t)

	press(b, char('a'))
	require.NotNil(t, b.State().Prompt)

	press(b, char('q'), char('F'), char('x'), interaction.KeyEvent{Type: interaction.KeyBackspace})
	assert.Equal(t, "qF", b.State().Prompt.Value, "q types instead of quitting")

	press(b, enter)
	assert.Nil(t, b.State().Prompt)
	topics := store.Topics()
	require.Len(t, topics, 3)
	assert.Equal(t, "qF", topics[2].Name)
	assert.Equal(t, 2, b.State().Selected)
	assert.Contains(t, b.State().StatusMessage, "qF")
}

func TestAddTopicPromptCancelAndBlank(t *testing.T) {
	b, store, _ := newTestBoard(t)

	press(b, char('a'), char('X'), escape)
	assert.Nil(t, b.State().Prompt)
	assert.Len(t, store.Topics(), 2)

	press(b, char('a'), char(' '), enter)
	assert.Len(t, store.Topics(), 2, "blank names are ignored")

	press(b, char('a'))
	assert.Equal(t, "", b.State().Prompt.Value, "prompt starts empty")
}

func TestClearCountsNeedsConfirmation(t *testing.T) {
	b, store, _ := newTestBoard(t)
	press(b, char('1'), char('2'))

	press(b, char('c'))
	require.NotNil(t, b.State().ConfirmDialog)
	press(b, char('1'))
	assert.Len(t, store.Timeline(), 2, "keys are ignored while the dialog is open")
	press(b, char('n'))
	assert.Nil(t, b.State().ConfirmDialog)
	assert.Len(t, store.Timeline(), 2)

	press(b, char('c'), char('y'))
	assert.Nil(t, b.State().ConfirmDialog)
	assert.Empty(t, store.Timeline())
	for _, topic := range store.Topics() {
		assert.Zero(t, topic.Count)
	}
}

func TestResetTopicsNeedsConfirmation(t *testing.T) {
	b, store, _ := newTestBoard(t)
	press(b, char('a'), char('Z'), enter, char('3'))
	require.Len(t, store.Topics(), 3)

	press(b, char('r'), escape)
	assert.Len(t, store.Topics(), 3)

	press(b, char('r'), char('Y'))
	topics := store.Topics()
	require.Len(t, topics, 2)
	assert.Equal(t, "Pass", topics[0].Name)
	assert.Equal(t, "Fail", topics[1].Name)
	assert.Empty(t, store.Timeline())
	assert.Equal(t, 0, b.State().Selected)
}

func TestCapacityRaisesAlert(t *testing.T) {
	b, store, _ := newTestBoard(t, tally.WithCapacity(2))

	press(b, char('1'), char('1'))
	_, visible := b.alert.Active()
	assert.False(t, visible)

	press(b, char('2'))
	msg, visible := b.alert.Active()
	assert.True(t, visible)
	assert.Contains(t, msg, "Maximum of 2 events")
	assert.Zero(t, store.Topics()[1].Count)

	press(b, char('d'))
	_, visible = b.alert.Active()
	assert.False(t, visible)
}

func TestClearDismissesAlert(t *testing.T) {
	b, _, _ := newTestBoard(t, tally.WithCapacity(1))
	press(b, char('1'), char('1'))
	_, visible := b.alert.Active()
	require.True(t, visible)

	press(b, char('c'), char('y'))
	_, visible = b.alert.Active()
	assert.False(t, visible)
}

func TestExportWritesBothFiles(t *testing.T) {
	b, _, _ := newTestBoard(t)
	press(b, char('1'), char('e'))

	assert.Contains(t, b.State().StatusMessage, "Exported 2 files")
	entries, err := os.ReadDir(b.config.ExportDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"event-counter-totals-2024-01-15T10-30-00-000Z.csv",
		"event-counter-events-2024-01-15T10-30-00-000Z.csv",
	}, names)
}

func TestHelpToggle(t *testing.T) {
	b, _, _ := newTestBoard(t)

	press(b, char('h'))
	assert.True(t, b.State().ShowHelp)
	assert.False(t, press(b, escape), "escape closes help before quitting")
	assert.False(t, b.State().ShowHelp)

	press(b, char('h'), char('h'))
	assert.False(t, b.State().ShowHelp)
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []interaction.KeyEvent{char('q'), char('Q'), escape, {Key: 3, Type: interaction.KeyInterrupt}} {
		b, _, _ := newTestBoard(t)
		assert.True(t, b.HandleKey(k), "%+v", k)
	}

	b, _, _ := newTestBoard(t)
	press(b, char('a'))
	assert.True(t, b.HandleKey(interaction.KeyEvent{Key: 3, Type: interaction.KeyInterrupt}), "Ctrl+C quits from the prompt")
}

func TestRunRendersAndQuits(t *testing.T) {
	b, store, r := newTestBoard(t)
	keys := make(chan interaction.KeyEvent, 4)
	keys <- char('1')
	keys <- char('q')

	require.NoError(t, b.Run(context.Background(), keys))

	assert.Equal(t, 1, r.entered)
	assert.Equal(t, 1, r.exited)
	assert.Len(t, r.frames, 2, "initial frame and one per handled key")
	assert.Len(t, r.last().Snapshot.Timeline, 1)
	assert.Equal(t, model.MaxTimelineEvents, r.last().Capacity)
	assert.Equal(t, 1, store.Topics()[0].Count)
}

func TestRunStopsOnCancelAndClosedKeys(t *testing.T) {
	b, _, _ := newTestBoard(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, b.Run(ctx, make(chan interaction.KeyEvent)))

	b, _, _ = newTestBoard(t)
	keys := make(chan interaction.KeyEvent)
	close(keys)
	require.NoError(t, b.Run(context.Background(), keys))
}

func TestRunRedrawsWhenAlertExpires(t *testing.T) {
	b, _, r := newTestBoard(t, tally.WithCapacity(0))
	b.config.AlertDuration = 20 * time.Millisecond

	keys := make(chan interaction.KeyEvent, 1)
	keys <- char('1')
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx, keys) }()

	assert.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		n := len(r.frames)
		return n >= 3 && r.frames[1].AlertVisible && !r.frames[n-1].AlertVisible
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestFrameFollowsStoreCommits(t *testing.T) {
	b, store, _ := newTestBoard(t)
	require.Len(t, b.Frame().Snapshot.Topics, 2)

	topic, ok := store.AddTopic("External")
	require.True(t, ok)
	require.NoError(t, store.Increment(topic.ID))

	snap := b.Frame().Snapshot
	require.Len(t, snap.Topics, 3)
	assert.Equal(t, "External", snap.Topics[2].Name)
	assert.Len(t, snap.Timeline, 1)

	press(b, char('3'))
	assert.Equal(t, 2, b.Frame().Snapshot.Topics[2].Count)
}

func TestAddPromptCapsNameLength(t *testing.T) {
	b, store, _ := newTestBoard(t)

	press(b, char('a'))
	for i := 0; i < model.MaxTopicNameLength+10; i++ {
		press(b, char('x'))
	}
	press(b, enter)

	topics := store.Topics()
	require.Len(t, topics, 3)
	assert.Len(t, topics[2].Name, model.MaxTopicNameLength)
}
