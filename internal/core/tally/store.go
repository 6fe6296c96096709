// Package tally holds the board state and every operation that changes it.
package tally

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/penwyp/go-tally/internal/core/model"
	"github.com/penwyp/go-tally/internal/util"
)

// ErrTimelineFull is returned by Increment once the event log holds
// model.MaxTimelineEvents entries.
var ErrTimelineFull = errors.New("timeline is full")

const saveTimeout = 5 * time.Second

// Repository persists and restores board snapshots.
type Repository interface {
	Load(ctx context.Context) (model.Snapshot, error)
	Save(ctx context.Context, snap model.Snapshot) error
}

// Listener is notified with the new state after every committed mutation.
type Listener func(model.Snapshot)

// Store is the single source of truth for topics and the event log.
type Store struct {
	mu         sync.RWMutex
	repo       Repository
	palette    model.Palette
	capacity   int
	now        func() time.Time
	newID      func() string
	topics     []model.Topic
	timeline   []model.TimelineEvent
	colorIndex int
	listeners  []Listener

	// saveMu orders commits so the slot never falls behind memory
	saveMu  sync.Mutex
	saveErr error
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how topic ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithPalette overrides the topic palette. It must hold more than
// model.ReservedColors entries for user topics to get distinct colors.
func WithPalette(p model.Palette) Option {
	return func(s *Store) { s.palette = p }
}

// WithCapacity overrides the event log capacity.
func WithCapacity(n int) Option {
	return func(s *Store) { s.capacity = n }
}

// NewStore returns a store seeded with the default topics. Call Load to
// restore persisted state. A nil repo keeps the store in memory only.
func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:     repo,
		palette:  model.DefaultPalette,
		capacity: model.MaxTimelineEvents,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seedDefaults()
	return s
}

// Load restores persisted state once at startup. Read failures and empty
// slots leave the default topics in place; they are logged, never returned.
func (s *Store) Load(ctx context.Context) {
	if s.repo == nil {
		return
	}

	snap, err := s.repo.Load(ctx)
	if err != nil {
		util.LogError("Failed to load saved board, using defaults", util.F("error", err.Error()))
		snap = model.Snapshot{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.IsEmpty() {
		s.seedDefaults()
		return
	}

	s.topics = snap.Topics
	s.timeline = snap.Timeline
	if s.timeline == nil {
		s.timeline = []model.TimelineEvent{}
	}
	s.repinDefaultColors()
	s.colorIndex = max(0, len(s.topics)-model.ReservedColors)

	util.LogInfo("Board loaded", util.F("topics", len(s.topics)), util.F("events", len(s.timeline)))
}

// seedDefaults replaces the state with the Pass and Fail topics and an empty
// log. Callers hold the lock or own the store exclusively.
func (s *Store) seedDefaults() {
	s.topics = []model.Topic{
		{ID: s.newID(), Name: model.DefaultPassName, Color: s.palette.Pass()},
		{ID: s.newID(), Name: model.DefaultFailName, Color: s.palette.Fail()},
	}
	s.timeline = []model.TimelineEvent{}
	s.colorIndex = 0
}

// repinDefaultColors restores the reserved colors on the first topic named
// Pass and the first named Fail, repairing hand-edited saves.
func (s *Store) repinDefaultColors() {
	passDone, failDone := false, false
	for i := range s.topics {
		switch {
		case !passDone && s.topics[i].Name == model.DefaultPassName:
			s.topics[i].Color = s.palette.Pass()
			passDone = true
		case !failDone && s.topics[i].Name == model.DefaultFailName:
			s.topics[i].Color = s.palette.Fail()
			failDone = true
		}
	}
}

// Subscribe registers fn to run after every committed mutation. Listeners
// run on the mutating goroutine and must not mutate the store.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// AddTopic appends a topic with the next palette color. Control characters
// are dropped and the name is cut to model.MaxTopicNameLength runes. Blank
// names are ignored and report false.
func (s *Store) AddTopic(name string) (model.Topic, bool) {
	name = cleanTopicName(name)
	if name == "" {
		return model.Topic{}, false
	}

	s.mu.Lock()
	topic := model.Topic{
		ID:    s.newID(),
		Name:  name,
		Color: s.palette.Next(s.colorIndex),
	}
	s.colorIndex++
	s.topics = append(s.topics, topic)
	s.mu.Unlock()

	util.LogInfo("Topic added", util.F("name", topic.Name), util.F("color", topic.Color))
	s.commit()
	return topic, true
}

// Increment bumps the topic's count and logs an event. It returns
// ErrTimelineFull without changing anything when the log is at capacity.
// An unknown id is ignored.
func (s *Store) Increment(topicID string) error {
	s.mu.Lock()
	if len(s.timeline) >= s.capacity {
		s.mu.Unlock()
		util.LogWarn("Timeline full, increment refused", util.F("capacity", s.capacity))
		return ErrTimelineFull
	}

	idx := s.indexOf(topicID)
	if idx < 0 {
		s.mu.Unlock()
		util.LogDebug("Increment for unknown topic ignored", util.F("id", topicID))
		return nil
	}

	now := s.now()
	s.topics[idx].Count++
	s.timeline = append(s.timeline, model.TimelineEvent{
		TopicID:      s.topics[idx].ID,
		TopicName:    s.topics[idx].Name,
		Timestamp:    util.EpochMillis(now),
		ISODatestamp: util.ISOTimestamp(now),
	})
	s.mu.Unlock()

	s.commit()
	return nil
}

// ClearCounts zeroes every count and empties the event log. Topics and their
// colors are kept.
func (s *Store) ClearCounts() {
	s.mu.Lock()
	for i := range s.topics {
		s.topics[i].Count = 0
	}
	s.timeline = []model.TimelineEvent{}
	s.mu.Unlock()

	util.LogInfo("Counts cleared")
	s.commit()
}

// ResetTopics discards all topics and events and reseeds the defaults.
func (s *Store) ResetTopics() {
	s.mu.Lock()
	s.seedDefaults()
	s.mu.Unlock()

	util.LogInfo("Topics reset")
	s.commit()
}

// commit persists the current state and notifies listeners. Save errors are
// logged and kept for LastSaveError so a broken backend never blocks the
// board. The snapshot is taken under saveMu, so whichever commit saves last
// also carries the latest state.
func (s *Store) commit() {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	snap := s.Snapshot()

	s.mu.RLock()
	repo := s.repo
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	s.saveErr = nil
	if repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := repo.Save(ctx, snap); err != nil {
			util.LogError("Failed to save board", util.F("error", err.Error()))
			s.saveErr = err
		}
		cancel()
	}

	for _, fn := range listeners {
		fn(snap.Clone())
	}
}

// LastSaveError returns the error from the most recent save, or nil when it
// succeeded or nothing has been saved yet.
func (s *Store) LastSaveError() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.saveErr
}

func cleanTopicName(name string) string {
	name = strings.TrimSpace(util.Printable(name))
	if r := []rune(name); len(r) > model.MaxTopicNameLength {
		name = strings.TrimSpace(string(r[:model.MaxTopicNameLength]))
	}
	return name
}

func (s *Store) indexOf(topicID string) int {
	for i := range s.topics {
		if s.topics[i].ID == topicID {
			return i
		}
	}
	return -1
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Snapshot{Topics: s.topics, Timeline: s.timeline}.Clone()
}

// Topics returns a copy of the topic list.
func (s *Store) Topics() []model.Topic {
	return s.Snapshot().Topics
}

// Timeline returns a copy of the event log.
func (s *Store) Timeline() []model.TimelineEvent {
	return s.Snapshot().Timeline
}

// Capacity returns the event log capacity.
func (s *Store) Capacity() int {
	return s.capacity
}

// Topic returns the topic with the given id.
func (s *Store) Topic(id string) (model.Topic, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.topics[idx], true
	}
	return model.Topic{}, false
}

// Lookup resolves a topic by id, then by exact name, then by
// case-insensitive name. The first match wins.
func (s *Store) Lookup(ref string) (model.Topic, bool) {
	ref = strings.TrimSpace(ref)
	if t, ok := s.Topic(ref); ok {
		return t, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.topics {
		if t.Name == ref {
			return t, true
		}
	}
	for _, t := range s.topics {
		if strings.EqualFold(t.Name, ref) {
			return t, true
		}
	}
	return model.Topic{}, false
}
