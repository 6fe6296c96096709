// Package watcher signals when the persisted board changes underneath a
// running process.
package watcher

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-tally/internal/data/storage"
	"github.com/penwyp/go-tally/internal/util"
)

// DefaultPollInterval is used for backends without change notification.
const DefaultPollInterval = time.Second

// Watcher delivers a signal after each observed change. Bursts of changes
// may be coalesced into one signal.
type Watcher interface {
	Changes() <-chan struct{}
	Close() error
}

// New picks the cheapest way to watch key in kv: fsnotify for the file
// backend and polling for everything else.
func New(kv storage.KV, key string, interval time.Duration) (Watcher, error) {
	if fs, ok := kv.(*storage.FileStore); ok {
		return NewFileWatcher(fs.Path(key))
	}
	return NewPollWatcher(kv, key, interval), nil
}

// notify sends without blocking; one pending signal is enough.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// FileWatcher watches a single file through its directory so atomic
// replace-by-rename is seen.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	changes chan struct{}
}

func NewFileWatcher(path string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := util.EnsureDir(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	fw := &FileWatcher{
		watcher: watcher,
		path:    filepath.Clean(path),
		changes: make(chan struct{}, 1),
	}
	go fw.processEvents()

	util.LogDebug("Watching board file", util.F("path", fw.path))
	return fw, nil
}

func (fw *FileWatcher) processEvents() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				notify(fw.changes)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			// Log error but continue running
			util.LogError("File monitoring error", util.F("error", err.Error()))
		}
	}
}

func (fw *FileWatcher) Changes() <-chan struct{} {
	return fw.changes
}

func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}

// PollWatcher compares the stored value on an interval.
type PollWatcher struct {
	kv       storage.KV
	key      string
	interval time.Duration
	changes  chan struct{}
	stop     chan struct{}
	once     sync.Once
	last     []byte
}

func NewPollWatcher(kv storage.KV, key string, interval time.Duration) *PollWatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	pw := &PollWatcher{
		kv:       kv,
		key:      key,
		interval: interval,
		changes:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	pw.last, _ = pw.read()
	go pw.run()
	return pw
}

func (pw *PollWatcher) read() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pw.interval)
	defer cancel()
	data, err := pw.kv.Get(ctx, pw.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return data, err
}

func (pw *PollWatcher) run() {
	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-pw.stop:
			return
		case <-ticker.C:
			data, err := pw.read()
			if err != nil {
				util.LogWarn("Polling board failed", util.F("error", err.Error()))
				continue
			}
			if !bytes.Equal(data, pw.last) {
				pw.last = data
				notify(pw.changes)
			}
		}
	}
}

func (pw *PollWatcher) Changes() <-chan struct{} {
	return pw.changes
}

func (pw *PollWatcher) Close() error {
	pw.once.Do(func() { close(pw.stop) })
	return nil
}
