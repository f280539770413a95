// Package watcher observes the media root for files changing outside the
// editor, so the asset catalog can track which media is actually on disk.
package watcher

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type EventType string

const (
	EventCreate EventType = "create"
	EventModify EventType = "modify"
	EventDelete EventType = "delete"
	EventRename EventType = "rename"
)

// Event is a debounced change to one file under the media root. Path is
// slash-separated and relative to the root, matching asset storage paths.
type Event struct {
	Path string
	Type EventType
}

// DefaultDebounce coalesces the event bursts a single file write produces.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches the media root recursively. Per-path debouncing collapses
// rapid event sequences into the final state; project subdirectories created
// later are picked up automatically.
type Watcher struct {
	root     string
	debounce time.Duration
	callback func(Event)
	fsw      *fsnotify.Watcher
	done     chan struct{}
	started  bool
	closed   bool
	mu       sync.Mutex
	logger   *slog.Logger

	debouncer  map[string]*time.Timer
	debounceMu sync.Mutex
}

// New creates a watcher over root, watching it and every existing
// subdirectory. The callback runs on a timer goroutine after the debounce
// window closes.
func New(root string, debounce time.Duration, callback func(Event), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		root:      root,
		debounce:  debounce,
		callback:  callback,
		fsw:       fsw,
		done:      make(chan struct{}),
		logger:    logger.With("component", "watcher"),
		debouncer: make(map[string]*time.Timer),
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch media root %s: %w", root, err)
	}
	return w, nil
}

// Start begins delivering events. It may be called once.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watcher is closed")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}
	w.started = true

	go w.watch()
	return nil
}

// Close stops the event loop and cancels pending debounce timers.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.started {
		close(w.done)
	}

	w.debounceMu.Lock()
	for _, timer := range w.debouncer {
		timer.Stop()
	}
	w.debouncer = make(map[string]*time.Timer)
	w.debounceMu.Unlock()

	return w.fsw.Close()
}

func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	var eventType EventType
	switch {
	case event.Op.Has(fsnotify.Create):
		eventType = EventCreate
	case event.Op.Has(fsnotify.Write):
		eventType = EventModify
	case event.Op.Has(fsnotify.Remove):
		eventType = EventDelete
	case event.Op.Has(fsnotify.Rename):
		eventType = EventRename
	default:
		return
	}

	if eventType == EventCreate {
		// New project directories must be watched as they appear.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	w.debounceEvent(Event{Path: filepath.ToSlash(rel), Type: eventType})
}

// debounceEvent resets the per-path timer so only the last event in a burst
// reaches the callback.
func (w *Watcher) debounceEvent(e Event) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debouncer[e.Path]; exists {
		timer.Stop()
	}
	w.debouncer[e.Path] = time.AfterFunc(w.debounce, func() {
		w.debounceMu.Lock()
		delete(w.debouncer, e.Path)
		w.debounceMu.Unlock()

		w.callback(e)
	})
}
