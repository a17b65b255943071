package localstore

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// StorageEvent reports that another process changed a key. No payload is carried.
type StorageEvent struct {
	Key string
}

// Watcher turns filesystem changes in a FileStore directory into storage events.
// Changes made through the watched FileStore itself are not reported.
type Watcher struct {
	store   *FileStore
	watcher *fsnotify.Watcher
	events  chan StorageEvent
	logger  *slog.Logger

	mu         sync.Mutex
	running    bool
	started    bool
	stopCh     chan struct{}
	doneCh     chan struct{}
	closeOnce  sync.Once
	eventsOnce sync.Once
}

func NewWatcher(store *FileStore, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		store:   store,
		watcher: fw,
		events:  make(chan StorageEvent, 16),
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Events is closed after Stop returns.
func (w *Watcher) Events() <-chan StorageEvent { return w.events }

func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := w.watcher.Add(w.store.Dir()); err != nil {
		w.closeWatcher()
		return fmt.Errorf("watch %s: %w", w.store.Dir(), err)
	}
	w.running = true
	w.started = true

	go w.run(ctx)
	return nil
}

// Stop ends the watch and releases the fsnotify handle, also when Start never
// succeeded. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running, started := w.running, w.started
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.closeWatcher()
	// run closes events when it exits; a watcher that never ran closes them here
	if !started {
		w.eventsOnce.Do(func() { close(w.events) })
	}
}

func (w *Watcher) closeWatcher() {
	w.closeOnce.Do(func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Error("storage watcher close failed", "error", err)
		}
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("storage watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	key := filepath.Base(event.Name)
	if strings.HasPrefix(key, ".") {
		return
	}
	if w.store.ownsCurrent(key) {
		return
	}

	select {
	case w.events <- StorageEvent{Key: key}:
	case <-ctx.Done():
	case <-w.stopCh:
	}
}
