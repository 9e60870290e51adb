// Package watcher notices edits made to the preference store by other
// processes so the daemon can re-sync with it.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/nightshift/internal/logger"
)

// StoreWatcher calls onChange, debounced, after the store file changes
type StoreWatcher struct {
	path     string
	onChange func()
	debounce time.Duration

	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
	changed  chan struct{}
}

func New(path string, debounce time.Duration, onChange func()) (*StoreWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &StoreWatcher{
		path:     absPath,
		onChange: onChange,
		debounce: debounce,
		watcher:  w,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
		changed:  make(chan struct{}, 1),
	}, nil
}

// Start watches the directory holding the store. Atomic replace and SQLite
// journal files never touch the store inode itself, so the file cannot be
// watched directly.
func (sw *StoreWatcher) Start(ctx context.Context) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	dir := filepath.Dir(sw.path)
	if err := sw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch store directory %s: %w", dir, err)
	}
	logger.Info("Watching preference store", "path", sw.path)

	sw.started = true
	go sw.loop(ctx)
	return nil
}

// Stop ends watching. A pending debounced change is dropped.
func (sw *StoreWatcher) Stop() error {
	var err error
	sw.stopOnce.Do(func() {
		sw.mu.Lock()
		started := sw.started
		sw.mu.Unlock()

		close(sw.stopChan)
		err = sw.watcher.Close()
		if started {
			<-sw.done
		}
	})
	return err
}

// relevant matches the store file and its SQLite sidecars
func (sw *StoreWatcher) relevant(name string) bool {
	base := filepath.Base(name)
	file := filepath.Base(sw.path)
	return base == file || base == file+"-journal" || base == file+"-wal"
}

func (sw *StoreWatcher) loop(ctx context.Context) {
	defer close(sw.done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sw.stopChan:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !sw.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("Store change detected", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(sw.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(sw.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			sw.notify()
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("Store watcher error", "error", err)
		}
	}
}

func (sw *StoreWatcher) notify() {
	select {
	case sw.changed <- struct{}{}:
	default:
	}
	if sw.onChange != nil {
		sw.onChange()
	}
}

// Changed receives a value after each debounced change, for callers that
// prefer a channel to the callback. Values are coalesced.
func (sw *StoreWatcher) Changed() <-chan struct{} {
	return sw.changed
}
