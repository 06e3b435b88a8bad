// Package watch observes the work-item cache and coalesces change bursts
// into single refresh callbacks.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWindow is the debounce window used when the caller passes zero. A
// sync run touches many entry files in quick succession; one run should
// trigger one refresh.
const DefaultWindow = 500 * time.Millisecond

// CacheWatcher watches a cache tree for entry changes using fsnotify.
type CacheWatcher struct {
	watcher   *fsnotify.Watcher
	window    time.Duration
	onRefresh func(path string)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
}

// NewCacheWatcher creates a watcher that calls onRefresh with the last
// changed entry path once a change burst settles.
func NewCacheWatcher(window time.Duration, onRefresh func(path string)) (*CacheWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &CacheWatcher{
		watcher:   w,
		window:    window,
		onRefresh: onRefresh,
	}, nil
}

// Watch adds the cache root and its category directories to the watcher.
func (w *CacheWatcher) Watch(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
		}
		return nil
	})
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *CacheWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			// Category directories created after startup join the watch set.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.Watch(event.Name)
					continue
				}
			}

			if !isCacheEntry(event.Name) {
				continue
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) ||
				event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
				w.trigger(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// trigger resets the debounce timer. The refresh callback fires after the
// window elapses with no further entry changes.
func (w *CacheWatcher) trigger(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = path
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.window, func() {
		w.mu.Lock()
		changed := w.pending
		w.mu.Unlock()
		if w.onRefresh != nil {
			w.onRefresh(changed)
		}
	})
}

func (w *CacheWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}

// isCacheEntry reports whether a path names a cached work item. In-flight
// temp files from atomic writes are not entries.
func isCacheEntry(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".tmp-") {
		return false
	}
	return strings.HasSuffix(base, ".json")
}
