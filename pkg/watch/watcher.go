// Package watch re-runs a callback when any of a set of input files
// changes, so derived views can be recomputed and re-rendered.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is used when NewWatcher is given a non-positive debounce.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors input files and calls back once a change has settled.
// The parent directories are watched so editors that replace files by
// renaming are still seen.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	files     map[string]struct{}
	callback  func(path string)
	logger    *logrus.Logger
	mu        sync.Mutex
	pending   map[string]time.Time
}

// NewWatcher creates a watcher for paths.
func NewWatcher(paths []string, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	files := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsWatcher.Close()
			return nil, err
		}
		files[abs] = struct{}{}
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		debounce:  debounce,
		files:     files,
		logger:    logrus.StandardLogger(),
		pending:   make(map[string]time.Time),
	}, nil
}

// SetCallback sets the function to call when a file changes. Callbacks
// run one at a time.
func (w *Watcher) SetCallback(cb func(path string)) {
	w.callback = cb
}

// SetLogger sets the logger for watch errors.
func (w *Watcher) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		w.logger = logger
	}
}

// Start watches until ctx is done. It returns ctx.Err() on cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	dirs := make(map[string]struct{})
	for f := range w.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return err
		}
	}

	for _, f := range w.WatchedFiles() {
		color.Cyan("Watching %s", f)
	}
	color.Cyan("Press Ctrl+C to stop")

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("watch error")
		}
	}
}

// handleEvent records a change to one of the watched files.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	path, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	if _, ok := w.files[path]; !ok {
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

// processPending calls back for files that have been stable for the
// debounce period.
func (w *Watcher) processPending() {
	now := time.Now()
	var ready []string

	w.mu.Lock()
	for path, lastMod := range w.pending {
		if now.Sub(lastMod) >= w.debounce {
			ready = append(ready, path)
		}
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if w.callback == nil {
		return
	}
	sort.Strings(ready)
	for _, path := range ready {
		w.callback(path)
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedFiles returns the watched files, sorted.
func (w *Watcher) WatchedFiles() []string {
	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}
