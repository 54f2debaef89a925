// Package watch reports changes to the static root directory.
package watch

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of events, e.g. an editor's write-rename-chmod.
const DefaultDebounce = 500 * time.Millisecond

// Change lists the files touched during one debounce window.
type Change struct {
	Files []string
}

// Watcher watches a single directory and calls OnChange after each burst.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
	onChange func(Change)
}

// New creates a watcher for dir. onChange may be nil.
func New(dir string, logger *slog.Logger, onChange func(Change)) *Watcher {
	if logger == nil {
		logger = slog.With("component", "watch")
	}
	return &Watcher{
		dir:      dir,
		debounce: DefaultDebounce,
		logger:   logger,
		onChange: onChange,
	}
}

// SetDebounce overrides the debounce window.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return err
	}

	w.logger.Info("watching static root for changes", "dir", w.dir)

	var (
		mu            sync.Mutex
		pending       = make(map[string]struct{})
		debounceTimer *time.Timer
	)

	flush := func() {
		mu.Lock()
		files := make([]string, 0, len(pending))
		for f := range pending {
			files = append(files, f)
		}
		pending = make(map[string]struct{})
		mu.Unlock()

		if len(files) == 0 || ctx.Err() != nil {
			return
		}
		sort.Strings(files)
		w.logger.Info("static root changed", "files", files)
		if w.onChange != nil {
			w.onChange(Change{Files: files})
		}
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			mu.Unlock()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("file changed", "file", event.Name, "op", event.Op)

			mu.Lock()
			pending[event.Name] = struct{}{}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, flush)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}
