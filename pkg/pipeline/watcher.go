package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchOptions configures a Watcher.
type WatchOptions struct {
	// Debounce groups rapid changes to one file (0 = 200ms).
	Debounce time.Duration

	// OnUpdate is called after a changed file was reprocessed or a
	// removed file was dropped.
	OnUpdate func(path string, components int, err error)
}

// Watcher reprocesses sources as they change on disk.
//
//	w, err := NewWatcher(pipeline, WatchOptions{}, logger)
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(ctx); err != nil {
//	    return err
//	}
//	defer w.Stop()
type Watcher struct {
	watcher  *fsnotify.Watcher
	pipeline *Pipeline
	options  WatchOptions
	logger   *slog.Logger
	ctx      context.Context

	// Debouncing
	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	// Lifecycle
	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
	wg       sync.WaitGroup
}

// NewWatcher creates a Watcher for the pipeline's root.
func NewWatcher(p *Pipeline, options WatchOptions, logger *slog.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if options.Debounce <= 0 {
		options.Debounce = 200 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		watcher:        watcher,
		pipeline:       p,
		options:        options,
		logger:         logger,
		debounceTimers: make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start watches the root and every non-excluded directory below it.
// Events are handled in a background goroutine until Stop is called or
// ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	w.ctx = ctx
	w.mu.Unlock()

	if err := w.addTree(w.pipeline.Root()); err != nil {
		return err
	}

	w.logger.Info("File watcher started", "root", w.pipeline.Root())

	w.wg.Add(1)
	go w.eventLoop(ctx)
	return nil
}

// Stop stops the watcher. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopChan)
	w.mu.Unlock()

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = make(map[string]*time.Timer)
	w.debounceMu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	w.logger.Info("File watcher stopped")
	return err
}

// Pending returns the number of files waiting for their debounce timer.
func (w *Watcher) Pending() int {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	return len(w.debounceTimers)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil // Continue on error
		}
		if path != w.pipeline.Root() && w.pipeline.match.excluded(relSlash(w.pipeline.Root(), path)) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if path == root {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) eventLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return

		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.pipeline.match.excluded(relSlash(w.pipeline.Root(), path)) {
				if err := w.addTree(path); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if !w.pipeline.Matches(path) {
		return
	}

	w.logger.Debug("File event", "op", event.Op.String(), "file", path)

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.pipeline.metrics.watchEvent("write")
		w.debounce(path)

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.pipeline.metrics.watchEvent("remove")
		w.cancelPending(path)
		w.remove(path)
	}
}

// debounce schedules reprocessing of path. Repeated events within the
// debounce window restart the timer.
func (w *Watcher) debounce(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
	}

	w.debounceTimers[path] = time.AfterFunc(w.options.Debounce, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, path)
		w.debounceMu.Unlock()

		if !w.track() {
			return
		}
		defer w.wg.Done()
		w.reprocess(path)
	})
}

// track registers a fired timer with the wait group so Stop waits for it.
// It returns false once the watcher is stopped.
func (w *Watcher) track() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return false
	}
	w.wg.Add(1)
	return true
}

func (w *Watcher) cancelPending(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
		delete(w.debounceTimers, path)
	}
}

func (w *Watcher) reprocess(path string) {
	if _, err := os.Stat(path); err != nil {
		w.remove(path)
		return
	}

	n, err := w.pipeline.ProcessFile(w.ctx, path)
	if err == nil {
		w.logger.Debug("File reprocessed", "file", path, "components", n)
	}
	if w.options.OnUpdate != nil {
		w.options.OnUpdate(path, n, err)
	}
}

func (w *Watcher) remove(path string) {
	err := w.pipeline.RemoveFile(w.ctx, path)
	if err != nil {
		w.logger.Warn("Failed to remove file", "file", path, "error", err)
	}
	if w.options.OnUpdate != nil {
		w.options.OnUpdate(path, 0, err)
	}
}
