// Package watch reloads metadata files as they change on disk.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/propdoc/pkg/metadata"
)

const defaultDebounce = 200 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period per file before it is reloaded.
	Debounce time.Duration
	// Discover selects which files under the root are metadata.
	Discover metadata.DiscoverConfig
}

// DefaultOptions returns a 200ms debounce and the default discovery globs.
func DefaultOptions() Options {
	return Options{
		Debounce: defaultDebounce,
		Discover: metadata.DefaultDiscoverConfig(),
	}
}

// Handler receives reload results. Nil callbacks are skipped.
// Callbacks run on timer goroutines and may be called concurrently for
// different files.
type Handler struct {
	// OnChange is called with the freshly decoded contents of path.
	OnChange func(path string, set *metadata.Set)
	// OnRemove is called when path is removed or renamed away.
	OnRemove func(path string)
	// OnError is called when a changed file cannot be loaded.
	OnError func(path string, err error)
}

// Watcher watches a metadata root and reloads changed files through a
// Loader, debouncing bursts of writes to the same file.
//
// Usage:
//
//	w, err := watch.New(loader, watch.DefaultOptions(), logger)
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//	err = w.Start(root, watch.Handler{OnChange: rerender})
type Watcher struct {
	watcher *fsnotify.Watcher
	loader  *metadata.Loader
	logger  *slog.Logger
	options Options

	root    string
	handler Handler

	timers  map[string]*time.Timer
	timerMu sync.Mutex

	stopChan chan struct{}
	done     chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// New creates a Watcher that reloads files through loader.
func New(loader *metadata.Loader, options Options, logger *slog.Logger) (*Watcher, error) {
	if loader == nil {
		return nil, errors.New("watch: loader is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if options.Debounce <= 0 {
		options.Debounce = defaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		watcher:  fw,
		loader:   loader,
		logger:   logger,
		options:  options,
		timers:   make(map[string]*time.Timer),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start watches root and every non-ignored directory below it, then
// processes events in the background until Stop is called.
func (w *Watcher) Start(root string, handler Handler) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return errors.New("watcher already stopped")
	}
	if w.started {
		return errors.New("watcher already started")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve root path: %w", err)
	}

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != absRoot && ignoredDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if path == absRoot {
				return err
			}
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	w.root = absRoot
	w.handler = handler
	w.started = true
	go w.eventLoop()

	w.logger.Info("metadata watcher started", "root", absRoot)
	return nil
}

// Stop stops watching and cancels pending reloads. It is idempotent.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	close(w.stopChan)
	w.mu.Unlock()

	w.timerMu.Lock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.timerMu.Unlock()

	err := w.watcher.Close()
	if started {
		<-w.done
	}
	w.logger.Info("metadata watcher stopped")
	return err
}

// Pending returns the number of files waiting for their debounce to expire.
func (w *Watcher) Pending() int {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	return len(w.timers)
}

func (w *Watcher) eventLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.stopChan:
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
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Op.Has(fsnotify.Create) && w.addDir(path) {
		return
	}
	if !w.options.Discover.Matches(w.root, path) || inIgnoredDir(w.root, path) {
		return
	}

	w.logger.Debug("metadata file event", "op", event.Op.String(), "file", path)

	switch {
	case event.Op.Has(fsnotify.Write), event.Op.Has(fsnotify.Create):
		w.schedule(path)
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		w.remove(path)
	}
}

// addDir starts watching a newly created directory. It reports whether path
// was a directory.
func (w *Watcher) addDir(path string) bool {
	isDir, err := isDirectory(path)
	if err != nil || !isDir {
		return false
	}
	if ignoredDir(filepath.Base(path)) {
		return true
	}
	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("failed to watch directory", "path", path, "error", err)
	}
	return true
}

// schedule reloads path once no further event for it arrived within the
// debounce window.
func (w *Watcher) schedule(path string) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if timer, exists := w.timers[path]; exists {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(w.options.Debounce, func() {
		w.timerMu.Lock()
		current := w.timers[path] == timer
		if current {
			delete(w.timers, path)
		}
		w.timerMu.Unlock()
		if current {
			w.reload(path)
		}
	})
	w.timers[path] = timer
}

func (w *Watcher) reload(path string) {
	w.loader.Invalidate(path)

	set, err := w.loader.LoadFile(path)
	if err != nil {
		w.logger.Warn("failed to reload metadata file", "file", path, "error", err)
		if w.handler.OnError != nil {
			w.handler.OnError(path, err)
		}
		return
	}

	w.logger.Debug("metadata file reloaded", "file", path, "components", len(set.Components))
	if w.handler.OnChange != nil {
		w.handler.OnChange(path, set)
	}
}

func (w *Watcher) remove(path string) {
	w.timerMu.Lock()
	if timer, exists := w.timers[path]; exists {
		timer.Stop()
		delete(w.timers, path)
	}
	w.timerMu.Unlock()

	w.loader.Invalidate(path)
	w.logger.Debug("metadata file removed", "file", path)
	if w.handler.OnRemove != nil {
		w.handler.OnRemove(path)
	}
}
