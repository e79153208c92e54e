package watcher

import (
	"annotcheck/internal/shared/observability"
	"annotcheck/internal/shared/util"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher batches file system changes below a set of roots and reports them
// once the tree has been quiet for the debounce interval.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	filter     *PathFilter
	onChange   func([]string)
	callbackMu sync.Mutex

	dirsMu sync.Mutex
	dirs   map[string]struct{} // watched directories

	pendingMu sync.Mutex
	debounce  time.Duration
	pending   map[string]struct{}
	timer     *time.Timer
}

func NewWatcher(debounce time.Duration, filter *PathFilter, onChange func([]string)) (*Watcher, error) {
	if onChange == nil || filter == nil {
		return nil, os.ErrInvalid
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsWatcher: fsw,
		filter:    filter,
		onChange:  onChange,
		debounce:  debounce,
		dirs:      make(map[string]struct{}),
		pending:   make(map[string]struct{}),
	}, nil
}

func (w *Watcher) SetDebounce(debounce time.Duration) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.debounce = debounce
}

func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		if err := w.watchRecursive(path); err != nil {
			return err
		}
	}
	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.filter.SkipDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return err
		}
		w.dirsMu.Lock()
		w.dirs[path] = struct{}{}
		w.dirsMu.Unlock()
		return nil
	})
}

// forgetDir drops path and every watched directory below it. It reports
// whether path was a watched directory.
func (w *Watcher) forgetDir(path string) bool {
	w.dirsMu.Lock()
	defer w.dirsMu.Unlock()
	if _, ok := w.dirs[path]; !ok {
		return false
	}
	for dir := range w.dirs {
		if util.HasPathPrefix(dir, path) {
			delete(w.dirs, dir)
		}
	}
	return true
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.filter.SkipDir(event.Name) {
				return
			}
			if err := w.watchRecursive(event.Name); err != nil {
				slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
				return
			}
			w.enqueueExistingFiles(event.Name)
			return
		}
	}

	// A directory moved or deleted arrives as one event for the directory
	// itself; the files that were below it produce none.
	if (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) && w.forgetDir(event.Name) {
		w.scheduleChange(event.Name)
		return
	}

	if w.filter.SkipFile(event.Name) {
		return
	}
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.scheduleChange(event.Name)
	}
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

// enqueueExistingFiles picks up files that landed in a new directory before
// it was added to the watch set.
func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && w.filter.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.filter.SkipFile(path) {
			w.scheduleChange(path)
		}
		return nil
	})
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}
