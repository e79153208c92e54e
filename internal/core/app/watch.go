package app

import (
	"annotcheck/internal/core/watcher"
	"annotcheck/internal/shared/observability"
	"annotcheck/internal/shared/util"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// HandleChanges re-parses the changed paths, drops deleted files from the
// index and re-inspects every watched file, since a change in one file can
// create or remove the class another file's annotation refers to. Calls are
// throttled by the rescan limiter.
func (a *App) HandleChanges(ctx context.Context, paths []string) (Result, error) {
	if err := a.rescanLimiter.Wait(ctx, 1); err != nil {
		return Result{}, err
	}
	ctx, span := observability.Tracer.Start(ctx, "app.HandleChanges")
	defer span.End()
	span.SetAttributes(attribute.Int("paths", len(paths)))

	slog.Info("detected changes", "count", len(paths))
	start := time.Now()

	for _, path := range paths {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		// A missing path is either a deleted file or a directory that was
		// moved or deleted along with everything under it.
		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.removeTree(path)
			continue
		}
		if !a.Parser.IsSupportedPath(path) || a.filter.SkipFile(path) {
			continue
		}
		indexOnly := a.isIndexPath(path)
		if !indexOnly && !a.isWatchPath(path) {
			continue
		}

		file, err := a.parsePath(path)
		if err != nil {
			slog.Warn("failed to re-process file", "path", path, "error", err)
			continue
		}
		a.filesMu.Lock()
		a.files[path] = file
		if indexOnly {
			a.indexed[path] = true
		} else {
			delete(a.indexed, path)
		}
		a.filesMu.Unlock()
		a.Index.ReplaceFile(path, file.Classes)
	}

	res, err := a.inspectAll(ctx)
	if err != nil {
		return Result{}, err
	}
	res.Duration = time.Since(start)
	observability.AnalysisDuration.WithLabelValues("rescan").Observe(res.Duration.Seconds())

	a.emitUpdate(res)
	return res, nil
}

// removeTree forgets path and every tracked file below it.
func (a *App) removeTree(path string) {
	a.filesMu.Lock()
	var removed []string
	for file := range a.files {
		if util.HasPathPrefix(file, path) {
			removed = append(removed, file)
			delete(a.files, file)
			delete(a.indexed, file)
		}
	}
	a.filesMu.Unlock()

	for _, file := range removed {
		a.Index.RemoveFile(file)
	}
	if len(removed) > 1 {
		slog.Debug("removed directory from index", "path", path, "files", len(removed))
	}
}

// StartWatcher watches the watch and index roots. Every debounced batch is
// rescanned, written to the configured outputs and recorded in history.
func (a *App) StartWatcher(ctx context.Context) error {
	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, a.filter, func(paths []string) {
		res, err := a.HandleChanges(ctx, paths)
		if err != nil {
			if ctx.Err() == nil {
				slog.Error("rescan failed", "error", err)
			}
			return
		}
		if err := a.GenerateOutputs(res); err != nil {
			slog.Error("failed to generate outputs", "error", err)
		}
		a.EnqueueRun(res)
	})
	if err != nil {
		return err
	}
	a.activeWatcher = w

	roots := append(append([]string(nil), a.watchRoots...), a.indexRoots...)
	existing := roots[:0]
	for _, root := range roots {
		if _, err := os.Stat(root); err == nil {
			existing = append(existing, root)
		}
	}
	return w.Watch(existing)
}
