package app

import (
	"annotcheck/internal/core/errors"
	"annotcheck/internal/engine/annotation"
	"annotcheck/internal/engine/inspection"
	"annotcheck/internal/engine/parser"
	"annotcheck/internal/shared/observability"
	"annotcheck/internal/shared/util"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Scan parses every watch and index path, rebuilds the class index and
// inspects the watched files. Files that cannot be read or parsed are logged
// and skipped.
func (a *App) Scan(ctx context.Context) (Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Scan")
	defer span.End()
	start := time.Now()

	watchFiles, err := a.ScanDirectories(a.watchRoots)
	if err != nil {
		return Result{}, err
	}
	indexFiles, err := a.ScanDirectories(a.indexRoots)
	if err != nil {
		return Result{}, err
	}

	indexOnly := make(map[string]bool, len(indexFiles))
	for _, path := range indexFiles {
		indexOnly[path] = true
	}
	all := append([]string(nil), indexFiles...)
	for _, path := range watchFiles {
		if !indexOnly[path] {
			all = append(all, path)
		}
	}
	span.SetAttributes(attribute.Int("files.watch", len(watchFiles)), attribute.Int("files.index", len(indexFiles)))

	parsed, err := a.parseFiles(ctx, all)
	if err != nil {
		return Result{}, err
	}
	observability.AnalysisDuration.WithLabelValues("parse").Observe(time.Since(start).Seconds())

	a.filesMu.Lock()
	previous := a.files
	a.files = make(map[string]*parser.File, len(parsed))
	a.indexed = indexOnly
	for i, file := range parsed {
		if file == nil {
			continue
		}
		a.files[all[i]] = file
		a.Index.ReplaceFile(all[i], file.Classes)
	}
	for path := range previous {
		if _, ok := a.files[path]; !ok {
			a.Index.RemoveFile(path)
		}
	}
	a.filesMu.Unlock()

	res, err := a.inspectAll(ctx)
	if err != nil {
		return Result{}, err
	}
	res.Duration = time.Since(start)
	observability.AnalysisDuration.WithLabelValues("scan").Observe(res.Duration.Seconds())
	span.SetAttributes(attribute.Int("diagnostics", len(res.Diagnostics)))

	a.emitUpdate(res)
	return res, nil
}

// ScanDirectories walks roots and returns the sorted, de-duplicated files the
// parser supports that are not excluded. A root is never excluded itself, so
// index_paths may point at a directory such as vendor/ that exclude.dirs skips
// inside watch paths.
func (a *App) ScanDirectories(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			if os.IsNotExist(err) {
				slog.Warn("scan root does not exist", "path", root)
				continue
			}
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "stat scan root"), errors.CtxPath, root)
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				slog.Warn("skipping unreadable path", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != root && a.filter.SkipDir(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if !a.Parser.IsSupportedPath(path) || a.filter.SkipFile(path) {
				return nil
			}
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// parseFiles parses paths on up to Config.Workers goroutines. The returned
// slice is aligned with paths; entries for failed files are nil.
func (a *App) parseFiles(ctx context.Context, paths []string) ([]*parser.File, error) {
	out := make([]*parser.File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.Config.Workers, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file, err := a.parsePath(path)
			if err != nil {
				slog.Warn("failed to process file", "path", path, "error", err)
				return nil
			}
			out[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *App) parsePath(path string) (*parser.File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read file"), errors.CtxPath, path)
	}
	return a.Parser.ParseFile(path, content)
}

// inspectAll runs the inspection over every watched file and returns the
// diagnostics ordered by path, line and column.
func (a *App) inspectAll(ctx context.Context) (Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.inspect")
	defer span.End()
	start := time.Now()

	a.filesMu.RLock()
	targets := make([]*parser.File, 0, len(a.files))
	for path, file := range a.files {
		if !a.indexed[path] {
			targets = append(targets, file)
		}
	}
	indexedFiles := len(a.files) - len(targets)
	a.filesMu.RUnlock()
	sort.Slice(targets, func(i, j int) bool { return targets[i].Path < targets[j].Path })

	perFile := make([][]annotation.Diagnostic, len(targets))
	stats := make([]inspection.Stats, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.Config.Workers, 1))
	for i, file := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perFile[i], stats[i] = a.inspector.InspectFile(gctx, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{
		Files:        len(targets),
		IndexedFiles: indexedFiles,
		Classes:      a.Index.Len(),
		FinishedAt:   time.Now().UTC(),
	}
	for i := range targets {
		res.Diagnostics = append(res.Diagnostics, perFile[i]...)
		res.Stats.Tags += stats[i].Tags
		res.Stats.Checked += stats[i].Checked
		res.Stats.Failed += stats[i].Failed
	}
	sortDiagnostics(res.Diagnostics)
	observability.AnalysisDuration.WithLabelValues("inspect").Observe(time.Since(start).Seconds())
	return res, nil
}

func sortDiagnostics(diags []annotation.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Location, diags[j].Location
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// isIndexPath reports whether path lies below one of the index roots.
func (a *App) isIndexPath(path string) bool {
	return underAny(path, a.indexRoots)
}

func (a *App) isWatchPath(path string) bool {
	return underAny(path, a.watchRoots)
}

func underAny(path string, roots []string) bool {
	for _, root := range roots {
		if util.HasPathPrefix(path, root) {
			return true
		}
	}
	return false
}
