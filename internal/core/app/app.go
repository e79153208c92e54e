package app

import (
	"annotcheck/internal/core/config"
	"annotcheck/internal/core/watcher"
	"annotcheck/internal/data/history"
	"annotcheck/internal/data/queue"
	"annotcheck/internal/engine/annotation"
	"annotcheck/internal/engine/index"
	"annotcheck/internal/engine/inspection"
	"annotcheck/internal/engine/parser"
	"annotcheck/internal/shared/util"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Result is the outcome of a full scan or of an incremental rescan.
type Result struct {
	Diagnostics  []annotation.Diagnostic
	Files        int // inspected files
	IndexedFiles int // files only contributing declarations
	Classes      int
	Stats        inspection.Stats
	Duration     time.Duration
	FinishedAt   time.Time
}

type App struct {
	Config    *config.Config
	Parser    *parser.Parser
	Index     *index.ClassIndex
	inspector *inspection.Inspector
	filter    *watcher.PathFilter
	history   *history.Store

	projectRoot string
	watchRoots  []string
	indexRoots  []string

	rescanLimiter *util.Limiter
	activeWatcher *watcher.Watcher
	runQueue      *queue.MemoryQueue[history.Run]
	recorderDone  chan struct{}
	closeOnce     sync.Once
	closeErr      error

	filesMu sync.RWMutex
	files   map[string]*parser.File
	indexed map[string]bool // paths that are indexed but never inspected

	updateMu sync.RWMutex
	onUpdate func(Result)
	last     Result
}

func New(cfg *config.Config) (*App, error) {
	registry, err := parser.BuildLanguageRegistry(cfg.LanguageOverrides())
	if err != nil {
		return nil, err
	}
	loader, err := parser.NewGrammarLoaderWithRegistry(registry)
	if err != nil {
		return nil, err
	}
	p := parser.NewParser(loader)
	if err := p.RegisterDefaultExtractors(); err != nil {
		return nil, err
	}

	filter, err := watcher.NewPathFilter(cfg.Exclude.Dirs, cfg.Exclude.Files, p.SupportedExtensions(), p.SupportedFilenames())
	if err != nil {
		return nil, fmt.Errorf("compile exclude patterns: %w", err)
	}

	severity, err := annotation.ParseSeverity(cfg.Inspection.Severity)
	if err != nil {
		return nil, err
	}

	root, err := resolveProjectRoot(cfg.ProjectRoot)
	if err != nil {
		return nil, err
	}

	ix := index.New(cfg.Index.KnownClasses, cfg.Index.KnownNamespaces)
	a := &App{
		Config: cfg,
		Parser: p,
		Index:  ix,
		inspector: inspection.New(ix, inspection.Options{
			Severity:     severity,
			SkipAbsolute: cfg.Inspection.SkipAbsolute,
			IgnoreTags:   cfg.Inspection.IgnoreTags,
		}),
		filter:        filter,
		projectRoot:   root,
		watchRoots:    absRoots(root, cfg.WatchPaths),
		indexRoots:    absRoots(root, cfg.IndexPaths),
		rescanLimiter: util.NewLimiter(cfg.Watch.MaxRescansPerSecond, max(cfg.Watch.RescanBurst, 1)),
		files:         make(map[string]*parser.File),
		indexed:       make(map[string]bool),
	}

	if cfg.History.Enabled {
		store, err := history.Open(resolveOutputPath(cfg.History.Path, root))
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		a.history = store
		a.startRecorder()
	}
	return a, nil
}

func resolveProjectRoot(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return os.Getwd()
	}
	return filepath.Abs(root)
}

// absRoots resolves relative roots against the project root and drops
// duplicates while keeping order.
func absRoots(projectRoot string, paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = resolveOutputPath(p, projectRoot)
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func resolveOutputPath(path, root string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

func (a *App) ProjectRoot() string {
	return a.projectRoot
}

func (a *App) History() *history.Store {
	return a.history
}

func (a *App) SetUpdateHandler(handler func(Result)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

// LastResult is the most recent scan or rescan result.
func (a *App) LastResult() Result {
	a.updateMu.RLock()
	defer a.updateMu.RUnlock()
	return a.last
}

func (a *App) emitUpdate(res Result) {
	a.updateMu.Lock()
	a.last = res
	handler := a.onUpdate
	a.updateMu.Unlock()
	if handler != nil {
		handler(res)
	}
}

// Close stops the watcher, flushes queued runs and closes the history store.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		if a.activeWatcher != nil {
			a.closeErr = a.activeWatcher.Close()
		}
		a.stopRecorder()
		if a.history != nil {
			if err := a.history.Close(); err != nil && a.closeErr == nil {
				a.closeErr = err
			}
		}
	})
	return a.closeErr
}
