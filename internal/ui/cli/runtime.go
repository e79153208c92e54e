package cli

import (
	coreapp "annotcheck/internal/core/app"
	"annotcheck/internal/core/config"
	"annotcheck/internal/data/history"
	"annotcheck/internal/shared/observability"
	"annotcheck/internal/shared/util"
	"annotcheck/internal/ui/report"
	"annotcheck/internal/ui/report/formats"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

func Run(args []string) int {
	return run(args, os.Stdout)
}

func run(args []string, stdout io.Writer) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "annotcheck v%s\n", versionString)
		return 0
	}

	cleanupLogs := configureLogging(opts.ui, opts.verbose)
	defer cleanupLogs()

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return 1
	}

	cfg, cfgPath, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	slog.Debug("configuration loaded", "path", cfgPath)

	if err := applyModeOptions(&opts, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	shutdownTracing, err := observability.SetupTracing(context.Background(), cfg.Observability.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	analysis, err := coreapp.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer analysis.Close()

	if opts.history {
		if err := runHistoryMode(opts, cfg, analysis.History(), stdout); err != nil {
			slog.Error("history mode failed", "error", err)
			return 1
		}
		return 0
	}

	res, err := analysis.Scan(context.Background())
	if err != nil {
		slog.Error("initial scan failed", "error", err)
		return 1
	}
	slog.Info("scan complete",
		"files", res.Files,
		"indexed_files", res.IndexedFiles,
		"classes", res.Classes,
		"diagnostics", len(res.Diagnostics),
		"duration", res.Duration,
		"heap_mb", util.GetHeapAllocMB(),
	)

	if !opts.ui {
		out, err := formats.Render(cfg.Output.Format, analysis.ProjectRoot(), res.Diagnostics, cfg.Output.ColorEnabled())
		if err != nil {
			slog.Error("failed to render report", "error", err)
			return 1
		}
		if _, err := stdout.Write(out); err != nil {
			slog.Error("failed to write report", "error", err)
			return 1
		}
	}

	if err := analysis.GenerateOutputs(res); err != nil {
		slog.Error("failed to generate outputs", "error", err)
		return 1
	}
	if rec, recorded, err := analysis.RecordRun(res); err != nil {
		slog.Warn("failed to record run", "error", err)
	} else if recorded {
		slog.Debug("run recorded", "id", rec.ID)
	}

	if opts.once || opts.fail {
		if opts.fail && len(res.Diagnostics) > 0 {
			return 1
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := strings.TrimSpace(cfg.Observability.MetricsAddr); addr != "" {
		server := NewObservabilityServer(addr, coreapp.NewHealthService(analysis))
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(shutdownCtx)
		}()
	}

	if err := analysis.StartWatcher(ctx); err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 1
	}

	if opts.ui {
		if err := runUI(analysis); err != nil {
			slog.Error("ui failed", "error", err)
			return 1
		}
		return 0
	}

	slog.Info("watching for changes", "paths", cfg.WatchPaths, "index_paths", cfg.IndexPaths)
	<-ctx.Done()
	return 0
}

// loadConfig loads path. When path is the default and does not exist, the
// example config next to it is tried and then the built-in defaults are used.
func loadConfig(path, cwd string) (*config.Config, string, error) {
	if path != defaultConfigPath {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}

	for _, candidate := range discoverDefaultConfig(cwd) {
		cfg, err := config.Load(candidate)
		if err == nil {
			return cfg, candidate, nil
		}
		if os.IsNotExist(err) {
			continue
		}
		return nil, "", err
	}

	cfg := config.DefaultConfig()
	cfg.ProjectRoot = cwd
	return cfg, "", nil
}

func discoverDefaultConfig(cwd string) []string {
	return []string{
		filepath.Join(cwd, defaultConfigPath),
		filepath.Join(cwd, "annotcheck.example.toml"),
	}
}

func applyModeOptions(opts *cliOptions, cfg *config.Config) error {
	if opts.ui && (opts.once || opts.fail) {
		return fmt.Errorf("--ui cannot be combined with --once or --fail")
	}
	if opts.ui && opts.history {
		return fmt.Errorf("--ui cannot be combined with --history")
	}
	if !opts.history && (opts.since != "" || opts.historyTSV != "" || opts.trendJSON != "") {
		return fmt.Errorf("--since, --history-tsv and --trend-json require --history")
	}
	if _, err := parseSince(opts.since); err != nil {
		return err
	}

	if opts.format != "" {
		format := strings.ToLower(strings.TrimSpace(opts.format))
		switch format {
		case "text", "sarif", "tsv", "json":
			cfg.Output.Format = format
		default:
			return fmt.Errorf("--format must be one of text, sarif, tsv, json; got %q", opts.format)
		}
	}

	if opts.history {
		cfg.History.Enabled = true
	}

	if len(opts.args) > 0 {
		cfg.WatchPaths = append([]string(nil), opts.args...)
	}
	return nil
}

func parseSince(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, nil
	}

	rfc3339, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return rfc3339.UTC(), nil
	}

	dateOnly, err := time.Parse("2006-01-02", raw)
	if err == nil {
		return dateOnly.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("--since must be RFC3339 or YYYY-MM-DD, got %q", value)
}

func runHistoryMode(opts cliOptions, cfg *config.Config, store *history.Store, stdout io.Writer) error {
	if store == nil {
		return fmt.Errorf("history store is not available")
	}
	since, err := parseSince(opts.since)
	if err != nil {
		return err
	}
	runs, err := store.LoadRuns(cfg.History.ProjectKey, since)
	if err != nil {
		return err
	}
	trend := history.BuildTrend(runs)

	tsv := report.RenderHistoryTSV(runs)
	if opts.historyTSV != "" {
		if err := util.WriteFileWithDirs(opts.historyTSV, tsv, 0o644); err != nil {
			return fmt.Errorf("write history TSV: %w", err)
		}
	}
	if opts.trendJSON != "" {
		data, err := report.RenderTrendJSON(trend)
		if err != nil {
			return err
		}
		if err := util.WriteFileWithDirs(opts.trendJSON, data, 0o644); err != nil {
			return fmt.Errorf("write trend JSON: %w", err)
		}
	}

	if _, err := stdout.Write(tsv); err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, report.RenderTrendSummary(trend))
	return err
}

func configureLogging(uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	var output io.Writer = os.Stderr
	closeFn := func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
			fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
			if err == nil {
				output = f
				closeFn = func() { _ = f.Close() }
			} else {
				fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "annotcheck", "annotcheck.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "annotcheck", "annotcheck.log")
	}

	return "annotcheck.log"
}
