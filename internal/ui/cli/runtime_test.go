package cli

import (
	"annotcheck/internal/core/config"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const missingClassFixture = `<?php
namespace App\Entity;

use Doctrine\ORM\Mapping as ORM;

/**
 * @ORM\Entity
 * @var string
 */
class User {}
`

func writeProject(t *testing.T, extra string) (string, string) {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src", "Entity")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "User.php"), []byte(missingClassFixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfgPath := filepath.Join(root, "annotcheck.toml")
	body := "project_root = '" + root + "'\nwatch_paths = ['src']\nworkers = 2\n" + extra
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return root, cfgPath
}

func TestParseOptions_Defaults(t *testing.T) {
	opts, err := parseOptions([]string{"src", "lib"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.configPath != defaultConfigPath {
		t.Fatalf("expected default config path, got %q", opts.configPath)
	}
	if opts.once || opts.ui || opts.fail || opts.history {
		t.Fatalf("expected mode flags to default to false: %+v", opts)
	}
	if len(opts.args) != 2 || opts.args[0] != "src" {
		t.Fatalf("unexpected positional args: %v", opts.args)
	}
}

func TestParseOptions_UnknownFlag(t *testing.T) {
	if _, err := parseOptions([]string{"--nope"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestApplyModeOptions(t *testing.T) {
	cases := []struct {
		name    string
		opts    cliOptions
		wantErr string
	}{
		{name: "UIWithOnce", opts: cliOptions{ui: true, once: true}, wantErr: "cannot be combined"},
		{name: "UIWithHistory", opts: cliOptions{ui: true, history: true}, wantErr: "cannot be combined"},
		{name: "SinceWithoutHistory", opts: cliOptions{since: "2026-01-01"}, wantErr: "require --history"},
		{name: "BadSince", opts: cliOptions{history: true, since: "yesterday"}, wantErr: "RFC3339"},
		{name: "BadFormat", opts: cliOptions{format: "xml"}, wantErr: "--format"},
		{name: "Valid", opts: cliOptions{format: "SARIF", history: true, since: "2026-01-01"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			err := applyModeOptions(&tc.opts, cfg)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestApplyModeOptions_OverridesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	opts := cliOptions{format: " JSON ", history: true, args: []string{"./app"}}
	if err := applyModeOptions(&opts, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Output.Format)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected --history to enable the history store")
	}
	if len(cfg.WatchPaths) != 1 || cfg.WatchPaths[0] != "./app" {
		t.Fatalf("unexpected watch paths: %v", cfg.WatchPaths)
	}
}

func TestParseSince(t *testing.T) {
	got, err := parseSince("2026-03-04")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date: %v", got)
	}

	got, err = parseSince("2026-03-04T10:00:00+02:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hour() != 8 || got.Location() != time.UTC {
		t.Fatalf("expected UTC normalization, got %v", got)
	}

	if got, err := parseSince("  "); err != nil || !got.IsZero() {
		t.Fatalf("expected zero time for blank input, got %v, %v", got, err)
	}
}

func TestLoadConfig_FallsBackToExampleThenDefaults(t *testing.T) {
	cwd := t.TempDir()

	cfg, path, err := loadConfig(defaultConfigPath, cwd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" || cfg.ProjectRoot != cwd {
		t.Fatalf("expected built-in defaults rooted at cwd, got path=%q root=%q", path, cfg.ProjectRoot)
	}

	example := filepath.Join(cwd, "annotcheck.example.toml")
	if err := os.WriteFile(example, []byte("workers = 3\n"), 0o644); err != nil {
		t.Fatalf("write example: %v", err)
	}
	cfg, path, err = loadConfig(defaultConfigPath, cwd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != example || cfg.Workers != 3 {
		t.Fatalf("expected example config, got path=%q workers=%d", path, cfg.Workers)
	}
}

func TestLoadConfig_ExplicitPathMustExist(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), t.TempDir()); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	if code := run([]string{"--version"}, &out); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.HasPrefix(out.String(), "annotcheck v") {
		t.Fatalf("unexpected version output: %q", out.String())
	}
}

func TestRun_BadFlag(t *testing.T) {
	if code := run([]string{"--definitely-not-a-flag"}, &bytes.Buffer{}); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}

func TestRun_OnceWritesReport(t *testing.T) {
	root, cfgPath := writeProject(t, "[output]\ntsv = 'out/report.tsv'\n")

	var out bytes.Buffer
	if code := run([]string{"--config", cfgPath, "--once", "--format", "json"}, &out); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	var payload struct {
		Count       int `json:"count"`
		Diagnostics []struct {
			Class string `json:"class"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out.String())
	}
	if payload.Count != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", payload.Count)
	}

	if _, err := os.Stat(filepath.Join(root, "out", "report.tsv")); err != nil {
		t.Fatalf("expected TSV output file: %v", err)
	}
}

func TestRun_FailExitsNonZeroOnDiagnostics(t *testing.T) {
	_, cfgPath := writeProject(t, "")
	if code := run([]string{"--config", cfgPath, "--fail"}, &bytes.Buffer{}); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}

	_, cfgPath = writeProject(t, "[index]\nknown_namespaces = ['Doctrine\\ORM\\Mapping']\n")
	if code := run([]string{"--config", cfgPath, "--fail"}, &bytes.Buffer{}); code != 0 {
		t.Fatalf("expected exit 0 once the namespace is known, got %d", code)
	}
}

func TestRun_HistoryMode(t *testing.T) {
	root, cfgPath := writeProject(t, "[history]\nenabled = true\npath = 'var/history.db'\n")

	if code := run([]string{"--config", cfgPath, "--once"}, &bytes.Buffer{}); code != 0 {
		t.Fatalf("expected scan exit 0, got %d", code)
	}

	var out bytes.Buffer
	trendPath := filepath.Join(root, "out", "trend.json")
	if code := run([]string{"--config", cfgPath, "--history", "--trend-json", trendPath}, &out); code != 0 {
		t.Fatalf("expected history exit 0, got %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, one run and a summary, got %q", out.String())
	}
	if !strings.HasPrefix(lines[2], "1 runs") {
		t.Fatalf("unexpected summary line: %q", lines[2])
	}
	if _, err := os.Stat(trendPath); err != nil {
		t.Fatalf("expected trend JSON file: %v", err)
	}
}
