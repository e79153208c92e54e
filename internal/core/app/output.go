package app

import (
	"annotcheck/internal/data/history"
	"annotcheck/internal/shared/util"
	"annotcheck/internal/ui/report/formats"
	"fmt"
	"strings"
)

// GenerateOutputs writes every report file configured under [output].
func (a *App) GenerateOutputs(res Result) error {
	targets := []struct {
		format string
		path   string
	}{
		{"sarif", a.Config.Output.SARIF},
		{"tsv", a.Config.Output.TSV},
		{"json", a.Config.Output.JSON},
	}
	for _, target := range targets {
		if strings.TrimSpace(target.path) == "" {
			continue
		}
		data, err := formats.Render(target.format, a.projectRoot, res.Diagnostics, false)
		if err != nil {
			return fmt.Errorf("generate %s output: %w", target.format, err)
		}
		outPath := resolveOutputPath(target.path, a.projectRoot)
		if err := util.WriteFileWithDirs(outPath, data, 0o644); err != nil {
			return fmt.Errorf("write %s output %q: %w", target.format, outPath, err)
		}
	}
	return nil
}

// RecordRun stores a summary of res when history is enabled. The boolean is
// false when nothing was recorded.
func (a *App) RecordRun(res Result) (history.Run, bool, error) {
	if a.history == nil {
		return history.Run{}, false, nil
	}
	run, err := a.history.SaveRun(a.Config.History.ProjectKey, runFromResult(res))
	if err != nil {
		return history.Run{}, false, err
	}
	return run, true, nil
}
