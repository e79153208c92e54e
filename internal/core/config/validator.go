package config

import (
	"annotcheck/internal/core/errors"
	"annotcheck/internal/engine/annotation"
	"annotcheck/internal/engine/parser"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

func invalid(field, format string, args ...any) error {
	return errors.AddContext(errors.New(errors.CodeValidationError, fmt.Sprintf(format, args...)), errors.CtxField, field)
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return invalid("version", "unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateLanguages(cfg *Config) error {
	_, err := parser.BuildLanguageRegistry(cfg.LanguageOverrides())
	if err != nil {
		return invalid("languages", "%v", err)
	}
	return nil
}

func validateExcludes(cfg *Config) error {
	for _, pattern := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			return invalid("exclude.dirs", "invalid pattern %q: %v", pattern, err)
		}
	}
	for _, pattern := range cfg.Exclude.Files {
		if _, err := glob.Compile(pattern); err != nil {
			return invalid("exclude.files", "invalid pattern %q: %v", pattern, err)
		}
	}
	return nil
}

func validateInspection(cfg *Config) error {
	if _, err := annotation.ParseSeverity(cfg.Inspection.Severity); err != nil {
		return invalid("inspection.severity", "must be one of note, warning, error; got %q", cfg.Inspection.Severity)
	}
	for i, tag := range cfg.Inspection.IgnoreTags {
		if strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "@")) == "" {
			return invalid("inspection.ignore_tags", "entry %d must not be empty", i)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return invalid("watch.debounce", "must not be negative, got %s", cfg.Watch.Debounce)
	}
	return nil
}

func validateOutput(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Output.Format)) {
	case "text", "sarif", "tsv", "json":
		cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
		return nil
	default:
		return invalid("output.format", "must be one of text, sarif, tsv, json; got %q", cfg.Output.Format)
	}
}

func validateHistory(cfg *Config) error {
	if !cfg.History.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		return invalid("history.path", "must not be empty when history is enabled")
	}
	return nil
}

// LanguageOverrides converts the [languages] table into parser overrides.
func (c *Config) LanguageOverrides() map[string]parser.LanguageOverride {
	if len(c.Languages) == 0 {
		return nil
	}
	out := make(map[string]parser.LanguageOverride, len(c.Languages))
	for name, lang := range c.Languages {
		out[strings.ToLower(strings.TrimSpace(name))] = parser.LanguageOverride{
			Enabled:    lang.Enabled,
			Extensions: lang.Extensions,
			Filenames:  lang.Filenames,
		}
	}
	return out
}
