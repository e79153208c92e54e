package config

import (
	"annotcheck/internal/core/errors"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "decode config")
	}

	applyDefaults(&cfg)

	validators := []func(*Config) error{
		validateVersion,
		validateLanguages,
		validateExcludes,
		validateInspection,
		validateWatch,
		validateOutput,
		validateHistory,
	}
	for _, validate := range validators {
		if err := validate(&cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if len(cfg.WatchPaths) == 0 {
		cfg.WatchPaths = []string{"."}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "node_modules", "var", "vendor"}
	}

	if strings.TrimSpace(cfg.Inspection.Severity) == "" {
		cfg.Inspection.Severity = "warning"
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxRescansPerSecond <= 0 {
		cfg.Watch.MaxRescansPerSecond = 2
	}
	if cfg.Watch.RescanBurst <= 0 {
		cfg.Watch.RescanBurst = 1
	}

	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = "text"
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "data/database/annotcheck.db"
	}
	if strings.TrimSpace(cfg.History.ProjectKey) == "" {
		cfg.History.ProjectKey = "default"
	}
}
