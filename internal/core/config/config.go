package config

import (
	"time"
)

type Config struct {
	Version       int                 `toml:"version"`
	ProjectRoot   string              `toml:"project_root"`
	WatchPaths    []string            `toml:"watch_paths"`
	IndexPaths    []string            `toml:"index_paths"` // Indexed for class lookup but never inspected, e.g. vendor/
	Workers       int                 `toml:"workers"`
	Languages     map[string]Language `toml:"languages"`
	Exclude       Exclude             `toml:"exclude"`
	Inspection    Inspection          `toml:"inspection"`
	Index         Index               `toml:"index"`
	Watch         Watch               `toml:"watch"`
	Output        Output              `toml:"output"`
	History       History             `toml:"history"`
	Observability Observability       `toml:"observability"`
}

type Language struct {
	Enabled    *bool    `toml:"enabled"`
	Extensions []string `toml:"extensions"`
	Filenames  []string `toml:"filenames"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Inspection struct {
	Severity     string   `toml:"severity"`
	SkipAbsolute bool     `toml:"skip_absolute"`
	IgnoreTags   []string `toml:"ignore_tags"`
}

type Index struct {
	KnownClasses    []string `toml:"known_classes"`
	KnownNamespaces []string `toml:"known_namespaces"`
}

type Watch struct {
	Debounce            time.Duration `toml:"debounce"`
	MaxRescansPerSecond float64       `toml:"max_rescans_per_second"`
	RescanBurst         int           `toml:"rescan_burst"`
}

type Output struct {
	Format string `toml:"format"` // text, sarif, tsv or json for stdout
	Color  *bool  `toml:"color"`
	SARIF  string `toml:"sarif"`
	TSV    string `toml:"tsv"`
	JSON   string `toml:"json"`
}

type History struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	ProjectKey string `toml:"project_key"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// DefaultConfig is used when no config file can be found.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// ColorEnabled reports whether text output should be styled.
func (o Output) ColorEnabled() bool {
	return o.Color == nil || *o.Color
}
