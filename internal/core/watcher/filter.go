package watcher

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// PathFilter decides which directories are descended into and which files are
// handed to the parser. Directory and file globs match against the base name.
type PathFilter struct {
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	extensions   map[string]bool
	filenames    map[string]bool
}

func NewPathFilter(excludeDirs, excludeFiles, extensions, filenames []string) (*PathFilter, error) {
	dirs, err := compileGlobs(excludeDirs)
	if err != nil {
		return nil, err
	}
	files, err := compileGlobs(excludeFiles)
	if err != nil {
		return nil, err
	}
	return &PathFilter{
		excludeDirs:  dirs,
		excludeFiles: files,
		extensions:   lowerSet(extensions),
		filenames:    lowerSet(filenames),
	}, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func lowerSet(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out[v] = true
		}
	}
	return out
}

func (f *PathFilter) SkipDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range f.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (f *PathFilter) SkipFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if len(f.extensions) > 0 || len(f.filenames) > 0 {
		if !f.filenames[base] && !f.extensions[strings.ToLower(filepath.Ext(base))] {
			return true
		}
	}
	for _, g := range f.excludeFiles {
		if g.Match(filepath.Base(path)) {
			return true
		}
	}
	return false
}
