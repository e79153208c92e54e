package parser

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

type LanguageSpec struct {
	Name       string
	Extensions []string
	Filenames  []string
	Enabled    bool
}

type LanguageOverride struct {
	Enabled    *bool
	Extensions []string
	Filenames  []string
}

func DefaultLanguageRegistry() map[string]LanguageSpec {
	return map[string]LanguageSpec{
		"php": {
			Name:       "php",
			Extensions: []string{".inc", ".php", ".phtml"},
			Enabled:    true,
		},
	}
}

func BuildLanguageRegistry(overrides map[string]LanguageOverride) (map[string]LanguageSpec, error) {
	registry := cloneLanguageRegistry(DefaultLanguageRegistry())
	for language, override := range overrides {
		spec, ok := registry[language]
		if !ok {
			return nil, fmt.Errorf("unknown language override %q", language)
		}
		if override.Enabled != nil {
			spec.Enabled = *override.Enabled
		}
		if len(override.Extensions) > 0 {
			spec.Extensions = normalizeExtensions(override.Extensions)
		}
		if len(override.Filenames) > 0 {
			spec.Filenames = normalizeFilenames(override.Filenames)
		}
		registry[language] = spec
	}
	return registry, nil
}

func cloneLanguageRegistry(in map[string]LanguageSpec) map[string]LanguageSpec {
	out := make(map[string]LanguageSpec, len(in))
	for id, spec := range in {
		copySpec := spec
		copySpec.Extensions = append([]string(nil), spec.Extensions...)
		copySpec.Filenames = append([]string(nil), spec.Filenames...)
		out[id] = copySpec
	}
	return out
}

func normalizeExtensions(values []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(values))
	for _, value := range values {
		raw := strings.TrimSpace(strings.ToLower(value))
		if raw == "" {
			continue
		}
		if !strings.HasPrefix(raw, ".") {
			raw = "." + raw
		}
		if seen[raw] {
			continue
		}
		seen[raw] = true
		out = append(out, raw)
	}
	sort.Strings(out)
	return out
}

func normalizeFilenames(values []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(values))
	for _, value := range values {
		raw := strings.TrimSpace(strings.ToLower(path.Base(value)))
		if raw == "" || raw == "." {
			continue
		}
		if seen[raw] {
			continue
		}
		seen[raw] = true
		out = append(out, raw)
	}
	sort.Strings(out)
	return out
}
