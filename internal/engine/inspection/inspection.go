// Package inspection walks the doc-block tags of parsed PHP files and reports
// annotation tags whose class cannot be resolved.
package inspection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"annotcheck/internal/core/errors"
	"annotcheck/internal/engine/annotation"
	"annotcheck/internal/engine/parser"
	"annotcheck/internal/shared/observability"
)

// ClassOracle reports whether a class-like declaration exists for a fully
// qualified name.
type ClassOracle interface {
	Exists(fqn string) bool
}

type Options struct {
	Severity     annotation.Severity
	SkipAbsolute bool
	IgnoreTags   []string
}

type Inspector struct {
	oracle       ClassOracle
	severity     annotation.Severity
	skipAbsolute bool
	ignored      map[string]bool
}

// Stats counts what a single InspectFile call looked at.
type Stats struct {
	Tags    int
	Checked int
	Failed  int
}

func New(oracle ClassOracle, opts Options) *Inspector {
	severity := opts.Severity
	if severity == "" {
		severity = annotation.SeverityWarning
	}
	ignored := make(map[string]bool, len(standardDocTags)+len(opts.IgnoreTags))
	for _, tag := range standardDocTags {
		ignored[tag] = true
	}
	for _, tag := range opts.IgnoreTags {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "@")
		if tag != "" {
			ignored[tag] = true
		}
	}
	return &Inspector{
		oracle:       oracle,
		severity:     severity,
		skipAbsolute: opts.SkipAbsolute,
		ignored:      ignored,
	}
}

// InspectFile returns the diagnostics for every tag of file. Each tag is
// resolved against the imports of its own namespace block; a block's import
// map is built at most once, and only if a tag needs it. A tag whose check
// panics is logged and skipped; the remaining tags are still inspected.
func (in *Inspector) InspectFile(ctx context.Context, file *parser.File) ([]annotation.Diagnostic, Stats) {
	var stats Stats
	if file == nil || len(file.DocTags) == 0 {
		return nil, stats
	}

	scopes := make(map[string]func() map[string]string)
	importsFor := func(namespace string) func() map[string]string {
		imports, ok := scopes[namespace]
		if !ok {
			imports = sync.OnceValue(func() map[string]string { return file.ImportMap(namespace) })
			scopes[namespace] = imports
		}
		return imports
	}

	var diags []annotation.Diagnostic
	for _, tag := range file.DocTags {
		if ctx.Err() != nil {
			break
		}
		stats.Tags++
		d, checked, ok, err := in.inspectTag(tag, importsFor(tag.Namespace))
		if err != nil {
			stats.Failed++
			observability.TagFailuresTotal.Inc()
			slog.Warn("tag inspection failed", "path", file.Path, "line", tag.Location.Line, "tag", tag.Name, "error", err)
			continue
		}
		if checked {
			stats.Checked++
		}
		if ok {
			diags = append(diags, d)
			observability.DiagnosticsTotal.WithLabelValues(d.Rule).Inc()
		}
	}

	observability.TagsInspectedTotal.Add(float64(stats.Tags))
	observability.TagsCheckedTotal.Add(float64(stats.Checked))
	return diags, stats
}

func (in *Inspector) inspectTag(tag parser.DocTag, imports func() map[string]string) (d annotation.Diagnostic, checked, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			d, checked, ok = annotation.Diagnostic{}, false, false
			err = errors.AddContext(errors.New(errors.CodeInternal, fmt.Sprintf("panic: %v", r)), errors.CtxTag, tag.Name)
		}
	}()

	name := strings.TrimPrefix(tag.Name, "@")
	if in.isIgnored(name) {
		return d, false, false, nil
	}

	var (
		resolved string
		found    bool
	)
	if strings.HasPrefix(name, `\`) {
		if in.skipAbsolute {
			return d, false, false, nil
		}
		resolved, found = annotation.ResolveTagName(tag.Name, nil)
	} else {
		resolved, found = annotation.ResolveTagName(tag.Name, imports())
	}

	d, ok = annotation.Check(resolved, found, tag.Location, in.oracle.Exists)
	if ok {
		d.Severity = in.severity
		d.Tag = tag.Name
	}
	return d, found, ok, nil
}

// isIgnored matches the first segment of a non-absolute tag, case-sensitively,
// against the standard PHPDoc vocabulary and the configured ignore list. Only
// the first segment counts, so an ignored prefix covers every tag below it:
// ignoring "Acme" also skips @Acme\Foo, and @param\Foo is still @param.
func (in *Inspector) isIgnored(name string) bool {
	if strings.HasPrefix(name, `\`) {
		return false
	}
	first, _, _ := strings.Cut(name, `\`)
	return in.ignored[first]
}

// Tags from PHPDoc, PHPUnit and the common static analysers. None of them
// names a class even when a same-named alias happens to be imported.
var standardDocTags = []string{
	"abstract", "access", "api", "author", "category", "code", "codeCoverageIgnore",
	"codeCoverageIgnoreEnd", "codeCoverageIgnoreStart", "copyright", "covers",
	"coversDefaultClass", "coversNothing", "dataProvider", "depends", "deprecated",
	"endcode", "example", "expectedException", "filesource", "final", "global", "group",
	"ignore", "inheritDoc", "inheritdoc", "internal", "license", "link", "method", "mixin",
	"noinspection", "package", "param", "property", "property-read", "property-write",
	"return", "see", "since", "source", "static", "staticvar", "subpackage", "template",
	"test", "throws", "todo", "uses", "var", "version",
	"phpstan-param", "phpstan-return", "phpstan-var", "phpstan-template", "phpstan-ignore-next-line",
	"psalm-param", "psalm-return", "psalm-var", "psalm-suppress", "psalm-template",
	"SuppressWarnings",
}
