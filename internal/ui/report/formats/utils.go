package formats

import (
	"annotcheck/internal/engine/annotation"
	"path/filepath"
	"sort"
)

// relativeURI converts an absolute file path to a forward-slash path anchored
// at projectRoot. Relative paths and an empty root leave the path as is.
func relativeURI(projectRoot, filePath string) string {
	if projectRoot != "" && filepath.IsAbs(filePath) {
		if abs, err := filepath.Abs(projectRoot); err == nil {
			if rel, err := filepath.Rel(abs, filePath); err == nil {
				filePath = rel
			}
		}
	}
	return filepath.ToSlash(filePath)
}

// sortedDiagnostics orders by file, line and column without touching the input.
func sortedDiagnostics(diags []annotation.Diagnostic) []annotation.Diagnostic {
	out := append([]annotation.Diagnostic(nil), diags...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Location, out[j].Location
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}
