package formats

import (
	"annotcheck/internal/engine/annotation"
	"annotcheck/internal/shared/version"
	"encoding/json"
)

type jsonReport struct {
	Tool        string           `json:"tool"`
	Version     string           `json:"version"`
	Count       int              `json:"count"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

type jsonDiagnostic struct {
	Rule      string `json:"rule"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"end_line"`
	EndColumn int    `json:"end_column"`
	Offset    int    `json:"offset"`
	Length    int    `json:"length"`
	Tag       string `json:"tag"`
	Class     string `json:"class"`
}

func GenerateJSON(projectRoot string, diags []annotation.Diagnostic) ([]byte, error) {
	report := jsonReport{
		Tool:        "annotcheck",
		Version:     version.Version,
		Count:       len(diags),
		Diagnostics: make([]jsonDiagnostic, 0, len(diags)),
	}
	for _, d := range sortedDiagnostics(diags) {
		report.Diagnostics = append(report.Diagnostics, jsonDiagnostic{
			Rule:      d.Rule,
			Severity:  string(d.Severity),
			Message:   d.Message,
			File:      relativeURI(projectRoot, d.Location.File),
			Line:      d.Location.Line,
			Column:    d.Location.Column,
			EndLine:   d.Location.EndLine,
			EndColumn: d.Location.EndColumn,
			Offset:    d.Location.Offset,
			Length:    d.Location.Length,
			Tag:       d.Tag,
			Class:     d.ClassName,
		})
	}
	return json.MarshalIndent(report, "", "  ")
}
