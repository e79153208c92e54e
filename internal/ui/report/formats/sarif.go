package formats

import (
	"annotcheck/internal/engine/annotation"
	"annotcheck/internal/shared/version"
	"encoding/json"
	"fmt"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
	EndLine     int `json:"endLine,omitempty"`
	EndColumn   int `json:"endColumn,omitempty"`
}

// GenerateSARIF builds a SARIF v2.1.0 document. File URIs are relative to
// projectRoot so reports can be shared between machines.
func GenerateSARIF(projectRoot string, diags []annotation.Diagnostic) ([]byte, error) {
	results := make([]sarifResult, 0, len(diags))
	for _, d := range sortedDiagnostics(diags) {
		result := sarifResult{
			RuleID:  d.Rule,
			Level:   string(d.Severity),
			Message: sarifMessage{Text: fmt.Sprintf("%s: %s", d.Message, d.ClassName)},
		}
		if d.Location.File != "" {
			loc := sarifLocation{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{
						URI:       relativeURI(projectRoot, d.Location.File),
						URIBaseID: "%SRCROOT%",
					},
				},
			}
			if d.Location.Line > 0 {
				loc.PhysicalLocation.Region = &sarifRegion{
					StartLine:   d.Location.Line,
					StartColumn: d.Location.Column,
					EndLine:     d.Location.EndLine,
					EndColumn:   d.Location.EndColumn,
				}
			}
			result.Locations = []sarifLocation{loc}
		}
		results = append(results, result)
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "annotcheck",
						Version: version.Version,
						Rules:   sarifRules(),
					},
				},
				Results: results,
			},
		},
	}
	return json.MarshalIndent(report, "", "  ")
}

func sarifRules() []sarifRule {
	return []sarifRule{
		{
			ID:               annotation.RuleClassNotFound,
			Name:             "AnnotationClassNotFound",
			ShortDescription: sarifMessage{Text: "A doc-block annotation refers to an imported class that does not exist."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: string(annotation.SeverityWarning)},
		},
	}
}
