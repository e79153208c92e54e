package formats

import (
	"annotcheck/internal/core/errors"
	"annotcheck/internal/engine/annotation"
	"fmt"
)

// Render produces the named format: text, sarif, tsv or json.
func Render(format, projectRoot string, diags []annotation.Diagnostic, color bool) ([]byte, error) {
	switch format {
	case "", "text":
		return []byte(GenerateText(projectRoot, diags, color)), nil
	case "sarif":
		return GenerateSARIF(projectRoot, diags)
	case "tsv":
		return []byte(GenerateTSV(projectRoot, diags)), nil
	case "json":
		return GenerateJSON(projectRoot, diags)
	default:
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("unknown output format %q", format))
	}
}
