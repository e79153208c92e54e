package formats

import (
	"annotcheck/internal/engine/annotation"
	"fmt"
	"strings"
)

func GenerateTSV(projectRoot string, diags []annotation.Diagnostic) string {
	var buf strings.Builder
	buf.WriteString("Rule\tSeverity\tFile\tLine\tColumn\tEndLine\tEndColumn\tTag\tClass\tMessage\n")
	for _, d := range sortedDiagnostics(diags) {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\t%s\n",
			d.Rule,
			d.Severity,
			relativeURI(projectRoot, d.Location.File),
			d.Location.Line,
			d.Location.Column,
			d.Location.EndLine,
			d.Location.EndColumn,
			d.Tag,
			d.ClassName,
			d.Message,
		))
	}
	return buf.String()
}
