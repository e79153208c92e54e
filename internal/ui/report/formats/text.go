package formats

import (
	"annotcheck/internal/engine/annotation"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	pathStyle    = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// GenerateText renders one line per diagnostic:
//
//	src/User.php:12:4: warning: Class not found (App\Validator\Unique) [ANNOT001]
func GenerateText(projectRoot string, diags []annotation.Diagnostic, color bool) string {
	var b strings.Builder
	for _, d := range sortedDiagnostics(diags) {
		pos := fmt.Sprintf("%s:%d:%d:", relativeURI(projectRoot, d.Location.File), d.Location.Line, d.Location.Column)
		sev := string(d.Severity) + ":"
		rule := "[" + d.Rule + "]"
		if color {
			pos = pathStyle.Render(pos)
			sev = severityStyle(d.Severity).Render(sev)
			rule = ruleStyle.Render(rule)
		}
		fmt.Fprintf(&b, "%s %s %s (%s) %s\n", pos, sev, d.Message, d.ClassName, rule)
	}
	return b.String()
}

func severityStyle(s annotation.Severity) lipgloss.Style {
	switch s {
	case annotation.SeverityError:
		return errorStyle
	case annotation.SeverityNote:
		return noteStyle
	default:
		return warningStyle
	}
}
