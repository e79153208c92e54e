package annotation

import (
	"annotcheck/internal/engine/parser"
	"fmt"
	"strings"
)

const (
	MessageClassNotFound = "Class not found"
	RuleClassNotFound    = "ANNOT001"
)

type Severity string

const (
	SeverityNote    Severity = "note"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity accepts note, warning or error in any case.
func ParseSeverity(value string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(value))) {
	case SeverityNote:
		return SeverityNote, nil
	case SeverityWarning:
		return SeverityWarning, nil
	case SeverityError:
		return SeverityError, nil
	default:
		return "", fmt.Errorf("unknown severity %q", value)
	}
}

type Diagnostic struct {
	Rule      string
	Message   string
	Severity  Severity
	Location  parser.Location // tag name token only
	Tag       string
	ClassName string
}

// Check reports an unresolved class for a tag name. resolved and ok are the
// results of ResolveTagName. classExists is not invoked when ok is false and
// is invoked exactly once otherwise.
func Check(resolved string, ok bool, at parser.Location, classExists func(string) bool) (Diagnostic, bool) {
	if !ok {
		return Diagnostic{}, false
	}
	if classExists(resolved) {
		return Diagnostic{}, false
	}
	return Diagnostic{
		Rule:      RuleClassNotFound,
		Message:   MessageClassNotFound,
		Severity:  SeverityWarning,
		Location:  at,
		ClassName: resolved,
	}, true
}
