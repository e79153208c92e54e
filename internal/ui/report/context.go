package report

import (
	"bytes"
	"fmt"
)

const DefaultContextRadius = 2

// Snippet is the source around a diagnostic, one "<line>: <source>" entry per
// line. Marker is the index of the reported line within Lines.
type Snippet struct {
	Lines  []string
	Marker int
}

// SourceContext returns up to radius lines either side of the 1-based line.
// A negative radius uses the default.
func SourceContext(content []byte, line, radius int) Snippet {
	if radius < 0 {
		radius = DefaultContextRadius
	}
	lines := splitLines(content)
	if line < 1 || line > len(lines) {
		return Snippet{Marker: -1}
	}
	hit := line - 1
	start := max(hit-radius, 0)
	end := min(hit+radius+1, len(lines))

	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, fmt.Sprintf("%6d: %s", i+1, lines[i]))
	}
	return Snippet{Lines: out, Marker: hit - start}
}

func splitLines(content []byte) []string {
	raw := bytes.Split(content, []byte("\n"))
	if len(raw) > 0 && len(raw[len(raw)-1]) == 0 {
		raw = raw[:len(raw)-1]
	}
	lines := make([]string, len(raw))
	for i, b := range raw {
		lines[i] = string(bytes.TrimRight(b, "\r"))
	}
	return lines
}
