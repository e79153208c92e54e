package history

import "time"

const SchemaVersion = 1

// Run is one completed inspection pass over a project.
type Run struct {
	ID              string
	ProjectKey      string
	Timestamp       time.Time
	FileCount       int
	TagCount        int
	CheckedCount    int
	FailedCount     int
	DiagnosticCount int
	DurationMillis  int64
}

// Trend compares the oldest and newest run of a window.
type Trend struct {
	Runs            int
	Since           time.Time
	Until           time.Time
	FirstDiagnostic int
	LastDiagnostic  int
	DiagnosticDelta int
	FileDelta       int
	AvgDiagnostics  float64
	PeakDiagnostics int
}
