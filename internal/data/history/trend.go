package history

// BuildTrend summarises runs, which must be ordered oldest first. It returns
// the zero Trend for an empty slice.
func BuildTrend(runs []Run) Trend {
	if len(runs) == 0 {
		return Trend{}
	}
	first, last := runs[0], runs[len(runs)-1]
	t := Trend{
		Runs:            len(runs),
		Since:           first.Timestamp,
		Until:           last.Timestamp,
		FirstDiagnostic: first.DiagnosticCount,
		LastDiagnostic:  last.DiagnosticCount,
		DiagnosticDelta: last.DiagnosticCount - first.DiagnosticCount,
		FileDelta:       last.FileCount - first.FileCount,
	}
	total := 0
	for _, r := range runs {
		total += r.DiagnosticCount
		if r.DiagnosticCount > t.PeakDiagnostics {
			t.PeakDiagnostics = r.DiagnosticCount
		}
	}
	t.AvgDiagnostics = float64(total) / float64(len(runs))
	return t
}
