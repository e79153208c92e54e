package report

import (
	"annotcheck/internal/data/history"
	"encoding/json"
	"fmt"
	"strings"
)

// RenderHistoryTSV lists runs oldest first with the change in diagnostics
// relative to the previous run.
func RenderHistoryTSV(runs []history.Run) []byte {
	var buf strings.Builder
	buf.WriteString("Timestamp\tRunID\tFiles\tTags\tChecked\tFailed\tDiagnostics\tDeltaDiagnostics\tDurationMs\n")
	prev := 0
	for i, run := range runs {
		delta := 0
		if i > 0 {
			delta = run.DiagnosticCount - prev
		}
		prev = run.DiagnosticCount
		buf.WriteString(fmt.Sprintf("%s\t%s\t%d\t%d\t%d\t%d\t%d\t%+d\t%d\n",
			run.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			run.ID,
			run.FileCount,
			run.TagCount,
			run.CheckedCount,
			run.FailedCount,
			run.DiagnosticCount,
			delta,
			run.DurationMillis,
		))
	}
	return []byte(buf.String())
}

type trendJSON struct {
	Runs            int     `json:"runs"`
	Since           string  `json:"since,omitempty"`
	Until           string  `json:"until,omitempty"`
	FirstDiagnostic int     `json:"first_diagnostics"`
	LastDiagnostic  int     `json:"last_diagnostics"`
	DiagnosticDelta int     `json:"diagnostic_delta"`
	FileDelta       int     `json:"file_delta"`
	AvgDiagnostics  float64 `json:"avg_diagnostics"`
	PeakDiagnostics int     `json:"peak_diagnostics"`
}

func RenderTrendJSON(trend history.Trend) ([]byte, error) {
	out := trendJSON{
		Runs:            trend.Runs,
		FirstDiagnostic: trend.FirstDiagnostic,
		LastDiagnostic:  trend.LastDiagnostic,
		DiagnosticDelta: trend.DiagnosticDelta,
		FileDelta:       trend.FileDelta,
		AvgDiagnostics:  trend.AvgDiagnostics,
		PeakDiagnostics: trend.PeakDiagnostics,
	}
	if trend.Runs > 0 {
		out.Since = trend.Since.Format("2006-01-02T15:04:05Z07:00")
		out.Until = trend.Until.Format("2006-01-02T15:04:05Z07:00")
	}
	return json.MarshalIndent(out, "", "  ")
}

// RenderTrendSummary is the one-line form printed after a history listing.
func RenderTrendSummary(trend history.Trend) string {
	if trend.Runs == 0 {
		return "no recorded runs"
	}
	return fmt.Sprintf("%d runs, diagnostics %d -> %d (%+d), peak %d, avg %.1f",
		trend.Runs, trend.FirstDiagnostic, trend.LastDiagnostic, trend.DiagnosticDelta,
		trend.PeakDiagnostics, trend.AvgDiagnostics)
}
