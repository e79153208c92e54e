package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "annotcheck_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	FilesParsedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "annotcheck_files_parsed_total",
		Help: "Total number of source files parsed.",
	}, []string{"language"})

	IndexedClasses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "annotcheck_indexed_classes",
		Help: "Number of distinct class-like names in the class index.",
	})

	TagsInspectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "annotcheck_tags_inspected_total",
		Help: "Total number of doc-block tags visited by the inspection.",
	})

	TagsCheckedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "annotcheck_tags_checked_total",
		Help: "Total number of tags that resolved to a class name and were checked against the index.",
	})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "annotcheck_diagnostics_total",
		Help: "Total number of diagnostics emitted.",
	}, []string{"rule"})

	TagFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "annotcheck_tag_failures_total",
		Help: "Total number of tags whose inspection panicked and was skipped.",
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "annotcheck_analysis_seconds",
		Help:    "Time spent on scan phases.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "annotcheck_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
