// Package metrics exposes the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalysesTotal counts completed analyses by resulting threat level.
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geotrace_analyses_total",
		Help: "Completed analyses by threat level.",
	}, []string{"level"})

	// FailuresTotal counts pipeline failures by the stage that failed.
	FailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geotrace_analysis_failures_total",
		Help: "Failed analyses by pipeline stage.",
	}, []string{"stage"})

	// HistoryWriteFailures counts non-fatal history store write errors.
	HistoryWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geotrace_history_write_failures_total",
		Help: "History writes that failed after a successful analysis.",
	})
)
