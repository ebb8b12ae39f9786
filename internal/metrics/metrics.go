// Package metrics defines the Prometheus collectors shared by the process
// pipeline and the presentation server.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Merge outcomes used as the "outcome" label.
const (
	OutcomeNew               = "new"
	OutcomeDuplicate         = "duplicate"
	OutcomeUnresolved        = "unresolved"
	OutcomeUnresolvedSkipped = "unresolved_skipped"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	MatchesTotal    *prometheus.CounterVec
	MergeRowsTotal  *prometheus.CounterVec
	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	DatabaseRows    prometheus.Gauge
	LastRunUnixTime prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		MatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trackmerge_matches_total",
			Help: "Rows matched, by confidence tier",
		}, []string{"confidence"}),
		MergeRowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trackmerge_merge_rows_total",
			Help: "Rows offered to the database, by merge outcome",
		}, []string{"outcome"}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trackmerge_runs_total",
			Help: "Processing runs, by final status",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "trackmerge_run_duration_seconds",
			Help:    "Wall time of processing runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trackmerge_http_requests_total",
			Help: "Presentation server requests, by method, route, and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trackmerge_http_request_duration_seconds",
			Help:    "Presentation server request latency, by route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),
		DatabaseRows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trackmerge_database_rows",
			Help: "Rows in the database after the last run",
		}),
		LastRunUnixTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trackmerge_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
}

// ObserveMatch counts one matched row.
func (m *Metrics) ObserveMatch(confidence string) {
	if m == nil {
		return
	}
	m.MatchesTotal.WithLabelValues(confidence).Inc()
}

// ObserveMerge counts merge outcomes.
func (m *Metrics) ObserveMerge(newRows, duplicates, unresolved, unresolvedSkipped int) {
	if m == nil {
		return
	}
	m.MergeRowsTotal.WithLabelValues(OutcomeNew).Add(float64(newRows))
	m.MergeRowsTotal.WithLabelValues(OutcomeDuplicate).Add(float64(duplicates))
	m.MergeRowsTotal.WithLabelValues(OutcomeUnresolved).Add(float64(unresolved))
	m.MergeRowsTotal.WithLabelValues(OutcomeUnresolvedSkipped).Add(float64(unresolvedSkipped))
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(status string, elapsed time.Duration, databaseRows int, finished time.Time) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
	m.DatabaseRows.Set(float64(databaseRows))
	m.LastRunUnixTime.Set(float64(finished.Unix()))
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// WriteTextfile dumps the current values in the text exposition format, for
// collection by a node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
