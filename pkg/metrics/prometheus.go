package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches       *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
	inFlight      prometheus.Gauge
	lastRefresh   prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "earningspull_fetches_total",
				Help: "Total fetch tasks by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "earningspull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		phaseDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "earningspull_phase_duration_seconds",
				Help:    "Duration of refresh phases in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"phase"},
		),
		inFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "earningspull_tasks_in_flight",
				Help: "Fetch tasks currently executing",
			},
		),
		lastRefresh: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "earningspull_last_refresh_timestamp_seconds",
				Help: "Unix time of the last completed refresh pass",
			},
		),
	}
}

// RecordFetch records one finished fetch task.
func (r *Recorder) RecordFetch(op, outcome string) {
	r.fetches.WithLabelValues(op, outcome).Inc()
}

// RecordPhaseDuration records a refresh phase duration in seconds.
func (r *Recorder) RecordPhaseDuration(phase string, seconds float64) {
	r.phaseDuration.WithLabelValues(phase).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// SetInFlight sets the number of tasks currently executing.
func (r *Recorder) SetInFlight(n int) {
	r.inFlight.Set(float64(n))
}

// SetLastRefresh records when the last refresh pass finished.
func (r *Recorder) SetLastRefresh(t time.Time) {
	r.lastRefresh.Set(float64(t.Unix()))
}
