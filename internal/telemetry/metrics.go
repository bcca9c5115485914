package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level metric vars mirror cuemby-warren's pkg/metrics.go
// registration style: declared once, registered in init, updated by
// whichever component owns the corresponding count.
var (
	WorldsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "epidemigo_worlds_total",
			Help: "Number of worlds currently registered with the manager",
		},
	)

	AgentsByHealth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "epidemigo_agents_by_health",
			Help: "Agent count by health state, per world",
		},
		[]string{"world_id", "health"},
	)

	StepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epidemigo_steps_total",
			Help: "Total simulation steps executed, by world",
		},
		[]string{"world_id"},
	)

	StepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "epidemigo_step_duration_seconds",
			Help:    "Wall-clock duration of one World.Step call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"world_id"},
	)

	TestsConductedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epidemigo_tests_conducted_total",
			Help: "Total diagnostic tests conducted, by world and result",
		},
		[]string{"world_id", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		WorldsTotal,
		AgentsByHealth,
		StepsTotal,
		StepDuration,
		TestsConductedTotal,
	)
}

// Handler returns the HTTP handler a cmd/ binary mounts at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewTimer starts a timer against one histogram vec's label combination;
// callers defer timer.ObserveDuration() when the operation completes,
// mirroring cuemby-warren's pkg/metrics Timer helper.
func NewTimer(hv *prometheus.HistogramVec, labelValues ...string) *prometheus.Timer {
	return prometheus.NewTimer(hv.WithLabelValues(labelValues...))
}
