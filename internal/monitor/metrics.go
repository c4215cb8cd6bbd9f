package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is shared by all runners; series are split by environment.
type Metrics struct {
	Probes      *prometheus.CounterVec
	Up          *prometheus.CounterVec
	Down        *prometheus.CounterVec
	Transitions *prometheus.CounterVec
	LogErrors   *prometheus.CounterVec
	Latency     *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Probes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "envwatch_probes_total", Help: "Probes attempted",
		}, []string{"environment"}),
		Up: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "envwatch_up_total", Help: "Healthy probe outcomes",
		}, []string{"environment"}),
		Down: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "envwatch_down_total", Help: "Unhealthy probe outcomes",
		}, []string{"environment"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "envwatch_transitions_total", Help: "Health state changes notified",
		}, []string{"environment"}),
		LogErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "envwatch_check_log_errors_total", Help: "Failed durable log inserts",
		}, []string{"environment"}),
		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "envwatch_probe_latency_seconds",
			Help:    "Probe latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"environment"}),
	}
}
