// Package metrics holds Prometheus instruments for configuration
// resolution.  All collectors are registered with the global registry, so
// serving promhttp.Handler() is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ResolveTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "config_resolve_total",
			Help: "Cumulative number of successful configuration resolutions.",
		})

	ResolveErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_resolve_errors_total",
			Help: "Cumulative number of failed configuration resolutions by error kind.",
		}, []string{"kind"})

	LocateDepth = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "config_locate_depth",
			Help:    "Directories probed while searching for the config file.",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		})

	ActiveEnvironment = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "config_active_environment",
			Help: "Set to 1 for the environment selected by the last resolution.",
		}, []string{"env"})
)

func init() {
	prometheus.MustRegister(
		ResolveTotal,
		ResolveErrorsTotal,
		LocateDepth,
		ActiveEnvironment,
	)
}

// ObserveResolve records the outcome of one resolution.  An empty kind
// means success.
func ObserveResolve(kind string) {
	if kind == "" {
		ResolveTotal.Inc()
		return
	}
	ResolveErrorsTotal.WithLabelValues(kind).Inc()
}

// SetActive marks env as the active environment and clears the others.
func SetActive(env string, all ...string) {
	for _, e := range all {
		ActiveEnvironment.WithLabelValues(e).Set(0)
	}
	ActiveEnvironment.WithLabelValues(env).Set(1)
}
