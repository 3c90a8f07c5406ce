// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is reported through the build info gauge
var Version = "dev"

// Metrics groups the collectors the panel updates
type Metrics struct {
	ControllerRequestSeconds *prometheus.HistogramVec
	ControllerRequestsTotal  *prometheus.CounterVec
	ControllerOnline         prometheus.Gauge
	ToastsTotal              *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	metrics := &Metrics{
		ControllerRequestSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trafficpanel_controller_request_seconds",
				Help:    "Duration of HTTP requests to the traffic light controller",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		ControllerRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trafficpanel_controller_requests_total",
				Help: "Requests to the traffic light controller by outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		ControllerOnline: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "trafficpanel_controller_online",
				Help: "1 while the controller answers heartbeats, 0 while offline",
			},
		),
		ToastsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trafficpanel_toasts_total",
				Help: "Notifications shown to the operator by kind",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		metrics.ControllerRequestSeconds,
		metrics.ControllerRequestsTotal,
		metrics.ControllerOnline,
		metrics.ToastsTotal,
	)

	return metrics
}

// NewRegistry creates a registry carrying the runtime collectors and build info
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()

	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trafficpanel_build_info",
			Help: "Build metadata",
		},
		[]string{"version"},
	)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		buildInfo,
	)

	buildInfo.WithLabelValues(Version).Set(1)

	return registry
}

// Handler serves the registry in the Prometheus exposition format
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}
