package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler exposing the evolution collectors in
// Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// RegisterHandlers mounts the metrics endpoint on the orchestrator's mux
func RegisterHandlers(mux *http.ServeMux) {
	mux.Handle("/metrics", Handler())
}
