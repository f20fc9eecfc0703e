package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

type PrometheusMiddleware struct {
	handler http.Handler
}

func (m *PrometheusMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/metrics" {
		// Skip collecting metrics from metrics endpoint itself
		m.handler.ServeHTTP(w, r)
		return
	}

	timer := prometheus.NewTimer(HttpRequestDuration.WithLabelValues(path))

	HttpRequestsTotal.WithLabelValues(path).Inc()

	ActiveConnections.Inc()

	m.handler.ServeHTTP(w, r)

	timer.ObserveDuration()

	ActiveConnections.Dec()
}

func NewPrometheusMiddleware(handlerToWrap http.Handler) *PrometheusMiddleware {
	return &PrometheusMiddleware{handlerToWrap}
}
