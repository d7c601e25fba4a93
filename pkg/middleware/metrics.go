// Package middleware provides the HTTP middleware wrapped around the search
// service: request IDs, Prometheus request metrics and request timeouts.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/metrics"
)

// routeOther labels every path the service does not serve, so that arbitrary
// client paths cannot create new label values.
const routeOther = "other"

var routes = map[string]string{
	"/api/v1/search":           "/api/v1/search",
	"/api/v1/cache/stats":      "/api/v1/cache/stats",
	"/api/v1/cache/invalidate": "/api/v1/cache/invalidate",
	"/health/live":             "/health/live",
	"/health/ready":            "/health/ready",
}

// Metrics records request count, latency and in-flight requests, labelled by
// method, route and status.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			rw := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rw, r)

			route := routeLabel(r.URL.Path)
			method := methodLabel(r.Method)
			m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(rw.statusCode())).Inc()
			m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		})
	}
}

func routeLabel(path string) string {
	if route, ok := routes[strings.TrimSuffix(path, "/")]; ok {
		return route
	}
	return routeOther
}

// methodLabel keeps the method label bounded in the same way as the route.
func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return method
	default:
		return routeOther
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	return sr.ResponseWriter.Write(b)
}

func (sr *statusRecorder) statusCode() int {
	if sr.status == 0 {
		return http.StatusOK
	}
	return sr.status
}
