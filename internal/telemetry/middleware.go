package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	serverRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nftmarket_backend_requests_total",
			Help: "Total number of requests served by the mock backend",
		},
		[]string{"method", "route", "status"},
	)

	serverRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nftmarket_backend_request_duration_seconds",
			Help:    "Mock backend request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency labelled by the mux pattern,
// so path parameters do not blow up cardinality. A request whose pattern is
// not visible here, e.g. one copied by WithContext on the way to the mux, is
// labelled "unmatched".
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		serverRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		serverRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
