package obs

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server-side HTTP metrics (devapi).
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Client-side metrics for outbound backend calls.
var (
	clientInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "backend_client_in_flight_requests",
		Help: "In-flight outbound requests to the backend API.",
	})

	clientRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_client_requests_total",
			Help: "Total outbound requests to the backend API.",
		},
		[]string{"method", "status"},
	)

	clientRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_client_request_duration_seconds",
			Help:    "Outbound backend request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
)

var registerOnce sync.Once

// Init registers all metrics in the default registry. Both binaries call it,
// and tests may construct several apps in one process, so it is idempotent.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration,
			clientInFlight, clientRequestsTotal, clientRequestDuration,
		)
	})
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ClientRequestStart marks an outbound request as in flight and returns a
// completion callback to be invoked with the final status code.
func ClientRequestStart(method string) func(status int) {
	clientInFlight.Inc()
	start := time.Now()
	return func(status int) {
		clientInFlight.Dec()
		code := strconv.Itoa(status)
		clientRequestsTotal.WithLabelValues(method, code).Inc()
		clientRequestDuration.WithLabelValues(method, code).Observe(time.Since(start).Seconds())
	}
}

// Instrument wraps a server handler with RPS/latency/in-flight measurements.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// CanonicalPath collapses id segments so metric label cardinality stays bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(segments) < 2 {
		return path
	}
	switch segments[0] {
	case "business", "users", "vehicles", "vehicle-log", "body-parts", "muscles":
	default:
		return path
	}
	fixed := map[string]struct{}{
		"all": {}, "active": {}, "my-business": {}, "my-businesses": {},
		"business": {}, "vehicle": {}, "search": {}, "filter": {}, "logs": {}, "last": {},
		"entry": {}, "checkout": {}, "set-user": {}, "role": {}, "status": {},
	}
	out := []string{segments[0]}
	for _, seg := range segments[1:] {
		if _, ok := fixed[seg]; ok {
			out = append(out, seg)
			continue
		}
		out = append(out, ":id")
	}
	return "/" + strings.Join(out, "/")
}

// statusWriter captures the response code for labelling.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
