package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cruciblehq/bentostart/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "bentoml"

// Request metrics of one server.
//
// Each server owns its registry, so several servers in one process (as in
// tests) do not collide on registration.
type metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inProgress *prometheus.GaugeVec
	info       *prometheus.GaugeVec
}

// Creates the metrics of a server. Subsystem is "api_server" or "runner".
func newMetrics(subsystem string) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "request_total",
			Help:      "Total number of requests served.",
		}, []string{"method", "endpoint", "http_response_code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint", "http_response_code"}),
		inProgress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "request_in_progress",
			Help:      "Requests currently being served.",
		}, []string{"method", "endpoint"}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "service_info",
			Help:      "Service being served; always 1.",
		}, []string{"service_name", "service_version", "service_kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.inProgress,
		m.info,
	)
	return m
}

// Records the service being served, replacing any previous one.
func (m *metrics) setService(svc *service.Service) {
	m.info.Reset()
	m.info.WithLabelValues(svc.Name, svc.Version, svc.Kind.String()).Set(1)
}

// Returns the scrape handler.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Wraps mux so every request is counted and timed, labelled by the pattern
// that matched it rather than the raw path.
func (m *metrics) instrument(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, endpoint := mux.Handler(r)
		if endpoint == "" {
			endpoint = "unmatched"
		}

		inProgress := m.inProgress.WithLabelValues(r.Method, endpoint)
		inProgress.Inc()
		defer inProgress.Dec()

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		mux.ServeHTTP(rw, r)

		code := strconv.Itoa(rw.status)
		m.requests.WithLabelValues(r.Method, endpoint, code).Inc()
		m.duration.WithLabelValues(r.Method, endpoint, code).Observe(time.Since(start).Seconds())
	})
}

// Captures the status code written through it.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
