package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	validations     *prometheus.CounterVec
	finalizations   prometheus.Counter
	activeSessions  prometheus.Gauge
	documents       *prometheus.CounterVec
}

// NewMetrics menginisialisasi registry, metrik HTTP dan metrik invoice.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_http_requests_total",
		Help: "Jumlah permintaan HTTP berdasarkan route dan status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odyssey_http_request_duration_seconds",
		Help:    "Durasi permintaan HTTP per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_invoice_validations_total",
		Help: "Jumlah validasi draft invoice berdasarkan hasil.",
	}, []string{"outcome"})
	finalizations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "odyssey_invoice_finalizations_total",
		Help: "Jumlah invoice yang berhasil difinalisasi.",
	})
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "odyssey_invoice_sessions_active",
		Help: "Jumlah sesi edit invoice yang aktif.",
	})
	documents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_invoice_documents_total",
		Help: "Jumlah dokumen invoice yang dirender per format.",
	}, []string{"format"})
	registry.MustRegister(requests, duration, validations, finalizations, active, documents)
	// Pre-create outcome series so alerts have a baseline of zero.
	validations.WithLabelValues("passed")
	validations.WithLabelValues("failed")
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		validations:     validations,
		finalizations:   finalizations,
		activeSessions:  active,
		documents:       documents,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveValidation mencatat hasil satu kali validasi draft.
func (m *Metrics) ObserveValidation(passed bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	m.validations.WithLabelValues(outcome).Inc()
}

// ObserveFinalization mencatat invoice yang difinalisasi.
func (m *Metrics) ObserveFinalization() {
	if m == nil {
		return
	}
	m.finalizations.Inc()
}

// SetActiveSessions memperbarui jumlah sesi aktif.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// ObserveDocument mencatat dokumen yang dirender.
func (m *Metrics) ObserveDocument(format string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(format).Inc()
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
