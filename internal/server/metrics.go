package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the server's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	examsSubmitted  *prometheus.CounterVec
	examScore       *prometheus.HistogramVec
	activeSessions  prometheus.Gauge
	rateLimited     prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 15},
			},
			[]string{"method", "route"},
		),
		examsSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "examprep_exams_submitted_total",
				Help: "Exam sessions submitted and stored",
			},
			[]string{"exam_type"},
		),
		examScore: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "examprep_exam_score",
				Help:    "Scores of submitted exams",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
			[]string{"exam_type"},
		),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "examprep_exam_sessions_active",
			Help: "Exam sessions in progress",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "examprep_rate_limited_total",
			Help: "Requests rejected by the AI rate limiter",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.examsSubmitted,
		m.examScore,
		m.activeSessions,
		m.rateLimited,
	)
	return m
}

// Registry exposes the registry for tests and embedding.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) examSubmitted(examType string, score int) {
	m.examsSubmitted.WithLabelValues(examType).Inc()
	m.examScore.WithLabelValues(examType).Observe(float64(score))
}
