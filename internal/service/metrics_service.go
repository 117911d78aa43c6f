package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

// MetricsService owns the Prometheus registry for HTTP, cache, scheduling and audit metrics.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheLookups    *prometheus.CounterVec
	scheduleRuns    *prometheus.CounterVec
	scheduleLatency *prometheus.HistogramVec
	examsCreated    *prometheus.CounterVec
	unscheduled     *prometheus.CounterVec
	conflicts       *prometheus.GaugeVec
}

// NewMetricsService registers the service collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups partitioned by result",
	}, []string{"result"})

	scheduleRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exam_schedule_runs_total",
		Help: "Scheduling runs partitioned by mode and exam type",
	}, []string{"mode", "exam_type"})

	scheduleLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "exam_schedule_run_seconds",
		Help:    "Wall time of scheduling runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	examsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exam_schedule_exams_created_total",
		Help: "Exams placed by persisted scheduling runs",
	}, []string{"exam_type"})

	unscheduled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exam_schedule_unscheduled_courses_total",
		Help: "Courses a scheduling run could not place, by reason",
	}, []string{"reason"})

	conflicts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "exam_conflicts_detected",
		Help: "Conflicts found by the latest audit, by type",
	}, []string{"type"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheLookups,
		scheduleRuns, scheduleLatency, examsCreated, unscheduled, conflicts, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheLookups:    cacheLookups,
		scheduleRuns:    scheduleRuns,
		scheduleLatency: scheduleLatency,
		examsCreated:    examsCreated,
		unscheduled:     unscheduled,
		conflicts:       conflicts,
	}
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request latency and count.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup and its outcome.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveScheduleRun records the outcome of one scheduling run.
func (m *MetricsService) ObserveScheduleRun(mode string, examType models.ExamType, result models.ScheduleResult, duration time.Duration) {
	if m == nil {
		return
	}
	m.scheduleRuns.WithLabelValues(mode, string(examType)).Inc()
	m.scheduleLatency.WithLabelValues(mode).Observe(duration.Seconds())
	if mode != scheduleModePreview {
		m.examsCreated.WithLabelValues(string(examType)).Add(float64(len(result.NewExams)))
	}
	for _, item := range result.UnscheduledCourses {
		m.unscheduled.WithLabelValues(item.Reason).Inc()
	}
}

// SetConflictCounts publishes the per-type totals of the latest audit.
func (m *MetricsService) SetConflictCounts(report models.ConflictReport) {
	if m == nil {
		return
	}
	for kind, count := range report.CountByType() {
		m.conflicts.WithLabelValues(string(kind)).Set(float64(count))
	}
}
