package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
)

func TestMetricsServiceScheduleRun(t *testing.T) {
	metrics := NewMetricsService()
	result := models.ScheduleResult{
		NewExams: []models.Exam{{ID: "e1"}, {ID: "e2"}},
		UnscheduledCourses: []models.UnscheduledCourse{
			{Course: models.Course{Code: "CS401"}, Reason: "no slot"},
		},
	}

	metrics.ObserveScheduleRun(scheduleModeSync, models.ExamTypeMidterm, result, 20*time.Millisecond)
	metrics.ObserveScheduleRun(scheduleModePreview, models.ExamTypeMidterm, result, 10*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.scheduleRuns.WithLabelValues(scheduleModeSync, "midterm")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.examsCreated.WithLabelValues("midterm")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.unscheduled.WithLabelValues("no slot")))
}

func TestMetricsServiceConflictCounts(t *testing.T) {
	metrics := NewMetricsService()
	report := models.ConflictReport{
		Room:       []models.Conflict{{Type: models.ConflictTypeRoom}},
		Instructor: []models.Conflict{},
		Student:    []models.Conflict{{Type: models.ConflictTypeStudent}, {Type: models.ConflictTypeStudent}},
	}

	metrics.SetConflictCounts(report)

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.conflicts.WithLabelValues(string(models.ConflictTypeStudent))))
}

func TestMetricsServiceHandlerExposesRegistry(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/conflicts", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"))
}

func TestMetricsServiceNilIsSafe(t *testing.T) {
	var metrics *MetricsService

	metrics.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	metrics.RecordCacheOperation(true, time.Millisecond)
	metrics.ObserveScheduleRun(scheduleModeJob, models.ExamTypeFinal, models.ScheduleResult{}, time.Millisecond)
	metrics.SetConflictCounts(models.ConflictReport{})

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Nil(t, metrics.Registry())
}
