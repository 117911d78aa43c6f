package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-scheduler-api/internal/handler"
	"github.com/noah-isme/exam-scheduler-api/internal/models"
	"github.com/noah-isme/exam-scheduler-api/internal/service"
	"github.com/noah-isme/exam-scheduler-api/pkg/config"
	"github.com/noah-isme/exam-scheduler-api/pkg/feedtoken"
)

type calendarStub struct{}

func (calendarStub) Timetable(ctx context.Context, examType models.ExamType, format string) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "t.csv", ContentType: "text/csv"}, nil
}

func (calendarStub) Conflicts(ctx context.Context, format string) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "c.csv", ContentType: "text/csv"}, nil
}

func (calendarStub) InstructorCalendar(ctx context.Context, id string) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: id + ".ics", ContentType: "text/calendar", Data: []byte("BEGIN:VCALENDAR")}, nil
}

func (calendarStub) StudentCalendar(ctx context.Context, id string) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: id + ".ics", ContentType: "text/calendar", Data: []byte("BEGIN:VCALENDAR")}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth := service.NewAuthService(zap.NewNop(), service.AuthConfig{AccessTokenSecret: "test-secret", AccessTokenExpiry: time.Hour, Issuer: tokenIssuer})
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api/v1"}
	router := newRouter(cfg, zap.NewNop(), routeDeps{
		auth:       auth,
		catalog:    handler.NewCatalogHandler(nil),
		schedule:   handler.NewScheduleHandler(nil, nil, nil),
		conflicts:  handler.NewConflictHandler(nil),
		exports:    handler.NewExportHandler(calendarStub{}, nil),
		imports:    handler.NewImportHandler(nil),
		feeds:      handler.NewFeedHandler(feedtoken.NewSigner("feed-secret", time.Hour), calendarStub{}, "/"),
		monitoring: handler.NewMetricsHandler(nil, nil),
	})
	return router, auth
}

func serve(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func mint(t *testing.T, auth *service.AuthService, userID string, role models.UserRole) string {
	t.Helper()
	token, _, err := auth.IssueToken(userID, role, userID+"@campus.test", userID)
	require.NoError(t, err)
	return token
}

func TestRouterPublicEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/docs/index.html", "").Code)
}

func TestRouterRequiresBearerToken(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodGet, "/api/v1/conflicts", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterRestrictsAdminRoutes(t *testing.T) {
	router, auth := newTestRouter(t)
	student := mint(t, auth, "s1", models.RoleStudent)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/schedule/auto"},
		{http.MethodGet, "/api/v1/schedule/summary"},
		{http.MethodGet, "/api/v1/conflicts"},
		{http.MethodPut, "/api/v1/exams"},
		{http.MethodPost, "/api/v1/import/rooms"},
	} {
		w := serve(router, route.method, route.path, student)
		assert.Equal(t, http.StatusForbidden, w.Code, route.path)
	}
}

func TestRouterAllowsSelfCalendar(t *testing.T) {
	router, auth := newTestRouter(t)
	student := mint(t, auth, "s1", models.RoleStudent)

	own := serve(router, http.MethodGet, "/api/v1/students/s1/exams.ics", student)
	require.Equal(t, http.StatusOK, own.Code)
	assert.Equal(t, "text/calendar", own.Header().Get("Content-Type"))

	other := serve(router, http.MethodGet, "/api/v1/students/s2/exams.ics", student)
	assert.Equal(t, http.StatusForbidden, other.Code)

	admin := mint(t, auth, "root", models.RoleAdmin)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/v1/instructors/i1/exams.ics", admin).Code)
}

func TestRouterServesSignedFeedWithoutBearer(t *testing.T) {
	router, auth := newTestRouter(t)
	student := mint(t, auth, "s1", models.RoleStudent)

	w := serve(router, http.MethodGet, "/api/v1/students/s1/calendar-link", student)
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data handler.FeedLink `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	feed := serve(router, http.MethodGet, env.Data.URL, "")
	require.Equal(t, http.StatusOK, feed.Code)
	assert.Contains(t, feed.Body.String(), "BEGIN:VCALENDAR")

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/feeds/forged.token.value.sig", "").Code)
}
